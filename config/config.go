package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Game        GameConfig        `mapstructure:"game"`
	WordService WordServiceConfig `mapstructure:"wordservice"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "pq"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

type GameConfig struct {
	SpeakingTimeoutSeconds int `mapstructure:"speaking_timeout_seconds"`
	DisconnectGraceSeconds int `mapstructure:"disconnect_grace_seconds"`
}

// SpeakingTimeout returns the clue-giving window for a round.
func (g GameConfig) SpeakingTimeout() time.Duration {
	return time.Duration(g.SpeakingTimeoutSeconds) * time.Second
}

// DisconnectGrace returns how long an in-game room survives with a player offline.
func (g GameConfig) DisconnectGrace() time.Duration {
	return time.Duration(g.DisconnectGraceSeconds) * time.Second
}

type WordServiceConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	TimeoutMS int    `mapstructure:"timeout_ms"`
	TopK      int    `mapstructure:"top_k"`
}

func (w WordServiceConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutMS) * time.Millisecond
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":4100")
	viper.SetDefault("server.rpc_address", ":4101")
	viper.SetDefault("server.metrics_address", ":4102")
	viper.SetDefault("game.speaking_timeout_seconds", 60)
	viper.SetDefault("game.disconnect_grace_seconds", 30)
	viper.SetDefault("wordservice.base_url", "http://127.0.0.1:4201")
	viper.SetDefault("wordservice.timeout_ms", 1500)
	viper.SetDefault("wordservice.top_k", 10)

	viper.AutomaticEnv()

	// Every key has a default, so a missing config file is not an error.
	if err = viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
