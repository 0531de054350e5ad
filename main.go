package main

import (
	"net/rpc"

	"github.com/cluecrypt/gameserver/broadcast"
	"github.com/cluecrypt/gameserver/clue"
	"github.com/cluecrypt/gameserver/config"
	"github.com/cluecrypt/gameserver/game"
	"github.com/cluecrypt/gameserver/logger"
	"github.com/cluecrypt/gameserver/monitor"
	"github.com/cluecrypt/gameserver/persistence"
	gameserverrpc "github.com/cluecrypt/gameserver/rpc"
	"github.com/cluecrypt/gameserver/server"
	"github.com/cluecrypt/gameserver/services"
	"github.com/cluecrypt/gameserver/session"
	"github.com/cluecrypt/gameserver/timer"
)

func main() {
	logger.Init()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Optional match archive. The game itself is fully in-memory; a missing
	// database only disables archived history.
	var db persistence.Database
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		switch cfg.Database.Driver {
		case "pq":
			db, err = persistence.NewPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		default:
			db, err = persistence.NewGormPostgreSQL(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName)
		}
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Info("Database connection successful.")
	}
	matchService := services.NewMatchService(db)

	mon := monitor.NewMonitor("cluecrypt")
	mon.StartServer(cfg.Server.MetricsAddress)

	sessions := session.NewManager()
	store := game.NewStore()
	timers := timer.NewManager()

	wordClient := clue.NewWordServiceClient(cfg.WordService.BaseURL, cfg.WordService.Timeout(), cfg.WordService.TopK)

	var broadcaster broadcast.Broadcaster
	engine := game.NewEngine(store, timers, game.Options{
		SpeakingTimeout: cfg.Game.SpeakingTimeout(),
		DisconnectGrace: cfg.Game.DisconnectGrace(),
		ClueTimeout:     cfg.WordService.Timeout(),
		Oracle:          clue.NewGenerator(wordClient, cfg.WordService.TopK),
		Metrics:         mon,
		Recorder:        matchService,
		OnRoomChanged: func(roomCode string) {
			if broadcaster == nil {
				return
			}
			broadcaster.BroadcastRoom(roomCode)
			broadcaster.BroadcastJoinableRooms()
		},
	})
	broadcaster = broadcast.NewViewBroadcaster(engine, sessions)

	rpcServer, err := gameserverrpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	if err := rpc.Register(gameserverrpc.NewAdminService(engine, matchService)); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}

	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, engine, sessions, broadcaster, rpcServer, mon)

	logger.Log.Infof("Starting game server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
