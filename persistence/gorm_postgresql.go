// persistence/gorm_postgresql.go
package persistence

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/cluecrypt/gameserver/models"
)

// GormPostgreSQL is the gorm implementation of the match archive.
type GormPostgreSQL struct {
	db *gorm.DB
}

func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&models.GormMatchRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (g *GormPostgreSQL) SaveMatchRecord(record models.MatchRecord) error {
	row := models.GormMatchRecord{
		RoomCode:     record.RoomCode,
		RoomName:     record.RoomName,
		PlayerCount:  record.PlayerCount,
		Rounds:       record.Rounds,
		FinishReason: record.FinishReason,
		Winners:      record.Winners,
		Teams:        record.Teams,
		Duration:     record.Duration(),
	}
	return g.db.Create(&row).Error
}

func (g *GormPostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows []models.GormMatchRecord
	if err := g.db.Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]models.MatchRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, models.MatchRecord{
			RoomCode:     row.RoomCode,
			RoomName:     row.RoomName,
			PlayerCount:  row.PlayerCount,
			Rounds:       row.Rounds,
			FinishReason: row.FinishReason,
			Winners:      row.Winners,
			Teams:        row.Teams,
			StartedAt:    row.CreatedAt,
			FinishedAt:   row.CreatedAt,
		})
	}
	return records, nil
}

func (g *GormPostgreSQL) CountMatchesByReason() (map[string]int64, error) {
	type reasonCount struct {
		FinishReason string
		Count        int64
	}

	var rows []reasonCount
	err := g.db.Model(&models.GormMatchRecord{}).
		Select("finish_reason, COUNT(*) AS count").
		Group("finish_reason").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.FinishReason] = row.Count
	}
	return counts, nil
}

// Transaction runs fn inside a database transaction.
func (g *GormPostgreSQL) Transaction(fn func(tx *gorm.DB) error) error {
	return g.db.Transaction(fn)
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
