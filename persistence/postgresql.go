// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/cluecrypt/gameserver/models"
)

// PostgreSQL is the database/sql implementation of the match archive.
type PostgreSQL struct {
	db *sql.DB
}

func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS match_records (
            id SERIAL PRIMARY KEY,
            room_code VARCHAR(16) NOT NULL,
            room_name TEXT NOT NULL,
            player_count INT NOT NULL,
            rounds INT NOT NULL,
            finish_reason VARCHAR(32) NOT NULL,
            winners JSONB NOT NULL,
            teams JSONB NOT NULL,
            duration INT NOT NULL DEFAULT 0,
            started_at TIMESTAMP,
            finished_at TIMESTAMP,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_match_records_room_code ON match_records (room_code)`)
	return err
}

func (p *PostgreSQL) SaveMatchRecord(record models.MatchRecord) error {
	winners, err := json.Marshal(record.Winners)
	if err != nil {
		return err
	}
	teams, err := json.Marshal(record.Teams)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO match_records
            (room_code, room_name, player_count, rounds, finish_reason, winners, teams, duration, started_at, finished_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, record.RoomCode, record.RoomName, record.PlayerCount, record.Rounds, record.FinishReason,
		winners, teams, record.Duration(), record.StartedAt, record.FinishedAt)
	return err
}

func (p *PostgreSQL) RecentMatches(limit int) ([]models.MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := p.db.Query(`
        SELECT room_code, room_name, player_count, rounds, finish_reason, winners, teams, started_at, finished_at
        FROM match_records
        ORDER BY id DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var (
			record  models.MatchRecord
			winners []byte
			teams   []byte
		)
		if err := rows.Scan(&record.RoomCode, &record.RoomName, &record.PlayerCount, &record.Rounds,
			&record.FinishReason, &winners, &teams, &record.StartedAt, &record.FinishedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(winners, &record.Winners); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(teams, &record.Teams); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) CountMatchesByReason() (map[string]int64, error) {
	rows, err := p.db.Query(`SELECT finish_reason, COUNT(*) FROM match_records GROUP BY finish_reason`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			reason string
			count  int64
		)
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, err
		}
		counts[reason] = count
	}
	return counts, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
