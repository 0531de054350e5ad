// Package persistence archives finished matches. Live game state is never
// written here; the archive is append-only history for leaderboards and the
// admin RPC surface.
package persistence

import (
	"fmt"

	"github.com/cluecrypt/gameserver/models"
)

// Database 对局归档接口
type Database interface {
	SaveMatchRecord(record models.MatchRecord) error
	RecentMatches(limit int) ([]models.MatchRecord, error)
	CountMatchesByReason() (map[string]int64, error)
	Close() error
}

var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
