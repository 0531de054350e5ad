// Package services contains the application services that sit between the
// game engine and the persistence layer.
package services

import (
	"github.com/cluecrypt/gameserver/logger"
	"github.com/cluecrypt/gameserver/models"
	"github.com/cluecrypt/gameserver/persistence"
)

// MatchService archives finished matches and answers archive queries for the
// admin RPC surface. It satisfies the engine's MatchRecorder interface.
type MatchService struct {
	db persistence.Database
}

func NewMatchService(db persistence.Database) *MatchService {
	return &MatchService{db: db}
}

// SaveMatch archives one finished match. Called from a goroutine outside the
// room mutation path; failures are logged, never surfaced to players.
func (s *MatchService) SaveMatch(record models.MatchRecord) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.SaveMatchRecord(record); err != nil {
		logger.Log.Errorf("Failed to archive match %s: %v", record.RoomCode, err)
		return err
	}
	logger.Log.Infof("Archived match %s (%d rounds, reason %s)",
		record.RoomCode, record.Rounds, record.FinishReason)
	return nil
}

// RecentMatches returns the latest archived matches, newest first.
func (s *MatchService) RecentMatches(limit int) ([]models.MatchRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.RecentMatches(limit)
}

// FinishReasonCounts returns how many archived matches ended per reason.
func (s *MatchService) FinishReasonCounts() (map[string]int64, error) {
	if s.db == nil {
		return map[string]int64{}, nil
	}
	return s.db.CountMatchesByReason()
}
