// Package game implements the authoritative room/game state machine for the
// word-code deduction game: room lifecycle, simultaneous multi-team rounds,
// scoring, disconnect handling and per-viewer state projection.
package game

import (
	"context"
	"time"

	"github.com/cluecrypt/gameserver/clue"
	"github.com/cluecrypt/gameserver/models"
	"github.com/cluecrypt/gameserver/timer"
	"github.com/cluecrypt/gameserver/words"
)

const (
	defaultSpeakingTimeout = 60 * time.Second
	defaultDisconnectGrace = 30 * time.Second
	defaultClueTimeout     = 1500 * time.Millisecond
)

// Metrics is the engine-side view of the monitoring layer.
type Metrics interface {
	SetActiveRooms(count int)
	RoundResolved()
	GameFinished(reason string)
	ObserveClueLatency(duration time.Duration)
}

// MatchRecorder archives finished games. Implementations must tolerate being
// called from a goroutine outside the room mutation path.
type MatchRecorder interface {
	SaveMatch(record models.MatchRecord) error
}

// Options configures an Engine. Zero values fall back to production defaults.
type Options struct {
	SpeakingTimeout time.Duration
	DisconnectGrace time.Duration
	ClueTimeout     time.Duration

	// PickWords selects a team's four secret words for a seed.
	PickWords func(seed int) []words.Slot
	// Oracle is the optional AI clue generator.
	Oracle clue.Oracle

	Metrics  Metrics
	Recorder MatchRecorder

	// OnRoomChanged fires after every successful mutation, including
	// timer-driven ones, outside any lock.
	OnRoomChanged func(roomCode string)
}

// Engine orchestrates all room mutations. Every public operation locks the
// target room, validates, mutates, unlocks and then fires the change hook,
// so no caller ever observes a half-applied mutation.
type Engine struct {
	store  *Store
	timers *timer.Manager

	speakingTimeout time.Duration
	disconnectGrace time.Duration
	clueTimeout     time.Duration

	pickWords func(seed int) []words.Slot
	oracle    clue.Oracle

	metrics  Metrics
	recorder MatchRecorder

	onRoomChanged func(roomCode string)
}

func NewEngine(store *Store, timers *timer.Manager, opts Options) *Engine {
	e := &Engine{
		store:           store,
		timers:          timers,
		speakingTimeout: opts.SpeakingTimeout,
		disconnectGrace: opts.DisconnectGrace,
		clueTimeout:     opts.ClueTimeout,
		pickWords:       opts.PickWords,
		oracle:          opts.Oracle,
		metrics:         opts.Metrics,
		recorder:        opts.Recorder,
		onRoomChanged:   opts.OnRoomChanged,
	}
	if e.speakingTimeout <= 0 {
		e.speakingTimeout = defaultSpeakingTimeout
	}
	if e.disconnectGrace <= 0 {
		e.disconnectGrace = defaultDisconnectGrace
	}
	if e.clueTimeout <= 0 {
		e.clueTimeout = defaultClueTimeout
	}
	if e.pickWords == nil {
		e.pickWords = words.Pick
	}
	return e
}

// Store exposes the room store for read-only collaborators (broadcast, rpc).
func (e *Engine) Store() *Store {
	return e.store
}

// ListJoinableRooms returns lobbies with free slots, newest first.
func (e *Engine) ListJoinableRooms() []RoomSummary {
	return e.store.JoinableSummaries()
}

func (e *Engine) notifyRoomChanged(roomCode string) {
	if e.onRoomChanged != nil {
		e.onRoomChanged(roomCode)
	}
}

func (e *Engine) updateRoomGauge() {
	if e.metrics != nil {
		e.metrics.SetActiveRooms(e.store.Count())
	}
}

// roomForUpdate resolves a room code. The caller locks the returned room.
func (e *Engine) roomForUpdate(roomCode string) (*Room, error) {
	room, exists := e.store.Get(roomCode)
	if !exists {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// GenerateClues asks the injected oracle for three clue suggestions for the
// given team's current attempt. Room state is only snapshotted under the
// lock; the oracle call itself runs outside the mutation path with a bounded
// deadline, and any failure degrades to the deterministic fallback clues.
func (e *Engine) GenerateClues(ctx context.Context, roomCode, teamID string) ([3]string, error) {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return [3]string{}, err
	}

	room.lock()
	team, terr := room.team(teamID)
	if terr != nil {
		room.unlock()
		return [3]string{}, terr
	}
	attempt := room.attemptForTeam(teamID)
	if attempt == nil {
		room.unlock()
		return [3]string{}, ErrTargetMismatch
	}

	input := clue.Input{
		SecretWords: append([]words.Slot(nil), team.SecretWords...),
		Code:        [3]int(attempt.Code),
	}
	for _, row := range room.DeductionRows {
		if row.TeamID != teamID {
			continue
		}
		byNumber := make(map[int]string, len(row.ByNumber))
		for k, v := range row.ByNumber {
			byNumber[k] = v
		}
		input.History = append(input.History, clue.DeductionEntry{
			Round:    row.Round,
			ByNumber: byNumber,
		})
	}
	room.unlock()

	if e.oracle == nil {
		return clue.FallbackClues(input.SecretWords, input.Code), nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.clueTimeout)
	defer cancel()

	start := time.Now()
	clues, err := e.oracle.GenerateClues(ctx, input)
	if e.metrics != nil {
		e.metrics.ObserveClueLatency(time.Since(start))
	}
	if err != nil {
		return clue.FallbackClues(input.SecretWords, input.Code), nil
	}
	for i := range clues {
		clues[i] = clue.Trim(clues[i])
	}
	return clues, nil
}
