package game

import (
	"sync"
	"time"

	"github.com/cluecrypt/gameserver/words"
)

// Status is a room's lifecycle state.
type Status string

const (
	StatusLobby    Status = "LOBBY"
	StatusInGame   Status = "IN_GAME"
	StatusFinished Status = "FINISHED"
)

// Phase is the round phase within an in-game room. Empty outside a round.
type Phase string

const (
	PhaseNone     Phase = ""
	PhaseSpeaking Phase = "SPEAKING"
	PhaseGuessing Phase = "GUESSING"
)

// FinishReason records why a room reached StatusFinished.
type FinishReason string

const (
	FinishNormal            FinishReason = "NORMAL"
	FinishDisconnectTimeout FinishReason = "DISCONNECT_TIMEOUT"
	FinishHostForced        FinishReason = "HOST_FORCED"
)

// ScoreReason labels a score delta produced at round resolution.
type ScoreReason string

const (
	ScoreInterceptCorrect ScoreReason = "INTERCEPT_CORRECT"
	ScoreInternalMiss     ScoreReason = "INTERNAL_MISS"
)

// Code is a 3-digit secret code: three pairwise-distinct digits from {1,2,3,4}.
type Code [3]int

// Valid reports whether the code has three distinct digits in range.
func (c Code) Valid() bool {
	seen := [5]bool{}
	for _, d := range c {
		if d < 1 || d > 4 || seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// Player is a participant bound to a room for the room's whole life.
// An empty SessionID means the player is offline.
type Player struct {
	ID        string    `json:"id"`
	SessionID string    `json:"-"`
	Nickname  string    `json:"nickname"`
	TeamID    string    `json:"teamId,omitempty"`
	SeatIndex int       `json:"seatIndex"`
	JoinedAt  time.Time `json:"joinedAt"`
}

// Online reports whether the player has a live transport session.
func (p *Player) Online() bool {
	return p.SessionID != ""
}

// Team is created once at game start and lives until the room is deleted.
// Score is monotonic: it only grows through round resolution.
type Team struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	PlayerIDs   []string     `json:"playerIds"`
	SecretWords []words.Slot `json:"secretWords"`
	Score       int          `json:"score"`
}

// ScoreDelta is one scoring event recorded on a resolved attempt.
type ScoreDelta struct {
	TeamID string      `json:"teamId"`
	Points int         `json:"points"`
	Reason ScoreReason `json:"reason"`
}

// Attempt is one team's turn within a round: its secret code, the speaker's
// clues, the teammate's internal guess and the opponents' intercept guesses.
// All teams' attempts for a round are created together and resolved together.
type Attempt struct {
	ID                      string          `json:"id"`
	Round                   int             `json:"round"`
	TargetTeamID            string          `json:"targetTeamId"`
	SpeakerPlayerID         string          `json:"speakerPlayerId"`
	InternalGuesserPlayerID string          `json:"internalGuesserPlayerId"`
	Code                    Code            `json:"code"`
	Clues                   *[3]string      `json:"clues"`
	CluesSubmittedAt        time.Time       `json:"cluesSubmittedAt,omitzero"`
	InternalGuess           *Code           `json:"internalGuess,omitempty"`
	InternalGuessByPlayerID string          `json:"internalGuessByPlayerId,omitempty"`
	InterceptGuesses        map[string]Code `json:"interceptGuesses"` // guessing player id -> guess
	ScoreDeltas             []ScoreDelta    `json:"scoreDeltas"`
	Resolved                bool            `json:"resolved"`
	StartedAt               time.Time       `json:"startedAt"`
}

// DeductionRow maps a resolved attempt's code digits to the clue words that
// described them, forming the public cryptanalysis record.
type DeductionRow struct {
	Round    int            `json:"round"`
	TeamID   string         `json:"teamId"`
	ByNumber map[int]string `json:"byNumber"`
}

// DisconnectState exists only while at least one player is offline during an
// active game. The deadline is fixed at first detection; later reconnects of
// other players do not extend it.
type DisconnectState struct {
	StartedAt time.Time `json:"startedAt"`
	Deadline  time.Time `json:"deadline"`
	PlayerIDs []string  `json:"playerIds"`
}

// Room is the aggregate root. The engine serializes every mutation through
// mu, so player calls and timer callbacks never interleave mid-mutation.
type Room struct {
	Code              string
	Name              string
	HostPlayerID      string
	TargetPlayerCount int
	CreatedAt         time.Time
	GameStartedAt     time.Time

	Status        Status
	Phase         Phase
	Round         int
	FinishReason  FinishReason
	WinnerTeamIDs []string

	Players   map[string]*Player
	Teams     map[string]*Team
	TeamOrder []string

	CurrentAttempts []*Attempt
	AttemptHistory  []*Attempt
	DeductionRows   []DeductionRow

	Disconnect *DisconnectState

	speakingTimerID   int64
	disconnectTimerID int64

	mu sync.Mutex
}

func (r *Room) lock()   { r.mu.Lock() }
func (r *Room) unlock() { r.mu.Unlock() }

// player returns a member of the room or ErrPlayerNotFound.
func (r *Room) player(playerID string) (*Player, error) {
	p, ok := r.Players[playerID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

// team returns a team of the room or ErrTeamNotFound.
func (r *Room) team(teamID string) (*Team, error) {
	t, ok := r.Teams[teamID]
	if !ok {
		return nil, ErrTeamNotFound
	}
	return t, nil
}

// attemptForTeam finds the current attempt targeting the given team.
func (r *Room) attemptForTeam(teamID string) *Attempt {
	for _, a := range r.CurrentAttempts {
		if a.TargetTeamID == teamID {
			return a
		}
	}
	return nil
}

// OnlineMembers returns player id -> session id for every member with a live
// transport session. Safe for callers outside the engine.
func (r *Room) OnlineMembers() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()

	members := make(map[string]string)
	for _, p := range r.Players {
		if p.Online() {
			members[p.ID] = p.SessionID
		}
	}
	return members
}

// offlinePlayerIDs returns the ids of all players without a live session,
// in team seating order for determinism.
func (r *Room) offlinePlayerIDs() []string {
	var ids []string
	for _, teamID := range r.TeamOrder {
		team := r.Teams[teamID]
		for _, pid := range team.PlayerIDs {
			if p, ok := r.Players[pid]; ok && !p.Online() {
				ids = append(ids, pid)
			}
		}
	}
	if len(r.TeamOrder) == 0 {
		for _, p := range r.Players {
			if !p.Online() {
				ids = append(ids, p.ID)
			}
		}
	}
	return ids
}
