package game

import (
	"sort"
	"time"

	"github.com/cluecrypt/gameserver/words"
)

// The projection is the only room shape that ever leaves the engine. It is
// viewer-specific: secret words are visible only to the viewer's own team
// (all teams once the game is finished), an attempt's code only to its
// speaker, and other players' in-flight guesses only as submitted/not-yet
// progress markers.

type PlayerView struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Online    bool   `json:"online"`
	SeatIndex int    `json:"seatIndex"`
}

type TeamView struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	Score       int          `json:"score"`
	Players     []PlayerView `json:"players"`
	SecretWords []words.Slot `json:"secretWords,omitempty"`
}

type AttemptView struct {
	ID                      string     `json:"id"`
	Round                   int        `json:"round"`
	TargetTeamID            string     `json:"targetTeamId"`
	SpeakerPlayerID         string     `json:"speakerPlayerId"`
	InternalGuesserPlayerID string     `json:"internalGuesserPlayerId"`
	StartedAt               time.Time  `json:"startedAt"`
	Clues                   *[3]string `json:"clues"`
	Code                    *Code      `json:"code,omitempty"`
	InternalGuessSubmitted  bool       `json:"internalGuessSubmitted"`
	InterceptPlayerIDs      []string   `json:"interceptPlayerIds"`
}

type ResolvedAttemptView struct {
	Round                   int             `json:"round"`
	TargetTeamID            string          `json:"targetTeamId"`
	Clues                   *[3]string      `json:"clues"`
	Code                    Code            `json:"code"`
	InternalGuess           *Code           `json:"internalGuess,omitempty"`
	InternalGuessByPlayerID string          `json:"internalGuessByPlayerId,omitempty"`
	InterceptGuesses        map[string]Code `json:"interceptGuesses"`
	ScoreDeltas             []ScoreDelta    `json:"scoreDeltas"`
}

type DisconnectView struct {
	Deadline  time.Time `json:"deadline"`
	PlayerIDs []string  `json:"playerIds"`
}

type MeView struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	TeamID    string `json:"teamId,omitempty"`
	SeatIndex int    `json:"seatIndex"`
	IsHost    bool   `json:"isHost"`
}

type RoomView struct {
	RoomCode        string                `json:"roomCode"`
	RoomName        string                `json:"roomName"`
	Status          Status                `json:"status"`
	Phase           Phase                 `json:"phase,omitempty"`
	Round           int                   `json:"round"`
	FinishReason    FinishReason          `json:"finishReason,omitempty"`
	Me              MeView                `json:"me"`
	Teams           []TeamView            `json:"teams"`
	CurrentAttempts []AttemptView         `json:"currentAttempts"`
	DeductionRows   []DeductionRow        `json:"deductionRows"`
	History         []ResolvedAttemptView `json:"history"`
	Disconnect      *DisconnectView       `json:"disconnect,omitempty"`
	WinnerTeamIDs   []string              `json:"winnerTeamIds,omitempty"`
}

// ProjectRoom computes the viewer-specific projection of a room.
func (e *Engine) ProjectRoom(roomCode, viewerPlayerID string) (*RoomView, error) {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return nil, err
	}

	room.lock()
	defer room.unlock()

	viewer, verr := room.player(viewerPlayerID)
	if verr != nil {
		return nil, verr
	}

	view := &RoomView{
		RoomCode:     room.Code,
		RoomName:     room.Name,
		Status:       room.Status,
		Phase:        room.Phase,
		Round:        room.Round,
		FinishReason: room.FinishReason,
		Me: MeView{
			ID:        viewer.ID,
			Nickname:  viewer.Nickname,
			TeamID:    viewer.TeamID,
			SeatIndex: viewer.SeatIndex,
			IsHost:    viewer.ID == room.HostPlayerID,
		},
		Teams:           make([]TeamView, 0, len(room.TeamOrder)),
		CurrentAttempts: make([]AttemptView, 0, len(room.CurrentAttempts)),
		DeductionRows:   append([]DeductionRow(nil), room.DeductionRows...),
		History:         make([]ResolvedAttemptView, 0, len(room.AttemptHistory)),
		WinnerTeamIDs:   append([]string(nil), room.WinnerTeamIDs...),
	}

	revealAll := room.Status == StatusFinished
	for _, teamID := range room.TeamOrder {
		team := room.Teams[teamID]
		tv := TeamView{
			ID:      team.ID,
			Label:   team.Label,
			Score:   team.Score,
			Players: make([]PlayerView, 0, len(team.PlayerIDs)),
		}
		for _, pid := range team.PlayerIDs {
			p, ok := room.Players[pid]
			if !ok {
				continue
			}
			tv.Players = append(tv.Players, PlayerView{
				ID:        p.ID,
				Nickname:  p.Nickname,
				Online:    p.Online(),
				SeatIndex: p.SeatIndex,
			})
		}
		if revealAll || viewer.TeamID == team.ID {
			tv.SecretWords = append([]words.Slot(nil), team.SecretWords...)
		}
		view.Teams = append(view.Teams, tv)
	}

	for _, attempt := range room.CurrentAttempts {
		av := AttemptView{
			ID:                      attempt.ID,
			Round:                   attempt.Round,
			TargetTeamID:            attempt.TargetTeamID,
			SpeakerPlayerID:         attempt.SpeakerPlayerID,
			InternalGuesserPlayerID: attempt.InternalGuesserPlayerID,
			StartedAt:               attempt.StartedAt,
			Clues:                   attempt.Clues,
			InternalGuessSubmitted:  attempt.InternalGuess != nil,
			InterceptPlayerIDs:      make([]string, 0, len(attempt.InterceptGuesses)),
		}
		if attempt.SpeakerPlayerID == viewer.ID {
			code := attempt.Code
			av.Code = &code
		}
		for pid := range attempt.InterceptGuesses {
			av.InterceptPlayerIDs = append(av.InterceptPlayerIDs, pid)
		}
		sort.Strings(av.InterceptPlayerIDs)
		view.CurrentAttempts = append(view.CurrentAttempts, av)
	}

	for _, attempt := range room.AttemptHistory {
		guesses := make(map[string]Code, len(attempt.InterceptGuesses))
		for pid, g := range attempt.InterceptGuesses {
			guesses[pid] = g
		}
		view.History = append(view.History, ResolvedAttemptView{
			Round:                   attempt.Round,
			TargetTeamID:            attempt.TargetTeamID,
			Clues:                   attempt.Clues,
			Code:                    attempt.Code,
			InternalGuess:           attempt.InternalGuess,
			InternalGuessByPlayerID: attempt.InternalGuessByPlayerID,
			InterceptGuesses:        guesses,
			ScoreDeltas:             append([]ScoreDelta(nil), attempt.ScoreDeltas...),
		})
	}

	if room.Disconnect != nil {
		view.Disconnect = &DisconnectView{
			Deadline:  room.Disconnect.Deadline,
			PlayerIDs: append([]string(nil), room.Disconnect.PlayerIDs...),
		}
	}

	return view, nil
}
