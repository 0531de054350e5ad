package game

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cluecrypt/gameserver/models"
)

// CreateRoom opens a new lobby hosted by the creator.
func (e *Engine) CreateRoom(sessionID, nickname string, targetPlayerCount int) (*Room, *Player, error) {
	if targetPlayerCount != 4 && targetPlayerCount != 6 && targetPlayerCount != 8 {
		return nil, nil, ErrInvalidPlayerCount
	}

	player := &Player{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Nickname:  nickname,
		SeatIndex: -1,
		JoinedAt:  time.Now(),
	}
	room := &Room{
		Name:              fmt.Sprintf("%s的房间", nickname),
		HostPlayerID:      player.ID,
		TargetPlayerCount: targetPlayerCount,
		CreatedAt:         time.Now(),
		Status:            StatusLobby,
		Round:             1,
		Players:           map[string]*Player{player.ID: player},
		Teams:             make(map[string]*Team),
	}

	e.store.Insert(room)
	e.updateRoomGauge()
	e.notifyRoomChanged(room.Code)
	return room, player, nil
}

// JoinRoom adds a player to a lobby that still has free slots.
func (e *Engine) JoinRoom(roomCode, sessionID, nickname string) (*Room, *Player, error) {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return nil, nil, err
	}

	room.lock()
	if room.Status != StatusLobby {
		room.unlock()
		return nil, nil, ErrGameAlreadyStarted
	}
	if len(room.Players) >= room.TargetPlayerCount {
		room.unlock()
		return nil, nil, ErrRoomFull
	}

	player := &Player{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Nickname:  nickname,
		SeatIndex: -1,
		JoinedAt:  time.Now(),
	}
	room.Players[player.ID] = player
	room.unlock()

	e.notifyRoomChanged(room.Code)
	return room, player, nil
}

// LeaveRoom removes a player from a lobby or a finished room. The host can
// never leave; the host disbands instead.
func (e *Engine) LeaveRoom(roomCode, playerID string) error {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return err
	}

	room.lock()
	if room.Status != StatusLobby && room.Status != StatusFinished {
		room.unlock()
		return ErrInvalidState
	}
	if room.HostPlayerID == playerID {
		room.unlock()
		return ErrHostCannotLeave
	}
	player, perr := room.player(playerID)
	if perr != nil {
		room.unlock()
		return perr
	}

	if player.TeamID != "" {
		if team, ok := room.Teams[player.TeamID]; ok {
			members := team.PlayerIDs[:0]
			for _, pid := range team.PlayerIDs {
				if pid != playerID {
					members = append(members, pid)
				}
			}
			team.PlayerIDs = members
		}
	}
	delete(room.Players, playerID)
	room.unlock()

	e.notifyRoomChanged(room.Code)
	return nil
}

// DisbandRoom deletes the room and returns the session ids of everyone in it
// so the transport can notify and evict them. Host only.
func (e *Engine) DisbandRoom(roomCode, callerPlayerID string) ([]string, error) {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return nil, err
	}

	room.lock()
	if room.HostPlayerID != callerPlayerID {
		room.unlock()
		return nil, ErrNotAuthorized
	}

	e.cancelSpeakingTimerLocked(room)
	e.cancelDisconnectTimerLocked(room)

	var sessions []string
	for _, p := range room.Players {
		if p.SessionID != "" {
			sessions = append(sessions, p.SessionID)
		}
	}
	room.unlock()

	e.store.Remove(room.Code)
	e.updateRoomGauge()
	e.notifyRoomChanged(room.Code)
	return sessions, nil
}

// ReconnectPlayer rebinds a known player to a new transport session and
// reconciles the disconnect state if a game is running.
func (e *Engine) ReconnectPlayer(roomCode, playerID, sessionID string) (*Room, error) {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return nil, err
	}

	room.lock()
	player, perr := room.player(playerID)
	if perr != nil {
		room.unlock()
		return nil, perr
	}
	player.SessionID = sessionID
	if room.Status == StatusInGame {
		e.reconcileDisconnectLocked(room)
	}
	room.unlock()

	e.notifyRoomChanged(room.Code)
	return room, nil
}

// StartGame partitions the lobby into teams of two in join order, deals each
// team its secret words and opens round one. Host only, exact player count.
func (e *Engine) StartGame(roomCode, callerPlayerID string) (*Room, error) {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return nil, err
	}

	room.lock()
	if room.HostPlayerID != callerPlayerID {
		room.unlock()
		return nil, ErrNotAuthorized
	}
	if room.Status != StatusLobby {
		room.unlock()
		return nil, ErrInvalidState
	}
	if len(room.Players) != room.TargetPlayerCount {
		room.unlock()
		return nil, ErrPlayerCountMismatch
	}

	teamCount := room.TargetPlayerCount / 2
	for i := 0; i < teamCount; i++ {
		teamID := fmt.Sprintf("T%d", i+1)
		room.TeamOrder = append(room.TeamOrder, teamID)
		room.Teams[teamID] = &Team{
			ID:    teamID,
			Label: fmt.Sprintf("Team %c", 'A'+i),
			// The random offset is intentionally non-reproducible; games
			// never need replay from a stored seed.
			SecretWords: e.pickWords(i + rand.Intn(100)),
		}
	}

	sorted := make([]*Player, 0, len(room.Players))
	for _, p := range room.Players {
		sorted = append(sorted, p)
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].JoinedAt.Equal(sorted[j].JoinedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
	})
	for idx, p := range sorted {
		teamID := room.TeamOrder[idx/2]
		p.TeamID = teamID
		p.SeatIndex = idx % 2
		room.Teams[teamID].PlayerIDs = append(room.Teams[teamID].PlayerIDs, p.ID)
	}

	if serr := setStatusLocked(room, StatusInGame); serr != nil {
		room.unlock()
		return nil, serr
	}
	room.Round = 1
	room.GameStartedAt = time.Now()
	e.startRoundLocked(room)
	room.unlock()

	e.notifyRoomChanged(room.Code)
	return room, nil
}

// ForceFinishGame terminates a running game on the host's order. No winners
// are declared.
func (e *Engine) ForceFinishGame(roomCode, callerPlayerID string) (*Room, error) {
	room, err := e.roomForUpdate(roomCode)
	if err != nil {
		return nil, err
	}

	room.lock()
	if room.HostPlayerID != callerPlayerID {
		room.unlock()
		return nil, ErrNotAuthorized
	}
	if room.Status != StatusInGame {
		room.unlock()
		return nil, ErrInvalidState
	}
	e.finishGameLocked(room, FinishHostForced, []string{})
	room.unlock()

	e.notifyRoomChanged(room.Code)
	return room, nil
}

// finishGameLocked moves the room to its terminal state: timers cancelled,
// attempts cleared, reason and winners recorded, match archived.
func (e *Engine) finishGameLocked(room *Room, reason FinishReason, winners []string) {
	e.cancelSpeakingTimerLocked(room)
	e.clearDisconnectLocked(room)

	room.CurrentAttempts = nil
	room.Phase = PhaseNone
	if room.Status != StatusFinished {
		if err := setStatusLocked(room, StatusFinished); err != nil {
			return
		}
	}
	room.FinishReason = reason
	if winners == nil {
		winners = []string{}
	}
	room.WinnerTeamIDs = winners

	if e.metrics != nil {
		e.metrics.GameFinished(string(reason))
	}
	if e.recorder != nil {
		record := buildMatchRecord(room)
		go func() {
			_ = e.recorder.SaveMatch(record)
		}()
	}
}

func buildMatchRecord(room *Room) models.MatchRecord {
	winnerSet := make(map[string]bool, len(room.WinnerTeamIDs))
	for _, id := range room.WinnerTeamIDs {
		winnerSet[id] = true
	}

	teams := make([]models.TeamResult, 0, len(room.TeamOrder))
	for _, teamID := range room.TeamOrder {
		team := room.Teams[teamID]
		nicknames := make([]string, 0, len(team.PlayerIDs))
		for _, pid := range team.PlayerIDs {
			if p, ok := room.Players[pid]; ok {
				nicknames = append(nicknames, p.Nickname)
			}
		}
		teams = append(teams, models.TeamResult{
			TeamID:    team.ID,
			Label:     team.Label,
			Score:     team.Score,
			Nicknames: nicknames,
			Winner:    winnerSet[team.ID],
		})
	}

	return models.MatchRecord{
		RoomCode:     room.Code,
		RoomName:     room.Name,
		PlayerCount:  len(room.Players),
		Rounds:       room.Round,
		FinishReason: string(room.FinishReason),
		Winners:      append([]string(nil), room.WinnerTeamIDs...),
		Teams:        teams,
		StartedAt:    room.GameStartedAt,
		FinishedAt:   time.Now(),
	}
}
