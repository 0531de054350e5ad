package game

import (
	"time"
)

// HandleSessionClosed marks every player bound to the session as offline and
// reconciles the disconnect state of any running game they were part of.
// Returns the codes of all affected rooms.
func (e *Engine) HandleSessionClosed(sessionID string) []string {
	if sessionID == "" {
		return nil
	}

	var impacted []string
	for _, room := range e.store.All() {
		room.lock()
		changed := false
		for _, p := range room.Players {
			if p.SessionID == sessionID {
				p.SessionID = ""
				changed = true
			}
		}
		if changed && room.Status == StatusInGame {
			e.reconcileDisconnectLocked(room)
		}
		room.unlock()

		if changed {
			impacted = append(impacted, room.Code)
			e.notifyRoomChanged(room.Code)
		}
	}
	return impacted
}

// reconcileDisconnectLocked recomputes the offline player set. With nobody
// offline the state and timer are dropped. The first detection fixes the
// grace deadline; players reconnecting later never extend it for the ones
// still offline.
func (e *Engine) reconcileDisconnectLocked(room *Room) {
	offline := room.offlinePlayerIDs()
	if len(offline) == 0 {
		e.clearDisconnectLocked(room)
		return
	}

	if room.Disconnect == nil {
		now := time.Now()
		deadline := now.Add(e.disconnectGrace)
		room.Disconnect = &DisconnectState{
			StartedAt: now,
			Deadline:  deadline,
			PlayerIDs: offline,
		}
		e.armDisconnectTimerLocked(room, deadline)
		return
	}

	room.Disconnect.PlayerIDs = offline
}

func (e *Engine) armDisconnectTimerLocked(room *Room, deadline time.Time) {
	e.cancelDisconnectTimerLocked(room)
	roomCode := room.Code
	room.disconnectTimerID = e.timers.Schedule(time.Until(deadline), 0, func() {
		e.onDisconnectTimeout(roomCode, deadline)
	})
}

func (e *Engine) cancelDisconnectTimerLocked(room *Room) {
	if room.disconnectTimerID != 0 {
		e.timers.Cancel(room.disconnectTimerID)
		room.disconnectTimerID = 0
	}
}

func (e *Engine) clearDisconnectLocked(room *Room) {
	room.Disconnect = nil
	e.cancelDisconnectTimerLocked(room)
}

// onDisconnectTimeout fires when the grace window closes. It re-validates
// against the room's live state: the game may have finished, everyone may
// have reconnected, or this may be a stale timer superseded by a newer
// disconnect window.
func (e *Engine) onDisconnectTimeout(roomCode string, deadline time.Time) {
	room, exists := e.store.Get(roomCode)
	if !exists {
		return
	}

	room.lock()
	if room.Status != StatusInGame || room.Disconnect == nil || !room.Disconnect.Deadline.Equal(deadline) {
		room.unlock()
		return
	}

	if len(room.offlinePlayerIDs()) == 0 {
		e.clearDisconnectLocked(room)
		room.unlock()
		e.notifyRoomChanged(room.Code)
		return
	}

	e.finishGameLocked(room, FinishDisconnectTimeout, []string{})
	room.unlock()

	e.notifyRoomChanged(room.Code)
}
