// Package broadcast pushes engine state to connected clients. Every room
// change fans out one projection per online member, computed for that member,
// so confidentiality decisions stay inside the engine's projector.
package broadcast

import (
	"encoding/json"

	"github.com/cluecrypt/gameserver/game"
	"github.com/cluecrypt/gameserver/logger"
	"github.com/cluecrypt/gameserver/network"
	"github.com/cluecrypt/gameserver/session"
)

type Broadcaster interface {
	BroadcastRoom(roomCode string)
	BroadcastJoinableRooms()
	NotifySessions(sessionIDs []string, msgID uint16, data []byte)
}

// ViewBroadcaster delivers per-viewer projections over live sessions.
type ViewBroadcaster struct {
	engine   *game.Engine
	sessions *session.Manager
}

func NewViewBroadcaster(engine *game.Engine, sessions *session.Manager) *ViewBroadcaster {
	return &ViewBroadcaster{
		engine:   engine,
		sessions: sessions,
	}
}

// BroadcastRoom recomputes and sends the projection for every online member
// of the room. A missing room (just disbanded) is not an error; those
// clients are notified through the eviction path instead.
func (b *ViewBroadcaster) BroadcastRoom(roomCode string) {
	room, exists := b.engine.Store().Get(roomCode)
	if !exists {
		return
	}

	for playerID, sessionID := range room.OnlineMembers() {
		view, err := b.engine.ProjectRoom(roomCode, playerID)
		if err != nil {
			logger.Log.Warnf("Failed to project room %s for player %s: %v", roomCode, playerID, err)
			continue
		}
		data, err := json.Marshal(view)
		if err != nil {
			logger.Log.Errorf("Failed to marshal room view: %v", err)
			continue
		}
		if sess, ok := b.sessions.Get(sessionID); ok {
			if err := sess.Send(network.MsgTypeStateUpdate, data); err != nil {
				logger.Log.Warnf("Failed to push state to session %s: %v", sessionID, err)
			}
		}
	}
}

// BroadcastJoinableRooms pushes the lobby listing to every connected client.
func (b *ViewBroadcaster) BroadcastJoinableRooms() {
	summaries := b.engine.ListJoinableRooms()
	data, err := json.Marshal(summaries)
	if err != nil {
		logger.Log.Errorf("Failed to marshal room summaries: %v", err)
		return
	}

	for _, sess := range b.sessions.All() {
		if err := sess.Send(network.MsgTypeRoomsUpdate, data); err != nil {
			continue
		}
	}
}

// NotifySessions sends a raw message to a specific set of sessions, used for
// eviction notices on disband.
func (b *ViewBroadcaster) NotifySessions(sessionIDs []string, msgID uint16, data []byte) {
	for _, id := range sessionIDs {
		if sess, ok := b.sessions.Get(id); ok {
			if err := sess.Send(msgID, data); err != nil {
				continue
			}
		}
	}
}
