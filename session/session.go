// Package session tracks live transport connections and their binding to a
// room and player. Sessions are transport-level; the game engine only ever
// sees opaque session ids.
package session

import (
	"sync"
	"time"

	"github.com/cluecrypt/gameserver/network"
)

type Session struct {
	ID         string
	Conn       network.Connection
	RoomCode   string
	PlayerID   string
	CreatedAt  time.Time
	LastActive time.Time
	mutex      sync.RWMutex
}

func NewSession(id string, conn network.Connection) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Conn:       conn,
		CreatedAt:  now,
		LastActive: now,
	}
}

// BindRoom associates the session with a room membership.
func (s *Session) BindRoom(roomCode, playerID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomCode = roomCode
	s.PlayerID = playerID
}

// UnbindRoom clears the room association.
func (s *Session) UnbindRoom() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.RoomCode = ""
	s.PlayerID = ""
}

// Binding returns the current room code and player id.
func (s *Session) Binding() (roomCode, playerID string) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.RoomCode, s.PlayerID
}

func (s *Session) Send(msgID uint16, data []byte) error {
	s.mutex.Lock()
	s.LastActive = time.Now()
	s.mutex.Unlock()
	return s.Conn.Send(msgID, data)
}

func (s *Session) Touch() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.LastActive = time.Now()
}

func (s *Session) GetID() string {
	return s.ID
}

func (s *Session) Close() error {
	return s.Conn.Close()
}

// Manager indexes all live sessions by id.
type Manager struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
	}
}

func (m *Manager) Add(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.sessions[session.ID] = session
}

func (m *Manager) Remove(sessionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.sessions, sessionID)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	session, exists := m.sessions[sessionID]
	return session, exists
}

func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.sessions)
}

// All returns a snapshot of every live session.
func (m *Manager) All() []*Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}
