package game

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
)

const (
	roomCodeLen     = 6
	roomCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Store owns every live Room, keyed by room code. Rooms share no state with
// each other, so the store lock only guards the map itself; per-room mutation
// is serialized by the room's own mutex.
type Store struct {
	rooms map[string]*Room
	mutex sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
	}
}

// NormalizeCode uppercases a room code for case-insensitive lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Insert registers the room under a freshly generated collision-free code
// and returns that code.
func (s *Store) Insert(room *Room) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	code := s.generateCodeLocked()
	room.Code = code
	s.rooms[code] = room
	return code
}

func (s *Store) generateCodeLocked() string {
	for {
		b := make([]byte, roomCodeLen)
		for i := range b {
			b[i] = roomCodeCharset[rand.Intn(len(roomCodeCharset))]
		}
		code := string(b)
		if _, exists := s.rooms[code]; !exists {
			return code
		}
	}
}

// Get returns the room for a (case-insensitive) code.
func (s *Store) Get(code string) (*Room, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	room, exists := s.rooms[NormalizeCode(code)]
	return room, exists
}

// Remove deletes a room from the store. The caller is responsible for
// cancelling the room's timers first.
func (s *Store) Remove(code string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.rooms, NormalizeCode(code))
}

// Count returns the number of live rooms.
func (s *Store) Count() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.rooms)
}

// All returns a snapshot slice of every live room.
func (s *Store) All() []*Room {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rooms := make([]*Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// RoomSummary describes a joinable lobby for room listings.
type RoomSummary struct {
	RoomCode          string `json:"roomCode"`
	RoomName          string `json:"roomName"`
	HostNickname      string `json:"hostNickname"`
	Status            Status `json:"status"`
	CurrentPlayers    int    `json:"currentPlayerCount"`
	TargetPlayerCount int    `json:"targetPlayerCount"`
}

// JoinableSummaries lists rooms still in the lobby with free slots,
// newest first.
func (s *Store) JoinableSummaries() []RoomSummary {
	rooms := s.All()

	var joinable []*Room
	for _, room := range rooms {
		room.lock()
		if room.Status == StatusLobby && len(room.Players) < room.TargetPlayerCount {
			joinable = append(joinable, room)
		}
		room.unlock()
	}

	sort.Slice(joinable, func(i, j int) bool {
		return joinable[i].CreatedAt.After(joinable[j].CreatedAt)
	})

	summaries := make([]RoomSummary, 0, len(joinable))
	for _, room := range joinable {
		room.lock()
		hostNickname := ""
		if host, ok := room.Players[room.HostPlayerID]; ok {
			hostNickname = host.Nickname
		}
		summaries = append(summaries, RoomSummary{
			RoomCode:          room.Code,
			RoomName:          room.Name,
			HostNickname:      hostNickname,
			Status:            room.Status,
			CurrentPlayers:    len(room.Players),
			TargetPlayerCount: room.TargetPlayerCount,
		})
		room.unlock()
	}
	return summaries
}
