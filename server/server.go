package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cluecrypt/gameserver/broadcast"
	"github.com/cluecrypt/gameserver/game"
	"github.com/cluecrypt/gameserver/logger"
	"github.com/cluecrypt/gameserver/monitor"
	"github.com/cluecrypt/gameserver/network"
	gameserverrpc "github.com/cluecrypt/gameserver/rpc"
	"github.com/cluecrypt/gameserver/session"
)

// GameServer terminates websocket connections and adapts packet requests to
// engine operations. Every request is acknowledged: success carries the
// operation result, failure carries the engine error and its taxonomy code.
type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	engine         *game.Engine
	sessionManager *session.Manager
	broadcaster    broadcast.Broadcaster
	rpcServer      *gameserverrpc.Server
	mon            *monitor.Monitor
	shutdownChan   chan struct{}
}

func NewGameServer(addr string, engine *game.Engine, sessions *session.Manager,
	broadcaster broadcast.Broadcaster, rpcServer *gameserverrpc.Server, mon *monitor.Monitor) *GameServer {
	return &GameServer{
		addr:           addr,
		engine:         engine,
		sessionManager: sessions,
		broadcaster:    broadcaster,
		rpcServer:      rpcServer,
		mon:            mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}
}

func (s *GameServer) Start() error {
	if s.rpcServer != nil {
		go s.rpcServer.Start()
	}

	http.HandleFunc("/ws", s.handleWebSocket)
	http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"ok":true,"ts":%d}`, time.Now().UnixMilli())
	})

	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	if s.rpcServer != nil {
		s.rpcServer.Stop()
	}
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	if s.mon != nil {
		s.mon.IncOnlinePlayers()
	}

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	// New clients get the lobby listing right away.
	if data, err := json.Marshal(s.engine.ListJoinableRooms()); err == nil {
		sess.Send(network.MsgTypeRoomsUpdate, data)
	}

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		if s.mon != nil {
			s.mon.DecOnlinePlayers()
		}
		s.engine.HandleSessionClosed(sess.GetID())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

// response is the acknowledgment envelope for every request.
type response struct {
	OK    bool        `json:"ok"`
	Error string      `json:"error,omitempty"`
	Code  string      `json:"code,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

func (s *GameServer) ack(sess *session.Session, msgID uint16, data interface{}) {
	payload, err := json.Marshal(response{OK: true, Data: data})
	if err != nil {
		logger.Log.Errorf("Failed to marshal ack: %v", err)
		return
	}
	sess.Send(msgID, payload)
}

func (s *GameServer) nack(sess *session.Session, msgID uint16, opErr error) {
	payload, err := json.Marshal(response{OK: false, Error: opErr.Error(), Code: game.Kind(opErr)})
	if err != nil {
		logger.Log.Errorf("Failed to marshal nack: %v", err)
		return
	}
	sess.Send(msgID, payload)
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	if s.mon != nil {
		s.mon.IncMessagesReceived()
	}

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeListRooms:
		s.handleListRooms(sess, packet)
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	case network.MsgTypeDisbandRoom:
		s.handleDisbandRoom(sess, packet)
	case network.MsgTypeReconnect:
		s.handleReconnect(sess, packet)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess, packet)
	case network.MsgTypeForceFinish:
		s.handleForceFinish(sess, packet)
	case network.MsgTypeSubmitClues:
		s.handleSubmitClues(sess, packet)
	case network.MsgTypeSubmitGuess:
		s.handleSubmitGuess(sess, packet)
	case network.MsgTypeAIClues:
		s.handleAIClues(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleListRooms(sess *session.Session, _ *network.Packet) {
	s.ack(sess, network.MsgTypeListRooms, s.engine.ListJoinableRooms())
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		Nickname          string `json:"nickname"`
		TargetPlayerCount int    `json:"targetPlayerCount"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeCreateRoom, err)
		return
	}

	room, player, err := s.engine.CreateRoom(sess.GetID(), req.Nickname, req.TargetPlayerCount)
	if err != nil {
		s.nack(sess, network.MsgTypeCreateRoom, err)
		return
	}
	sess.BindRoom(room.Code, player.ID)

	logger.Log.Infof("Session %s created room %s", sess.GetID(), room.Code)
	s.ack(sess, network.MsgTypeCreateRoom, map[string]string{
		"roomCode": room.Code,
		"playerId": player.ID,
	})
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode string `json:"roomCode"`
		Nickname string `json:"nickname"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeJoinRoom, err)
		return
	}

	room, player, err := s.engine.JoinRoom(req.RoomCode, sess.GetID(), req.Nickname)
	if err != nil {
		s.nack(sess, network.MsgTypeJoinRoom, err)
		return
	}
	sess.BindRoom(room.Code, player.ID)

	logger.Log.Infof("Session %s joined room %s", sess.GetID(), room.Code)
	s.ack(sess, network.MsgTypeJoinRoom, map[string]string{
		"roomCode": room.Code,
		"playerId": player.ID,
	})
}

func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode string `json:"roomCode"`
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeLeaveRoom, err)
		return
	}

	if err := s.engine.LeaveRoom(req.RoomCode, req.PlayerID); err != nil {
		s.nack(sess, network.MsgTypeLeaveRoom, err)
		return
	}
	sess.UnbindRoom()

	s.ack(sess, network.MsgTypeLeaveRoom, nil)
	data, _ := json.Marshal(map[string]string{"reason": "LEFT_ROOM"})
	sess.Send(network.MsgTypeSessionCleared, data)
}

func (s *GameServer) handleDisbandRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode string `json:"roomCode"`
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeDisbandRoom, err)
		return
	}

	affected, err := s.engine.DisbandRoom(req.RoomCode, req.PlayerID)
	if err != nil {
		s.nack(sess, network.MsgTypeDisbandRoom, err)
		return
	}

	data, _ := json.Marshal(map[string]string{"reason": "ROOM_DISBANDED"})
	s.broadcaster.NotifySessions(affected, network.MsgTypeSessionCleared, data)
	for _, sessionID := range affected {
		if evicted, ok := s.sessionManager.Get(sessionID); ok {
			evicted.UnbindRoom()
		}
	}

	s.ack(sess, network.MsgTypeDisbandRoom, nil)
}

func (s *GameServer) handleReconnect(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode string `json:"roomCode"`
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeReconnect, err)
		return
	}

	room, err := s.engine.ReconnectPlayer(req.RoomCode, req.PlayerID, sess.GetID())
	if err != nil {
		s.nack(sess, network.MsgTypeReconnect, err)
		return
	}
	sess.BindRoom(room.Code, req.PlayerID)

	s.ack(sess, network.MsgTypeReconnect, nil)
}

func (s *GameServer) handleStartGame(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode string `json:"roomCode"`
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeStartGame, err)
		return
	}

	if _, err := s.engine.StartGame(req.RoomCode, req.PlayerID); err != nil {
		s.nack(sess, network.MsgTypeStartGame, err)
		return
	}
	s.ack(sess, network.MsgTypeStartGame, nil)
}

func (s *GameServer) handleForceFinish(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode string `json:"roomCode"`
		PlayerID string `json:"playerId"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeForceFinish, err)
		return
	}

	if _, err := s.engine.ForceFinishGame(req.RoomCode, req.PlayerID); err != nil {
		s.nack(sess, network.MsgTypeForceFinish, err)
		return
	}
	s.ack(sess, network.MsgTypeForceFinish, nil)
}

func (s *GameServer) handleSubmitClues(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode string    `json:"roomCode"`
		PlayerID string    `json:"playerId"`
		Clues    [3]string `json:"clues"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeSubmitClues, err)
		return
	}

	if _, err := s.engine.SubmitClues(req.RoomCode, req.PlayerID, req.Clues); err != nil {
		s.nack(sess, network.MsgTypeSubmitClues, err)
		return
	}
	s.ack(sess, network.MsgTypeSubmitClues, nil)
}

func (s *GameServer) handleSubmitGuess(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode     string    `json:"roomCode"`
		PlayerID     string    `json:"playerId"`
		TargetTeamID string    `json:"targetTeamId"`
		Guess        game.Code `json:"guess"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeSubmitGuess, err)
		return
	}

	if _, err := s.engine.SubmitGuess(req.RoomCode, req.PlayerID, req.TargetTeamID, req.Guess); err != nil {
		s.nack(sess, network.MsgTypeSubmitGuess, err)
		return
	}
	s.ack(sess, network.MsgTypeSubmitGuess, nil)
}

func (s *GameServer) handleAIClues(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomCode string `json:"roomCode"`
		TeamID   string `json:"teamId"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.nack(sess, network.MsgTypeAIClues, err)
		return
	}

	// The oracle call is bounded by the engine's clue timeout, but still keep
	// it off the read loop so a slow word service cannot stall the client.
	go func() {
		clues, err := s.engine.GenerateClues(context.Background(), req.RoomCode, req.TeamID)
		if err != nil {
			s.nack(sess, network.MsgTypeAIClues, err)
			return
		}
		s.ack(sess, network.MsgTypeAIClues, map[string]interface{}{"clues": clues})
	}()
}
