package rpc

import (
	"net"
	"net/rpc"

	"github.com/cluecrypt/gameserver/game"
	"github.com/cluecrypt/gameserver/logger"
	"github.com/cluecrypt/gameserver/models"
	"github.com/cluecrypt/gameserver/services"
)

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes operational queries over net/rpc: live room listings
// and the match archive. Methods follow the net/rpc signature rules.
type AdminService struct {
	engine  *game.Engine
	matches *services.MatchService
}

func NewAdminService(engine *game.Engine, matches *services.MatchService) *AdminService {
	return &AdminService{engine: engine, matches: matches}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	Rooms []game.RoomSummary
	Total int
}

func (a *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.Rooms = a.engine.ListJoinableRooms()
	reply.Total = a.engine.Store().Count()
	return nil
}

type RecentMatchesArgs struct {
	Limit int
}

type RecentMatchesReply struct {
	Matches []models.MatchRecord
}

func (a *AdminService) RecentMatches(args *RecentMatchesArgs, reply *RecentMatchesReply) error {
	matches, err := a.matches.RecentMatches(args.Limit)
	if err != nil {
		return err
	}
	reply.Matches = matches
	return nil
}

type MatchStatsArgs struct{}

type MatchStatsReply struct {
	FinishReasonCounts map[string]int64
}

func (a *AdminService) MatchStats(args *MatchStatsArgs, reply *MatchStatsReply) error {
	counts, err := a.matches.FinishReasonCounts()
	if err != nil {
		return err
	}
	reply.FinishReasonCounts = counts
	return nil
}
