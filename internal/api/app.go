package api

import (
	"github.com/dawudu11/burptracker/internal"
	"github.com/dawudu11/burptracker/internal/storage"
	"github.com/dawudu11/burptracker/internal/ws"
)

type App interface {
	Logger() internal.Logger
	Users() storage.UserRepository
	Groups() storage.GroupRepository
	Sessions() storage.SessionRepository
	Hub() *ws.Hub
}

type Server struct {
	logger internal.Logger
	repos  *storage.Repositories
	hub    *ws.Hub
}

func NewServer(logger internal.Logger, repos *storage.Repositories, hub *ws.Hub) *Server {
	return &Server{logger: logger, repos: repos, hub: hub}
}

func (s *Server) Logger() internal.Logger               { return s.logger }
func (s *Server) Users() storage.UserRepository         { return s.repos.Users }
func (s *Server) Groups() storage.GroupRepository       { return s.repos.Groups }
func (s *Server) Sessions() storage.SessionRepository   { return s.repos.Sessions }
func (s *Server) Hub() *ws.Hub                          { return s.hub }

var _ App = (*Server)(nil)
