package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Snapshot returns the message sent to a client right after it connects.
type Snapshot func() any

// Server upgrades HTTP requests into hub subscriptions.
type Server struct {
	hub          *Hub
	snapshot     Snapshot
	writeTimeout time.Duration
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// NewServer builds ws server.
func NewServer(hub *Hub, snapshot Snapshot, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		hub:          hub,
		snapshot:     snapshot,
		writeTimeout: writeTimeout,
		logger:       logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP upgrades the connection and streams hub broadcasts until the peer disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(conn, s.writeTimeout, s.logger, s.hub.Remove)
	s.hub.Add(client)
	s.logger.Info("summary stream client connected", zap.String("remote", r.RemoteAddr))

	if s.snapshot != nil {
		if msg, err := json.Marshal(s.snapshot()); err == nil {
			client.Send(msg)
		}
	}

	go client.Start()
}
