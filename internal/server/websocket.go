package server

import (
	"context"
	"net/http"
	"time"

	"github.com/goevery/orderrelay/internal/presence"
	"github.com/goevery/orderrelay/internal/relay"
	"github.com/goevery/orderrelay/internal/room"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const (
	maxFrameSize = 64 * 1024
	writeWait    = 10 * time.Second
)

type ConnectionSettings struct {
	SendBufferSize int
	PingInterval   time.Duration
}

type WebSocketServer struct {
	logger   *zap.Logger
	upgrader *websocket.Upgrader
	settings ConnectionSettings

	directory *relay.Directory
	registry  presence.Registry
	rooms     room.Table
	router    *Router
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	settings ConnectionSettings,
	directory *relay.Directory,
	registry presence.Registry,
	rooms room.Table,
	router *Router,
) *WebSocketServer {
	return &WebSocketServer{
		logger,
		upgrader,
		settings,
		directory,
		registry,
		rooms,
		router,
	}
}

func (s *WebSocketServer) Register(router *mux.Router) {
	router.HandleFunc("/socket", s.serve).Methods("GET")
}

func (s *WebSocketServer) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	connection := relay.NewConnection(gonanoid.Must(), s.settings.SendBufferSize)
	logger := s.logger.With(
		zap.String("connectionId", connection.Id),
		zap.String("remoteAddr", r.RemoteAddr))

	s.directory.Add(connection)

	logger.Info("websocket connection established")

	writerDone := make(chan struct{})
	go s.writeLoop(conn, connection, logger, writerDone)

	s.readLoop(relay.WithConnection(r.Context(), connection), conn, connection, logger)

	s.teardown(connection)
	<-writerDone

	logger.Info("websocket connection closed")
}

// readLoop returns on any read failure, which covers client close, network
// errors and a missed pong.
func (s *WebSocketServer) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	connection *relay.Connection,
	logger *zap.Logger,
) {
	pongWait := 2 * s.settings.PingInterval

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, frame, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		// Any inbound traffic proves the peer is alive.
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		s.router.Route(ctx, frame)
	}
}

func (s *WebSocketServer) writeLoop(
	conn *websocket.Conn,
	connection *relay.Connection,
	logger *zap.Logger,
	done chan<- struct{},
) {
	ticker := time.NewTicker(s.settings.PingInterval)

	defer func() {
		ticker.Stop()
		_ = conn.Close()
		close(done)
	}()

	for {
		select {
		case payload := <-connection.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logger.Debug("websocket write failed", zap.Error(err))
				connection.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				connection.Close()
				return
			}
		case <-connection.Done():
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// teardown runs exactly once per connection, after its read loop ends and
// before the socket resources are released.
func (s *WebSocketServer) teardown(connection *relay.Connection) {
	s.registry.Forget(connection.Id)
	s.rooms.Leave(connection.Id)
	s.directory.Remove(connection.Id)
	connection.Close()
}
