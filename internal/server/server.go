package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeusync/fieldflip/internal/config"
	"github.com/zeusync/fieldflip/internal/core/observability/log"
)

// Server exposes a Mirror over websocket connections.
type Server struct {
	mirror   *Mirror
	upgrader websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener

	// Session management
	sessions     sync.Map // map[string]*Session
	sessionCount int64    // atomic
	sessionGroup sync.WaitGroup

	// Server state
	running int32 // atomic bool
	closed  int32 // atomic bool

	// mu guards the fields below. baseCtx outlives hijacked requests; each
	// Start gets a fresh one and Stop cancels it.
	mu       sync.Mutex
	baseCtx  context.Context
	cancel   context.CancelFunc
	stopping bool

	config config.ServerConfig
	logger log.Log
}

// Session is one connected policy worker.
type Session struct {
	ID          string
	Conn        *websocket.Conn
	RemoteAddr  string
	ConnectedAt time.Time
	Requests    uint64 // atomic
}

// NewServer creates a mirror server
func NewServer(cfg config.ServerConfig, mirror *Mirror, logger log.Log) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		mirror: mirror,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		baseCtx: ctx,
		cancel:  cancel,
		config:  cfg,
		logger:  logger.With(log.String("component", "server")),
	}

	s.logger.Info("Server created",
		log.String("listen_addr", cfg.Addr),
		log.Int("max_message_size", int(cfg.MaxMessageSize)))

	return s
}

// Handler returns the HTTP routes: /ws upgrades to a mirror session and
// /healthz reports Stats.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start(_ context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}

	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	s.logger.Info("Starting server")

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		s.logger.Error("Failed to create listener", log.Error(err))
		return err
	}

	s.mu.Lock()
	s.cancel()
	s.baseCtx, s.cancel = context.WithCancel(context.Background())
	s.stopping = false
	s.mu.Unlock()

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server stopped unexpectedly", log.Error(err))
		}
	}()

	s.logger.Info("Server listening",
		log.String("addr", listener.Addr().String()))

	return nil
}

// Addr is the bound listen address, nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop stops accepting connections, closes open sessions and waits for their
// handlers to return or ctx to expire.
func (s *Server) Stop(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}

	s.logger.Info("Stopping server")

	// no session may join the wait group once Wait can start
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	err := s.httpServer.Shutdown(ctx)

	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	// Shutdown does not track hijacked connections
	s.sessions.Range(func(_, value any) bool {
		if session, ok := value.(*Session); ok {
			deadline := time.Now().Add(time.Second)
			_ = session.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
			_ = session.Conn.Close()
		}
		return true
	})

	done := make(chan struct{})
	go func() {
		s.sessionGroup.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
	}

	s.logger.Info("Server stopped")

	return err
}

// Close stops the server if it is running. The server cannot be restarted.
func (s *Server) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil // Already closed
	}

	s.logger.Info("Closing server")

	if atomic.LoadInt32(&s.running) == 1 {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		_ = s.Stop(ctx)
	}

	s.mu.Lock()
	s.cancel()
	s.stopping = true
	s.mu.Unlock()

	return nil
}

// context returns the context requests of the current run are handled with.
func (s *Server) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

// join registers a new session unless the server is stopping.
func (s *Server) join() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.sessionGroup.Add(1)
	return true
}

func (s *Server) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

// Stats contains server statistics
type Stats struct {
	SessionCount int64  `json:"session_count"`
	Running      bool   `json:"running"`
	ActionSet    string `json:"action_set"`
}

// GetStats returns server statistics
func (s *Server) GetStats() Stats {
	return Stats{
		SessionCount: atomic.LoadInt64(&s.sessionCount),
		Running:      atomic.LoadInt32(&s.running) == 1,
		ActionSet:    s.mirror.set.Name(),
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.GetStats()); err != nil {
		s.logger.Warn("Failed to write health response", log.Error(err))
	}
}
