package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zeusync/fieldflip/internal/core/observability/log"
)

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.join() {
		http.Error(w, ErrServerNotRunning.Error(), http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.sessionGroup.Done()
		// Upgrade has already replied with an HTTP error
		s.logger.Warn("Websocket upgrade failed",
			log.String("remote_addr", r.RemoteAddr),
			log.Error(err))
		return
	}

	session := &Session{
		ID:          uuid.NewString(),
		Conn:        conn,
		RemoteAddr:  r.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	s.sessions.Store(session.ID, session)
	atomic.AddInt64(&s.sessionCount, 1)

	// Stop may have swept the session map before this session was stored
	if s.isStopping() {
		_ = conn.Close()
	}

	s.logger.Info("Session opened",
		log.String("session_id", session.ID),
		log.String("remote_addr", session.RemoteAddr),
		log.Int("total_sessions", int(atomic.LoadInt64(&s.sessionCount))))

	s.handleSession(session)
}

// handleSession answers requests in arrival order until the peer goes away.
func (s *Server) handleSession(session *Session) {
	sessionLogger := s.logger.With(log.String("session_id", session.ID))

	defer func() {
		s.sessions.Delete(session.ID)
		atomic.AddInt64(&s.sessionCount, -1)
		_ = session.Conn.Close()

		sessionLogger.Info("Session closed",
			log.Uint64("requests", atomic.LoadUint64(&session.Requests)),
			log.Duration("duration", time.Since(session.ConnectedAt)))
		s.sessionGroup.Done()
	}()

	session.Conn.SetReadLimit(s.config.MaxMessageSize)

	for {
		_, data, err := session.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				sessionLogger.Warn("Failed to read request", log.Error(err))
			}
			return
		}
		atomic.AddUint64(&session.Requests, 1)

		resp := s.dispatch(session, data)

		if s.config.WriteTimeout > 0 {
			_ = session.Conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		}
		if err := session.Conn.WriteJSON(resp); err != nil {
			sessionLogger.Error("Failed to write response",
				log.String("request_id", resp.ID),
				log.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(session *Session, data []byte) Response {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("", fmt.Errorf("%w: %v", ErrBadRequest, err))
	}

	s.logger.Debug("Handling request",
		log.String("session_id", session.ID),
		log.String("request_id", req.ID),
		log.String("kind", req.Kind))

	return s.mirror.Handle(s.context(), req)
}
