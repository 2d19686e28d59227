// Package server implements the orchestrator: one listener, one concurrent store,
// the shared secret, and the per-session authenticated-or-not table described by
// the server orchestrator component.
package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"LatticeDB/protocol"
	"LatticeDB/session"
	"LatticeDB/store"
)

// sessionState is everything the orchestrator tracks about one accepted connection.
// The authenticated flag is only read and written by packet dispatch, which runs
// on the session's own polling goroutine.
type sessionState struct {
	id            uuid.UUID
	sess          *session.Session
	authenticated atomic.Bool
}

// Server is the orchestrator: it binds one listener, owns one store, and tracks
// every live session in a concurrent table.
type Server struct {
	cfg      Config
	store    *store.Store
	logger   *zap.Logger
	listener net.Listener
	sessions sync.Map // uuid.UUID -> *sessionState
}

// New builds a Server. st is not closed by the Server; the caller retains
// ownership and should Close it after Shutdown returns.
func New(cfg Config, st *store.Store, logger *zap.Logger) *Server {
	return &Server{cfg: cfg, store: st, logger: logger}
}

// ListenAndServe binds to the configured port on all interfaces and serves it.
// It blocks until the listener closes, returning nil on a clean Shutdown.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(l)
}

// Serve accepts connections on l until it is closed, spawning one session per
// connection. It blocks until the listener closes, returning nil on a clean
// Shutdown. Exposed separately from ListenAndServe so callers (and tests) that
// need an already-bound listener, such as one on an ephemeral port, can drive the
// accept loop directly.
func (s *Server) Serve(l net.Listener) error {
	s.listener = l
	s.logger.Info("listening", zap.String("addr", l.Addr().String()))

	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		go s.handleConn(conn)
	}
}

// Shutdown closes the listener and every tracked session. It does not close the
// store.
func (s *Server) Shutdown() error {
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.sessions.Range(func(_, v any) bool {
		v.(*sessionState).sess.End(nil)
		return true
	})
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	id := uuid.New()
	sess := session.New(conn)
	state := &sessionState{id: id, sess: sess}
	s.sessions.Store(id, state)

	logger := s.logger.With(zap.String("session", id.String()))
	logger.Info("session accepted", zap.String("remote", conn.RemoteAddr().String()))

	sess.OnDecodeError(func(de *protocol.DecodeError) {
		logger.Warn("decode error", zap.String("kind", de.Kind.String()), zap.String("detail", de.Detail))
	})
	sess.OnPacket(func(p protocol.Packet) {
		s.dispatch(state, p, logger)
	})
	sess.OnEnded(func(err error) {
		s.sessions.Delete(id)
		logger.Info("session ended", zap.Error(err))
	})

	sess.StartPolling()
}
