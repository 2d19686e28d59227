package server

import (
	"go.uber.org/zap"

	"LatticeDB/protocol"
	"LatticeDB/types"
)

// dispatch implements the orchestrator's per-packet-type rules. It recovers from
// any panic in a handler and reports it as UnexpectedError rather than tearing
// down the session — an engine panic should not occur, but a single buggy request
// must not take the whole session down with it.
func (s *Server) dispatch(state *sessionState, p protocol.Packet, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic handling packet", zap.Any("recovered", r))
			s.replyUnexpectedError(state, p)
		}
	}()

	switch req := p.(type) {
	case *protocol.AuthRequest:
		s.handleAuth(state, req)
	case *protocol.DataRequest:
		s.handleFind(state, req)
	case *protocol.DataAdditionRequest:
		s.handleAdd(state, req)
	case *protocol.DataRemovalRequest:
		s.handleRemove(state, req)
	default:
		logger.Warn("unexpected packet at server", zap.Int("type", int(p.Type())))
	}
}

func (s *Server) handleAuth(state *sessionState, req *protocol.AuthRequest) {
	if req.APIKey == s.cfg.APIKey {
		state.authenticated.Store(true)
		_ = state.sess.SendResponse(req, &protocol.AuthResponse{Status: protocol.StatusSuccess})
		return
	}
	_ = state.sess.SendResponse(req, &protocol.AuthResponse{Status: protocol.StatusFailure, ErrorCode: protocol.ErrorAuthRequired})
}

func (s *Server) handleFind(state *sessionState, req *protocol.DataRequest) {
	if !state.authenticated.Load() {
		_ = state.sess.SendResponse(req, &protocol.DataResponse{Status: protocol.StatusFailure, ErrorCode: protocol.ErrorAuthRequired})
		return
	}

	v, ok := s.store.Find(req.Key)
	if !ok {
		_ = state.sess.SendResponse(req, &protocol.DataResponse{Status: protocol.StatusFailure, ErrorCode: protocol.ErrorKeyNotFound})
		return
	}
	_ = state.sess.SendResponse(req, &protocol.DataResponse{
		Status:    protocol.StatusSuccess,
		ValueKind: v.Kind,
		ValueRaw:  v.Raw,
	})
}

func (s *Server) handleAdd(state *sessionState, req *protocol.DataAdditionRequest) {
	if !state.authenticated.Load() {
		_ = state.sess.SendResponse(req, &protocol.DataAdditionResponse{Status: protocol.StatusFailure, ErrorCode: protocol.ErrorAuthRequired})
		return
	}

	s.store.Add(req.Key, types.Value{Kind: req.ValueKind, Raw: req.ValueRaw})
	_ = state.sess.SendResponse(req, &protocol.DataAdditionResponse{Status: protocol.StatusSuccess})
}

func (s *Server) handleRemove(state *sessionState, req *protocol.DataRemovalRequest) {
	if !state.authenticated.Load() {
		_ = state.sess.SendResponse(req, &protocol.DataRemovalResponse{Status: protocol.StatusFailure, ErrorCode: protocol.ErrorAuthRequired})
		return
	}

	s.store.Remove(req.Key)
	_ = state.sess.SendResponse(req, &protocol.DataRemovalResponse{Status: protocol.StatusSuccess})
}

// replyUnexpectedError best-effort replies to a data request p with that kind's
// Failure/UnexpectedError response; an AuthRequest gets no reply. Used only from
// the panic recovery path in dispatch.
func (s *Server) replyUnexpectedError(state *sessionState, p protocol.Packet) {
	switch req := p.(type) {
	case *protocol.DataRequest:
		_ = state.sess.SendResponse(req, &protocol.DataResponse{Status: protocol.StatusFailure, ErrorCode: protocol.ErrorUnexpectedError})
	case *protocol.DataAdditionRequest:
		_ = state.sess.SendResponse(req, &protocol.DataAdditionResponse{Status: protocol.StatusFailure, ErrorCode: protocol.ErrorUnexpectedError})
	case *protocol.DataRemovalRequest:
		_ = state.sess.SendResponse(req, &protocol.DataRemovalResponse{Status: protocol.StatusFailure, ErrorCode: protocol.ErrorUnexpectedError})
	}
}
