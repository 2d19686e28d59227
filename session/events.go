package session

import "LatticeDB/protocol"

// OnPacket registers the callback fired for every inbound packet, including
// responses — fired after the corresponding future is completed. Must be called
// before StartPolling to avoid missing early packets.
func (s *Session) OnPacket(handler func(protocol.Packet)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onPacket = handler
}

// OnEnded registers the callback fired exactly once when the session terminates.
func (s *Session) OnEnded(handler func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEnded = handler
}

// OnDecodeError registers the callback fired for every decode failure, before the
// consecutive-error threshold is evaluated. Used for diagnostics and logging.
func (s *Session) OnDecodeError(handler func(*protocol.DecodeError)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onDecodeErr = handler
}
