package session

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"LatticeDB/protocol"
)

// MaxConsecutiveDecodeErrors is the number of decode errors a session tolerates
// without an intervening successfully decoded packet before it ends itself.
const MaxConsecutiveDecodeErrors = 8

// readChunkSize is the buffer size used for each net.Conn.Read call.
const readChunkSize = 64 * 1024

// Session wraps one transport connection, multiplexing it into typed packets and
// correlating responses to outstanding requests by packet id.
type Session struct {
	conn net.Conn
	buf  *protocol.Buffer

	inFlight sync.Map // uint32 -> *ResponseFuture
	nextID   uint32   // atomic

	headerLatch             *protocol.Header
	consecutiveDecodeErrors int

	ended   atomic.Bool
	endOnce sync.Once

	mu         sync.Mutex
	onPacket   func(protocol.Packet)
	onEnded    func(error)
	onDecodeErr func(*protocol.DecodeError)
}

// New wraps conn in a Session. The caller must invoke StartPolling before any
// SendRequest's response can complete.
func New(conn net.Conn) *Session {
	return &Session{
		conn: conn,
		buf:  protocol.NewBuffer(),
	}
}

// SendPacket encodes and transmits p without awaiting a response.
func (s *Session) SendPacket(p protocol.Packet) error {
	if s.ended.Load() {
		return ErrSessionEnded
	}
	wire := protocol.Encode(p)
	if _, err := s.conn.Write(wire); err != nil {
		s.End(fmt.Errorf("session: write failed: %w", err))
		return err
	}
	return nil
}

// SendResponse stamps response with original's packet id and sends it.
func (s *Session) SendResponse(original, response protocol.Packet) error {
	response.SetID(original.ID())
	return s.SendPacket(response)
}

// SendRequest allocates a fresh non-zero packet id, registers a completion under
// it, and sends p. The returned future resolves when a response with the same id
// arrives, or fails if the session ends first.
func (s *Session) SendRequest(p protocol.Packet) (*ResponseFuture, error) {
	if s.ended.Load() {
		return nil, ErrSessionEnded
	}

	id := s.allocateID()
	future := newResponseFuture()
	if _, loaded := s.inFlight.LoadOrStore(id, future); loaded {
		return nil, fmt.Errorf("session: packet id %d already in flight", id)
	}
	p.SetID(id)

	if err := s.SendPacket(p); err != nil {
		s.inFlight.Delete(id)
		return nil, err
	}
	return future, nil
}

func (s *Session) allocateID() uint32 {
	for {
		id := atomic.AddUint32(&s.nextID, 1)
		if id != 0 {
			return id
		}
	}
}

// StartPolling begins reading from the transport in a dedicated goroutine.
// Packets that arrive before StartPolling is called may be lost.
func (s *Session) StartPolling() {
	go s.pollLoop()
}

func (s *Session) pollLoop() {
	chunk := make([]byte, readChunkSize)
	for {
		n, err := s.conn.Read(chunk)
		if n > 0 {
			s.feed(chunk[:n])
		}
		if err != nil {
			s.End(fmt.Errorf("session: read failed: %w", err))
			return
		}
		if s.ended.Load() {
			return
		}
	}
}

// feed appends a chunk read from the transport and decodes as many full packets
// out of the framing buffer as are available.
func (s *Session) feed(chunk []byte) {
	if err := s.buf.Append(chunk); err != nil {
		s.End(fmt.Errorf("session: %w", err))
		return
	}

	for {
		progressed, err := s.decodeOne()
		if err != nil {
			s.End(err)
			return
		}
		if !progressed {
			return
		}
	}
}

// decodeOne attempts one step of the streaming decode algorithm: peel a header if
// none is latched, or peel a payload if one is. It returns progressed=true if it
// consumed bytes from the buffer, regardless of whether decoding succeeded.
func (s *Session) decodeOne() (progressed bool, fatal error) {
	if s.headerLatch == nil {
		if s.buf.Len() < protocol.HeaderSize {
			return false, nil
		}
		raw, err := s.buf.RemoveFirst(protocol.HeaderSize)
		if err != nil {
			return false, fmt.Errorf("session: %w", err)
		}
		header, err := protocol.DecodeHeader(raw)
		if err != nil {
			if fatal := s.recordDecodeError(err); fatal != nil {
				return true, fatal
			}
			return true, nil
		}
		s.headerLatch = &header
		return true, nil
	}

	header := *s.headerLatch
	if uint32(s.buf.Len()) < header.PayloadLength {
		return false, nil
	}
	payload, err := s.buf.RemoveFirst(int(header.PayloadLength))
	if err != nil {
		return false, fmt.Errorf("session: %w", err)
	}
	s.headerLatch = nil

	packet, err := protocol.Decode(header, payload)
	if err != nil {
		if fatal := s.recordDecodeError(err); fatal != nil {
			return true, fatal
		}
		return true, nil
	}

	s.consecutiveDecodeErrors = 0
	s.dispatch(packet)
	return true, nil
}

// recordDecodeError tallies a decode failure and returns a non-nil error if the
// session has exceeded its tolerance and must end.
func (s *Session) recordDecodeError(err error) error {
	s.consecutiveDecodeErrors++
	if de, ok := err.(*protocol.DecodeError); ok {
		s.mu.Lock()
		handler := s.onDecodeErr
		s.mu.Unlock()
		if handler != nil {
			handler(de)
		}
	}
	if s.consecutiveDecodeErrors >= MaxConsecutiveDecodeErrors {
		return fmt.Errorf("session: %d consecutive decode errors, last: %w", s.consecutiveDecodeErrors, err)
	}
	return nil
}

// dispatch completes the in-flight future for a response before firing the
// packet event, per the correlation rule.
func (s *Session) dispatch(p protocol.Packet) {
	if isResponseType(p.Type()) && p.ID() != 0 {
		if future, ok := s.inFlight.LoadAndDelete(p.ID()); ok {
			future.(*ResponseFuture).complete(p)
		}
	}

	s.mu.Lock()
	handler := s.onPacket
	s.mu.Unlock()
	if handler != nil {
		handler(p)
	}
}

func isResponseType(t protocol.PacketType) bool {
	switch t {
	case protocol.TypeAuthResponse, protocol.TypeDataResponse, protocol.TypeDataAdditionResponse, protocol.TypeDataRemovalResponse:
		return true
	default:
		return false
	}
}

// End closes the transport and fails every pending request completion with
// cause (or ErrSessionEnded if cause is nil). Idempotent.
func (s *Session) End(cause error) {
	s.endOnce.Do(func() {
		s.ended.Store(true)
		if cause == nil {
			cause = ErrSessionEnded
		}

		s.conn.Close()

		s.inFlight.Range(func(key, value any) bool {
			// LoadAndDelete so a future that dispatch is completing concurrently
			// is resolved by only one of the two.
			if _, ok := s.inFlight.LoadAndDelete(key); ok {
				value.(*ResponseFuture).fail(cause)
			}
			return true
		})

		s.mu.Lock()
		handler := s.onEnded
		s.mu.Unlock()
		if handler != nil {
			handler(cause)
		}
	})
}

// Ended reports whether the session has terminated.
func (s *Session) Ended() bool {
	return s.ended.Load()
}
