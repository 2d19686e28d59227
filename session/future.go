package session

import (
	"context"
	"fmt"

	"LatticeDB/protocol"
)

// ErrSessionEnded is the terminal error every future still pending at session end
// is completed with.
var ErrSessionEnded = fmt.Errorf("session: ended")

// ResponseFuture is the handle SendRequest returns. It resolves exactly once,
// either to the correlated response packet or to an error.
type ResponseFuture struct {
	ch       chan futureResult
	resolved bool // set before the result is sent; safe to read from the completing goroutine only
}

type futureResult struct {
	packet protocol.Packet
	err    error
}

func newResponseFuture() *ResponseFuture {
	return &ResponseFuture{ch: make(chan futureResult, 1)}
}

func (f *ResponseFuture) complete(p protocol.Packet) {
	f.resolved = true
	f.ch <- futureResult{packet: p}
}

func (f *ResponseFuture) fail(err error) {
	f.resolved = true
	f.ch <- futureResult{err: err}
}

// Wait blocks until the future resolves or ctx is done.
func (f *ResponseFuture) Wait(ctx context.Context) (protocol.Packet, error) {
	select {
	case r := <-f.ch:
		return r.packet, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
