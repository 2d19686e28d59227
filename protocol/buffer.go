package protocol

import (
	"container/list"
	"fmt"
)

// MaxBufferedBytes bounds how much unconsumed data a Buffer accepts before Append
// starts failing, implementing the back-pressure ceiling the spec leaves as a
// recommendation (64 MiB per session).
const MaxBufferedBytes = 64 << 20

// ErrBufferOverflow is returned by Append when accepting chunk would push the
// buffer's length past MaxBufferedBytes.
var ErrBufferOverflow = fmt.Errorf("protocol: buffer would exceed %d bytes", MaxBufferedBytes)

// Buffer is an append-mostly byte queue: a sequence of segments so Append never
// copies, and RemoveFirst only copies the segments it actually consumes, retaining
// the tail of a partially consumed segment in place of the original head segment.
type Buffer struct {
	segments *list.List
	length   int
}

// NewBuffer returns an empty framing buffer.
func NewBuffer() *Buffer {
	return &Buffer{segments: list.New()}
}

// Len reports the exact number of outstanding bytes.
func (b *Buffer) Len() int {
	return b.length
}

// Append enqueues chunk without copying it.
func (b *Buffer) Append(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	if b.length+len(chunk) > MaxBufferedBytes {
		return ErrBufferOverflow
	}
	b.segments.PushBack(chunk)
	b.length += len(chunk)
	return nil
}

// PeekFirst returns a copy of the first n bytes without removing them.
func (b *Buffer) PeekFirst(n int) ([]byte, error) {
	if n <= 0 || n > b.length {
		return nil, fmt.Errorf("protocol: PeekFirst(%d) invalid for buffer of length %d", n, b.length)
	}
	out := make([]byte, 0, n)
	remaining := n
	for e := b.segments.Front(); e != nil && remaining > 0; e = e.Next() {
		seg := e.Value.([]byte)
		take := remaining
		if take > len(seg) {
			take = len(seg)
		}
		out = append(out, seg[:take]...)
		remaining -= take
	}
	return out, nil
}

// RemoveFirst returns a copy of the first n bytes and drops them from the buffer.
// Fully consumed segments are dropped outright; a partially consumed head segment
// has its already-read prefix sliced away in place, so later Appends still don't
// copy anything.
func (b *Buffer) RemoveFirst(n int) ([]byte, error) {
	if n <= 0 || n > b.length {
		return nil, fmt.Errorf("protocol: RemoveFirst(%d) invalid for buffer of length %d", n, b.length)
	}
	out := make([]byte, 0, n)
	remaining := n
	for remaining > 0 {
		e := b.segments.Front()
		seg := e.Value.([]byte)
		if len(seg) <= remaining {
			out = append(out, seg...)
			remaining -= len(seg)
			b.segments.Remove(e)
		} else {
			out = append(out, seg[:remaining]...)
			e.Value = seg[remaining:]
			remaining = 0
		}
	}
	b.length -= n
	return out, nil
}
