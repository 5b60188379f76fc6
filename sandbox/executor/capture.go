package executor

import (
	"bytes"
	"sync"
)

// boundedBuffer captures a stream up to a byte cap. Bytes past the cap are
// discarded, the truncation flag is set, and the shared capped channel is
// closed exactly once so the supervisor can kill the producer. Writes never
// error: enforcement is the kill path's job, and an error here would only
// race the pipe copier against it.
type boundedBuffer struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	max       int64
	truncated bool

	capped  chan<- struct{}
	capOnce *sync.Once
}

// newCaptureBuffers returns stdout and stderr buffers sharing one cap
// signal. Each stream keeps at most max bytes.
func newCaptureBuffers(max int64) (*boundedBuffer, *boundedBuffer, <-chan struct{}) {
	capped := make(chan struct{})
	once := &sync.Once{}
	mk := func() *boundedBuffer {
		return &boundedBuffer{max: max, capped: capped, capOnce: once}
	}
	return mk(), mk(), capped
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := int64(len(p))
	remain := b.max - int64(b.buf.Len())
	switch {
	case remain >= n:
		b.buf.Write(p)
	case remain > 0:
		b.buf.Write(p[:remain])
		b.trip()
	case n > 0:
		b.trip()
	}
	return len(p), nil
}

func (b *boundedBuffer) trip() {
	b.truncated = true
	b.capOnce.Do(func() { close(b.capped) })
}

// Bytes returns the captured data.
func (b *boundedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out
}

// Truncated reports whether the cap was hit on this stream.
func (b *boundedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
