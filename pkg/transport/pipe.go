// Package transport carries encoded match messages between two peers: an
// in-memory pipe for local play and simulation, and a websocket connection
// for play across machines.
package transport

import (
	"errors"
	"sync"
)

var (
	ErrClosed         = errors.New("transport closed")
	ErrSendBufferFull = errors.New("send buffer full")
)

// PipeEnd is one side of an in-memory connection. Each message is delivered
// on its own goroutine, so delivery order across sends is not guaranteed.
type PipeEnd struct {
	mu        sync.Mutex
	peer      *PipeEnd
	closed    bool
	onReceive func([]byte)
	onClose   func()

	duplicateEvery int
	sent           int
}

type PipeOption func(*PipeEnd)

// WithDuplicateEvery delivers every nth message sent from either end twice.
func WithDuplicateEvery(n int) PipeOption {
	return func(e *PipeEnd) { e.duplicateEvery = n }
}

// NewPipe returns two connected ends.
func NewPipe(opts ...PipeOption) (*PipeEnd, *PipeEnd) {
	a, b := &PipeEnd{}, &PipeEnd{}
	a.peer, b.peer = b, a
	for _, opt := range opts {
		opt(a)
		opt(b)
	}
	return a, b
}

// OnReceive sets the callback for incoming messages. It must be set before
// the peer starts sending.
func (e *PipeEnd) OnReceive(f func([]byte)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onReceive = f
}

// OnClose sets the callback invoked once when the other end closes.
func (e *PipeEnd) OnClose(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onClose = f
}

func (e *PipeEnd) Send(b []byte) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.sent++
	copies := 1
	if e.duplicateEvery > 0 && e.sent%e.duplicateEvery == 0 {
		copies = 2
	}
	e.mu.Unlock()

	msg := append([]byte(nil), b...)
	for i := 0; i < copies; i++ {
		go e.peer.deliver(msg)
	}
	return nil
}

func (e *PipeEnd) deliver(b []byte) {
	e.mu.Lock()
	f, closed := e.onReceive, e.closed
	e.mu.Unlock()
	if closed || f == nil {
		return
	}
	f(b)
}

// Close shuts this end and notifies the other one. It is idempotent.
func (e *PipeEnd) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	go e.peer.remoteClosed()
	return nil
}

func (e *PipeEnd) remoteClosed() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	f := e.onClose
	e.mu.Unlock()

	if f != nil {
		f()
	}
}
