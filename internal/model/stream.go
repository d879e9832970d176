package model

import (
	"context"
	"sync"
)

// Stream delivers chat events as they arrive from the backend. The channel
// closes when the backend finishes or fails; after that, Err reports the
// failure, if any, as a *Error.
type Stream struct {
	events chan ChatResponse
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func newStream(cancel context.CancelFunc) *Stream {
	return &Stream{
		events: make(chan ChatResponse, 16),
		cancel: cancel,
	}
}

func (s *Stream) Events() <-chan ChatResponse { return s.events }

// Err returns the terminal error, valid once Events is closed.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close abandons the stream. Safe to call at any point; events already
// buffered may still be drained.
func (s *Stream) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Stream) send(ctx context.Context, event ChatResponse) bool {
	select {
	case s.events <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Stream) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *Stream) closeSend() {
	close(s.events)
}
