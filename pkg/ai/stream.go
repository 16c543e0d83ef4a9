package ai

import (
	"sync"

	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
)

const eventBufferSize = 256

// stream fans backend callbacks into an ordered utterance channel.
// Once shut, emit is a no-op and the events channel is closed.
type stream struct {
	mu     sync.Mutex
	closed bool
	err    error
	events chan gateways.Utterance
}

func newStream() *stream {
	return &stream{events: make(chan gateways.Utterance, eventBufferSize)}
}

// emit delivers u unless the stream is already shut. It blocks while the
// buffer is full; the consumer drains until the channel is closed.
func (s *stream) emit(u gateways.Utterance) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.events <- u
	return true
}

// fail records err as the reason the stream ended and shuts it
func (s *stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.err = err
	s.closed = true
	close(s.events)
}

// shut stops emission. Reports false when the stream was already shut.
func (s *stream) shut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.closed = true
	close(s.events)
	return true
}

func (s *stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Events returns the utterance channel
func (s *stream) Events() <-chan gateways.Utterance {
	return s.events
}

// Err returns the upstream failure that ended the stream, if any
func (s *stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
