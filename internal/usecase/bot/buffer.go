package bot

import (
	"sync"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
)

// TranscriptBuffer is the append-only, receipt-ordered event store of one session
type TranscriptBuffer struct {
	mu     sync.Mutex
	events []entities.TranscriptEvent
	sealed bool
}

// NewTranscriptBuffer creates an empty buffer
func NewTranscriptBuffer() *TranscriptBuffer {
	return &TranscriptBuffer{}
}

// Append adds ev at the end. Reports false once the buffer is sealed.
func (b *TranscriptBuffer) Append(ev entities.TranscriptEvent) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.sealed {
		return false
	}
	b.events = append(b.events, ev)
	return true
}

// Seal stops further appends and returns a copy of the events
func (b *TranscriptBuffer) Seal() []entities.TranscriptEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sealed = true
	out := make([]entities.TranscriptEvent, len(b.events))
	copy(out, b.events)
	return out
}

// Len returns the number of buffered events
func (b *TranscriptBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
