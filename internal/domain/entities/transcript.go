package entities

import "strings"

// Transcription is the compiled result returned when a bot leaves a meeting
type Transcription struct {
	Transcript string            `json:"transcript"`
	Speakers   []TranscriptEvent `json:"speakers"`
	Summary    string            `json:"summary"`

	// Partial is set when capture failed mid-session and the result holds
	// only what was received before the failure.
	Partial bool `json:"partial,omitempty"`
}

// CompileTranscript joins event texts with single spaces in receipt order
func CompileTranscript(events []TranscriptEvent) string {
	parts := make([]string, 0, len(events))
	for _, ev := range events {
		parts = append(parts, ev.Text)
	}
	return strings.Join(parts, " ")
}
