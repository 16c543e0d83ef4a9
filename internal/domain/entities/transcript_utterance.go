package entities

import "strings"

// UnknownSpeaker is used when the transcription backend supplies no speaker label
const UnknownSpeaker = "Unknown"

// TranscriptEvent is one incremental recognition result.
// Times are seconds relative to capture start.
type TranscriptEvent struct {
	Text      string  `json:"text"`
	Speaker   string  `json:"speaker"`
	StartTime float64 `json:"timestamp_start"`
	EndTime   float64 `json:"timestamp_end"`
}

// NewTranscriptEvent normalizes a raw recognition result.
// ok is false when the text is empty and the event must be dropped.
func NewTranscriptEvent(text, speaker string, start, end float64) (TranscriptEvent, bool) {
	if strings.TrimSpace(text) == "" {
		return TranscriptEvent{}, false
	}
	if speaker == "" {
		speaker = UnknownSpeaker
	}
	if end < start {
		end = start
	}
	return TranscriptEvent{
		Text:      text,
		Speaker:   speaker,
		StartTime: start,
		EndTime:   end,
	}, true
}
