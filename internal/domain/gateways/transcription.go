package gateways

import "context"

// Utterance is a raw recognition result as delivered by a transcription backend.
// Start and End are seconds relative to the first audio sent on the channel.
type Utterance struct {
	Text    string
	Speaker string
	Start   float64
	End     float64
}

// TranscriptChannel is a live streaming connection to a transcription backend
type TranscriptChannel interface {
	// Send forwards 16-bit little-endian mono PCM
	Send(ctx context.Context, pcm []byte) error

	// Events delivers utterances in receipt order. It is closed once the
	// channel is closed or the upstream connection fails.
	Events() <-chan Utterance

	// Err reports the upstream failure that ended the channel, if any
	Err() error

	// Close stops emission and releases upstream resources.
	// No utterance is delivered on Events after Close returns.
	Close(ctx context.Context) error
}

// Transcriber opens transcript channels
type Transcriber interface {
	Name() string
	Open(ctx context.Context, token string) (TranscriptChannel, error)
}

// TokenSource supplies the credential used to open a transcript channel
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Summarizer turns a full transcript into a summary
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}
