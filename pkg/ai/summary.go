package ai

import (
	"context"
)

const placeholderLength = 100

// PlaceholderSummarizer stands in for real summarization: it returns the first
// 100 characters of the transcript followed by "...".
type PlaceholderSummarizer struct{}

// Summarize never fails
func (PlaceholderSummarizer) Summarize(_ context.Context, transcript string) (string, error) {
	return PlaceholderSummary(transcript), nil
}

// PlaceholderSummary truncates transcript to 100 characters and appends "..."
func PlaceholderSummary(transcript string) string {
	runes := []rune(transcript)
	if len(runes) > placeholderLength {
		runes = runes[:placeholderLength]
	}
	return string(runes) + "..."
}
