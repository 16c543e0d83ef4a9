package presenter

import (
	"github.com/johnquangdev/meeting-bot/internal/adapter/dto/bot"
	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
)

// ToSessionResponse converts a SessionInfo to SessionResponse DTO
func ToSessionResponse(s *entities.SessionInfo) *bot.SessionResponse {
	if s == nil {
		return nil
	}

	return &bot.SessionResponse{
		SessionID:  s.ID,
		MeetingURL: s.MeetingURL,
		State:      string(s.State),
		Strategy:   s.Strategy,
		EventCount: s.EventCount,
		CreatedAt:  s.CreatedAt,
		ClosedAt:   s.ClosedAt,
	}
}

// ToSessionListResponse converts session snapshots to a list response
func ToSessionListResponse(sessions []*entities.SessionInfo) *bot.SessionListResponse {
	out := make([]*bot.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, ToSessionResponse(s))
	}
	return &bot.SessionListResponse{
		Sessions: out,
		Total:    len(out),
	}
}

// ToTranscriptionResponse converts a compiled transcription to its DTO.
// Speakers is never null in the output.
func ToTranscriptionResponse(t *entities.Transcription) *bot.TranscriptionResponse {
	if t == nil {
		return nil
	}

	speakers := make([]bot.TranscriptEventResponse, 0, len(t.Speakers))
	for _, ev := range t.Speakers {
		speakers = append(speakers, bot.TranscriptEventResponse{
			Text:           ev.Text,
			Speaker:        ev.Speaker,
			TimestampStart: ev.StartTime,
			TimestampEnd:   ev.EndTime,
		})
	}

	return &bot.TranscriptionResponse{
		Transcript: t.Transcript,
		Speakers:   speakers,
		Summary:    t.Summary,
		Partial:    t.Partial,
	}
}
