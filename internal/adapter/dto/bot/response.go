package bot

import "time"

// JoinResponse is returned once the bot is in the meeting and capturing
type JoinResponse struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
}

// TranscriptEventResponse is one speaker-attributed utterance
type TranscriptEventResponse struct {
	Text           string  `json:"text"`
	Speaker        string  `json:"speaker"`
	TimestampStart float64 `json:"timestamp_start"`
	TimestampEnd   float64 `json:"timestamp_end"`
}

// TranscriptionResponse is the compiled result of a session
type TranscriptionResponse struct {
	Transcript string                    `json:"transcript"`
	Speakers   []TranscriptEventResponse `json:"speakers"`
	Summary    string                    `json:"summary"`
	Partial    bool                      `json:"partial,omitempty"`
}

// LeaveResponse is returned after a successful leave
type LeaveResponse struct {
	Success       bool                   `json:"success"`
	Transcription *TranscriptionResponse `json:"transcription"`
}

// LeaveErrorResponse carries whatever was captured when teardown failed
type LeaveErrorResponse struct {
	Error         string                 `json:"error"`
	Code          interface{}            `json:"code,omitempty"`
	Transcription *TranscriptionResponse `json:"transcription,omitempty"`
}

// SessionResponse describes a registered session
type SessionResponse struct {
	SessionID  string     `json:"sessionId"`
	MeetingURL string     `json:"meetingUrl"`
	State      string     `json:"state"`
	Strategy   string     `json:"strategy,omitempty"`
	EventCount int        `json:"eventCount"`
	CreatedAt  time.Time  `json:"createdAt"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
}

// SessionListResponse lists registered sessions
type SessionListResponse struct {
	Sessions []*SessionResponse `json:"sessions"`
	Total    int                `json:"total"`
}
