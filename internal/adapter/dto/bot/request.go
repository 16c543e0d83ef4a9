package bot

// JoinRequest represents the request to send a bot into a meeting
type JoinRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	MeetingURL string `json:"meetingUrl" validate:"required,meetingurl"`
}

// LeaveRequest represents the request to take a bot out of a meeting
type LeaveRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}
