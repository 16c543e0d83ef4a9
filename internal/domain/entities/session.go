package entities

import (
	"time"
)

// SessionState is the lifecycle state of a bot session
type SessionState string

const (
	SessionStateJoining SessionState = "joining"
	SessionStateActive  SessionState = "active"
	SessionStateLeaving SessionState = "leaving"
	SessionStateClosed  SessionState = "closed"
	SessionStateFailed  SessionState = "failed"
)

// IsTerminal reports whether no further transitions are possible
func (s SessionState) IsTerminal() bool {
	return s == SessionStateClosed || s == SessionStateFailed
}

// CanTransitionTo reports whether moving from s to next is a legal transition
func (s SessionState) CanTransitionTo(next SessionState) bool {
	switch s {
	case SessionStateJoining:
		return next == SessionStateActive || next == SessionStateFailed
	case SessionStateActive:
		return next == SessionStateLeaving || next == SessionStateFailed
	case SessionStateLeaving:
		return next == SessionStateClosed || next == SessionStateFailed
	default:
		return false
	}
}

// SessionInfo is a point-in-time view of one bot's participation in a meeting
type SessionInfo struct {
	ID         string       `json:"session_id"`
	MeetingURL string       `json:"meeting_url"`
	State      SessionState `json:"state"`
	Strategy   string       `json:"strategy,omitempty"`
	EventCount int          `json:"event_count"`
	CreatedAt  time.Time    `json:"created_at"`
	ClosedAt   *time.Time   `json:"closed_at,omitempty"`
}

// SessionEvent describes one lifecycle transition, published for observers
type SessionEvent struct {
	SessionID  string       `json:"session_id"`
	MeetingURL string       `json:"meeting_url"`
	State      SessionState `json:"state"`
	Error      string       `json:"error,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewSessionEvent creates a lifecycle event for the given transition
func NewSessionEvent(sessionID, meetingURL string, state SessionState, cause error) SessionEvent {
	ev := SessionEvent{
		SessionID:  sessionID,
		MeetingURL: meetingURL,
		State:      state,
		OccurredAt: time.Now(),
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	return ev
}
