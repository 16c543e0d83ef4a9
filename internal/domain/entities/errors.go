package entities

import "errors"

// Domain errors
var (
	// Session errors
	ErrInvalidSessionRequest = errors.New("sessionId and meetingUrl are required")
	ErrSessionNotFound       = errors.New("session not found")
	ErrSessionAlreadyActive  = errors.New("session already active")
	ErrInvalidTransition     = errors.New("invalid session state transition")

	// Join errors
	ErrJoinFailed      = errors.New("join failed")
	ErrJoinTimeout     = errors.New("join confirmation timed out")
	ErrNoJoinStrategy  = errors.New("no join strategy for meeting url")
	ErrUnexpectedFault = errors.New("unexpected automation fault")

	// Teardown errors
	ErrTeardownFailed = errors.New("teardown failed")

	// Capture errors
	ErrChannelClosed = errors.New("transcript channel closed")
)
