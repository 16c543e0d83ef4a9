package gateways

import "context"

// JoinRequest carries what a join strategy needs to enter a meeting
type JoinRequest struct {
	SessionID  string
	MeetingURL string
	BotName    string
}

// JoinStrategy drives a page through a provider-specific join sequence
type JoinStrategy interface {
	Name() string

	// EntryURL returns the address the page must be navigated to before Join
	EntryURL(ctx context.Context, req JoinRequest) (string, error)

	// Join performs the provider UI actions on an already navigated page and
	// blocks until the provider signals that the bot is in the meeting.
	Join(ctx context.Context, page Page, req JoinRequest) error
}

// StrategyResolver picks the join strategy for a meeting URL
type StrategyResolver interface {
	Resolve(meetingURL string) (JoinStrategy, error)
}
