package joinstrategy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
)

const (
	GoogleMeetName = "googlemeet"

	// joinedSelector appears once the call view has loaded
	joinedSelector = "[data-meeting-code]"
	nameSelector   = `input[type="text"][aria-label="Your name"]`
)

var (
	// Media toggles are only labelled "Turn off" while the device is on,
	// so clicking them is a no-op once already muted.
	mediaToggles = []string{"Turn off camera", "Turn off microphone"}
	joinButtons  = []string{"Join now", "Ask to join", "Join meeting"}
)

// GoogleMeetStrategy joins through the Google Meet lobby UI
type GoogleMeetStrategy struct {
	logger *zap.Logger
}

// NewGoogleMeetStrategy creates the lobby-button strategy
func NewGoogleMeetStrategy(logger *zap.Logger) *GoogleMeetStrategy {
	return &GoogleMeetStrategy{logger: logger}
}

// Name returns the strategy name
func (s *GoogleMeetStrategy) Name() string {
	return GoogleMeetName
}

// EntryURL is the meeting URL itself
func (s *GoogleMeetStrategy) EntryURL(ctx context.Context, req gateways.JoinRequest) (string, error) {
	return req.MeetingURL, nil
}

// Join mutes devices, asks to join and waits for the call view
func (s *GoogleMeetStrategy) Join(ctx context.Context, page gateways.Page, req gateways.JoinRequest) error {
	muted, err := clickByText(ctx, page, mediaToggles, false)
	if err != nil {
		return err
	}

	if _, err := fillName(ctx, page, req.BotName, nameSelector); err != nil {
		return err
	}

	clicked, err := clickByText(ctx, page, joinButtons, true)
	if err != nil {
		return err
	}
	s.logger.Debug("Lobby actions done",
		zap.String("session_id", req.SessionID),
		zap.Strings("muted", muted),
		zap.Strings("clicked", clicked))

	if err := page.WaitForSelector(ctx, joinedSelector); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s never appeared", entities.ErrJoinTimeout, joinedSelector)
		}
		return err
	}
	return nil
}
