package joinstrategy

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/external/livekit"
)

const (
	LiveKitName = "livekit"

	defaultPollInterval = time.Second
)

var liveKitJoinButtons = []string{"Join Room", "Join"}

// LiveKitStrategy joins LiveKit Meet rooms with a server-minted token and
// confirms entry through the room service instead of the DOM.
type LiveKitStrategy struct {
	client       livekit.Client
	host         string
	pollInterval time.Duration
	logger       *zap.Logger
}

// NewLiveKitStrategy creates a strategy for meetings hosted at host
func NewLiveKitStrategy(client livekit.Client, host string, logger *zap.Logger) *LiveKitStrategy {
	return &LiveKitStrategy{
		client:       client,
		host:         host,
		pollInterval: defaultPollInterval,
		logger:       logger,
	}
}

// Name returns the strategy name
func (s *LiveKitStrategy) Name() string {
	return LiveKitName
}

// Identity is the participant identity used by the bot for a session
func Identity(sessionID string) string {
	return "meeting-bot-" + sessionID
}

// RoomName extracts the room from a LiveKit Meet URL such as https://host/rooms/<room>
func RoomName(meetingURL string) (string, error) {
	u, err := url.Parse(meetingURL)
	if err != nil {
		return "", fmt.Errorf("parse meeting url: %w", err)
	}
	room := path.Base(strings.TrimSuffix(u.Path, "/"))
	if room == "" || room == "." || room == "/" {
		return "", fmt.Errorf("meeting url %q has no room", meetingURL)
	}
	return room, nil
}

// EntryURL mints a subscribe-only token and points the page at the custom connection page
func (s *LiveKitStrategy) EntryURL(ctx context.Context, req gateways.JoinRequest) (string, error) {
	room, err := RoomName(req.MeetingURL)
	if err != nil {
		return "", err
	}

	token, err := s.client.GenerateToken(Identity(req.SessionID), room, req.BotName, nil)
	if err != nil {
		return "", err
	}

	entry := url.URL{
		Scheme: "https",
		Host:   s.host,
		Path:   "/custom",
	}
	q := entry.Query()
	q.Set("liveKitUrl", s.client.URL())
	q.Set("token", token)
	entry.RawQuery = q.Encode()
	return entry.String(), nil
}

// Join clicks through the prejoin screen and waits until the room service
// lists the bot as a participant
func (s *LiveKitStrategy) Join(ctx context.Context, page gateways.Page, req gateways.JoinRequest) error {
	room, err := RoomName(req.MeetingURL)
	if err != nil {
		return err
	}

	if _, err := clickByText(ctx, page, liveKitJoinButtons, true); err != nil {
		return err
	}

	identity := Identity(req.SessionID)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		participants, err := s.client.ListParticipants(ctx, room)
		if err == nil {
			for _, p := range participants {
				if p.Identity == identity {
					return nil
				}
			}
		} else if ctx.Err() == nil {
			s.logger.Debug("Participant lookup failed, retrying",
				zap.String("session_id", req.SessionID),
				zap.String("room", room),
				zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s not in room %s", entities.ErrJoinTimeout, identity, room)
		case <-ticker.C:
		}
	}
}
