package bot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-bot/pkg/ai"
)

// Service defines meeting bot session operations
type Service interface {
	// Join sends a bot into the meeting and starts transcription
	Join(ctx context.Context, sessionID, meetingURL string) (*entities.SessionInfo, error)

	// Leave stops transcription, releases the browser and returns the compiled transcription
	Leave(ctx context.Context, sessionID string) (*entities.Transcription, error)

	GetSession(ctx context.Context, sessionID string) (*entities.SessionInfo, error)
	ListSessions(ctx context.Context) []*entities.SessionInfo

	// Shutdown cancels in-flight joins and leaves every active session
	Shutdown(ctx context.Context) error
}

// Options tunes the session lifecycle
type Options struct {
	JoinTimeout        time.Duration
	NavigationTimeout  time.Duration
	BotName            string
	SampleRate         int
	FailureScreenshots bool
}

// Dependencies are the collaborators of the bot service.
// Summarizer, Artifacts and Publisher are optional.
type Dependencies struct {
	Launcher    gateways.Launcher
	Resolver    gateways.StrategyResolver
	Transcriber gateways.Transcriber
	Tokens      gateways.TokenSource
	Summarizer  gateways.Summarizer
	Artifacts   gateways.ArtifactStore
	Publisher   gateways.EventPublisher
}

type botService struct {
	registry    *Registry
	launcher    gateways.Launcher
	resolver    gateways.StrategyResolver
	transcriber gateways.Transcriber
	tokens      gateways.TokenSource
	summarizer  gateways.Summarizer
	artifacts   gateways.ArtifactStore
	publisher   gateways.EventPublisher
	opts        Options
	logger      *zap.Logger

	// joinCtx bounds in-flight joins and is cancelled on shutdown
	joinCtx    context.Context
	cancelJoin context.CancelFunc
}

// NewService constructs the bot service around registry
func NewService(registry *Registry, deps Dependencies, opts Options, logger *zap.Logger) Service {
	if opts.JoinTimeout <= 0 {
		opts.JoinTimeout = 60 * time.Second
	}
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 45 * time.Second
	}
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	if opts.BotName == "" {
		opts.BotName = "Meeting Bot"
	}
	if deps.Summarizer == nil {
		deps.Summarizer = ai.PlaceholderSummarizer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	joinCtx, cancel := context.WithCancel(context.Background())
	return &botService{
		registry:    registry,
		launcher:    deps.Launcher,
		resolver:    deps.Resolver,
		transcriber: deps.Transcriber,
		tokens:      deps.Tokens,
		summarizer:  deps.Summarizer,
		artifacts:   deps.Artifacts,
		publisher:   deps.Publisher,
		opts:        opts,
		logger:      logger,
		joinCtx:     joinCtx,
		cancelJoin:  cancel,
	}
}

// Join registers a new session and runs its join sequence.
// The sequence is bound to the service lifetime, not to ctx, so a dropped
// request does not leave a half-joined browser behind.
func (s *botService) Join(ctx context.Context, sessionID, meetingURL string) (*entities.SessionInfo, error) {
	if sessionID == "" || meetingURL == "" {
		return nil, entities.ErrInvalidSessionRequest
	}
	if s.joinCtx.Err() != nil {
		return nil, fmt.Errorf("%w: service is shutting down", entities.ErrJoinFailed)
	}

	c := newController(s, sessionID, meetingURL)
	if !s.registry.InsertIfAbsent(sessionID, c) {
		return nil, entities.ErrSessionAlreadyActive
	}
	metrics.SessionStarted()
	c.publish(entities.SessionStateJoining, nil)

	if err := c.start(s.joinCtx); err != nil {
		return nil, err
	}
	return c.info(), nil
}

// Leave waits for a pending join to settle, then tears the session down
func (s *botService) Leave(ctx context.Context, sessionID string) (*entities.Transcription, error) {
	c, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, entities.ErrSessionNotFound
	}

	select {
	case <-c.joined:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return c.leave(ctx)
}

// GetSession returns a snapshot of a registered session
func (s *botService) GetSession(ctx context.Context, sessionID string) (*entities.SessionInfo, error) {
	c, ok := s.registry.Get(sessionID)
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return c.info(), nil
}

// ListSessions returns snapshots of all registered sessions
func (s *botService) ListSessions(ctx context.Context) []*entities.SessionInfo {
	controllers := s.registry.List()
	out := make([]*entities.SessionInfo, 0, len(controllers))
	for _, c := range controllers {
		out = append(out, c.info())
	}
	return out
}

// Shutdown stops accepting joins, cancels those in flight and leaves all
// active sessions. It returns once every session has been torn down or ctx is done.
func (s *botService) Shutdown(ctx context.Context) error {
	s.cancelJoin()

	var errs error
	for _, c := range s.registry.List() {
		select {
		case <-c.joined:
		case <-ctx.Done():
			return multierr.Append(errs, ctx.Err())
		}

		if c.currentState() != entities.SessionStateActive {
			continue
		}
		if _, err := c.leave(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("session %s: %w", c.id, err))
			continue
		}
		s.logger.Info("🛑 Session closed on shutdown", zap.String("session_id", c.id))
	}
	return errs
}
