package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/metrics"
	"github.com/johnquangdev/meeting-bot/pkg/ai"
	"github.com/johnquangdev/meeting-bot/pkg/sessionctx"
)

const (
	screenshotTimeout = 10 * time.Second
	publishTimeout    = 2 * time.Second
)

// controller owns one session's lifecycle and every external handle it acquires
type controller struct {
	svc        *botService
	id         string
	meetingURL string
	createdAt  time.Time
	buffer     *TranscriptBuffer

	// joined is closed once start returns, successfully or not
	joined chan struct{}

	mu         sync.Mutex
	state      entities.SessionState
	strategy   string
	closedAt   *time.Time
	channelErr error

	// owned handles, set during start
	page    gateways.Page
	channel gateways.TranscriptChannel
	pipe    *capturePipe
	drained chan struct{}
	cancel  context.CancelFunc
}

func newController(svc *botService, id, meetingURL string) *controller {
	return &controller{
		svc:        svc,
		id:         id,
		meetingURL: meetingURL,
		createdAt:  time.Now(),
		buffer:     NewTranscriptBuffer(),
		joined:     make(chan struct{}),
		state:      entities.SessionStateJoining,
	}
}

// start runs the join sequence. On any failure every acquired handle is
// released and the session is deregistered before start returns.
func (c *controller) start(ctx context.Context) (err error) {
	defer close(c.joined)

	ctx = sessionctx.SessionBegin(ctx, c.id, c.meetingURL)
	started := time.Now()
	opts := c.svc.opts

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: panic recovered: %v", entities.ErrUnexpectedFault, p)
		}
		if err != nil {
			c.abort(ctx, err)
			metrics.RecordJoin(c.strategyName(), metrics.ResultFailed, time.Since(started))
		}
	}()

	c.svc.logger.Info("🤖 Joining meeting", sessionctx.Fields(ctx)...)

	strategy, err := c.svc.resolver.Resolve(c.meetingURL)
	if err != nil {
		return fmt.Errorf("%w: %w", entities.ErrJoinFailed, err)
	}
	c.mu.Lock()
	c.strategy = strategy.Name()
	c.mu.Unlock()
	ctx = sessionctx.WithStrategy(ctx, strategy.Name())

	req := gateways.JoinRequest{
		SessionID:  c.id,
		MeetingURL: c.meetingURL,
		BotName:    opts.BotName,
	}

	// Acquire automation handle
	ctx = sessionctx.WithStage(ctx, sessionctx.StageAcquire)
	page, err := c.svc.launcher.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquire browser: %w", entities.ErrJoinFailed, err)
	}
	c.page = page

	// Navigate
	ctx = sessionctx.WithStage(ctx, sessionctx.StageNavigate)
	entry, err := strategy.EntryURL(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: resolve entry url: %w", entities.ErrJoinFailed, err)
	}
	navCtx, cancelNav := context.WithTimeout(ctx, opts.NavigationTimeout)
	err = page.Navigate(navCtx, entry)
	cancelNav()
	if err != nil {
		return fmt.Errorf("%w: navigate: %w", entities.ErrJoinFailed, err)
	}

	// Provider join sequence, single attempt bounded by the join deadline
	ctx = sessionctx.WithStage(ctx, sessionctx.StageJoin)
	joinCtx, cancelJoin := context.WithTimeout(ctx, opts.JoinTimeout)
	err = strategy.Join(joinCtx, page, req)
	timedOut := errors.Is(joinCtx.Err(), context.DeadlineExceeded)
	cancelJoin()
	if err != nil {
		if timedOut && !errors.Is(err, entities.ErrJoinTimeout) {
			err = fmt.Errorf("%w: %w", entities.ErrJoinTimeout, err)
		}
		return fmt.Errorf("%w: %w", entities.ErrJoinFailed, err)
	}

	// Open transcript channel on a context that lives as long as the session
	ctx = sessionctx.WithStage(ctx, sessionctx.StageChannel)
	token, err := c.svc.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: transcription token: %w", entities.ErrJoinFailed, err)
	}
	lifeCtx, cancelLife := context.WithCancel(context.Background())
	c.cancel = cancelLife

	channel, err := c.svc.transcriber.Open(lifeCtx, token)
	if err != nil {
		return fmt.Errorf("%w: open transcript channel: %w", entities.ErrJoinFailed, err)
	}
	c.channel = channel
	c.drained = make(chan struct{})
	go c.drain(ctx, channel)

	// Wire in-page capture to the channel
	ctx = sessionctx.WithStage(ctx, sessionctx.StageCapture)
	pipe, err := attachCapture(ctx, lifeCtx, page, channel, opts.SampleRate, c.svc.logger.With(sessionctx.Fields(ctx)...))
	if err != nil {
		return fmt.Errorf("%w: attach capture: %w", entities.ErrJoinFailed, err)
	}
	c.pipe = pipe

	if !c.transition(entities.SessionStateActive) {
		return fmt.Errorf("%w: %s to %s", entities.ErrInvalidTransition, c.currentState(), entities.SessionStateActive)
	}

	metrics.RecordJoin(strategy.Name(), metrics.ResultSuccess, time.Since(started))
	c.publish(entities.SessionStateActive, nil)
	c.svc.logger.Info("✅ Joined meeting, capturing audio",
		append(sessionctx.Fields(ctx), zap.Int("audio_sources", pipe.sources))...)
	return nil
}

// drain appends channel events into the buffer in receipt order until the channel ends
func (c *controller) drain(ctx context.Context, channel gateways.TranscriptChannel) {
	defer close(c.drained)

	for u := range channel.Events() {
		ev, ok := entities.NewTranscriptEvent(u.Text, u.Speaker, u.Start, u.End)
		if !ok {
			metrics.RecordTranscriptEvent(false)
			continue
		}
		metrics.RecordTranscriptEvent(c.buffer.Append(ev))
	}

	if err := channel.Err(); err != nil {
		c.mu.Lock()
		c.channelErr = err
		c.mu.Unlock()

		metrics.RecordChannelFailure(c.svc.transcriber.Name())
		c.svc.logger.Warn("⚠️ Transcript channel ended unexpectedly, keeping partial transcript",
			append(sessionctx.Fields(ctx), zap.Error(err), zap.Int("events", c.buffer.Len()))...)
	}
}

// release tears down owned handles in order: capture, channel, buffer, page.
// Every step is attempted; failures are collected.
func (c *controller) release(ctx context.Context) ([]entities.TranscriptEvent, error) {
	var errs error

	if c.pipe != nil {
		if err := c.pipe.detach(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("detach capture: %w", err))
		}
	}
	if c.channel != nil {
		if err := c.channel.Close(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close transcript channel: %w", err))
		}
		<-c.drained
	}

	// Channel is closed, nothing delivered from here on is kept
	events := c.buffer.Seal()

	if c.page != nil {
		if err := c.page.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	if c.cancel != nil {
		c.cancel()
	}
	return events, errs
}

// abort releases whatever start acquired and marks the session failed
func (c *controller) abort(ctx context.Context, cause error) {
	ctx = context.WithoutCancel(ctx)
	fields := append(sessionctx.Fields(ctx), zap.Error(cause))

	if errors.Is(cause, entities.ErrUnexpectedFault) {
		c.svc.logger.Error("❌ Unexpected fault while joining meeting", fields...)
	} else {
		c.svc.logger.Error("❌ Failed to join meeting", fields...)
	}

	c.captureFailure(ctx)

	if _, err := c.release(ctx); err != nil {
		c.svc.logger.Warn("⚠️ Cleanup after failed join was incomplete",
			append(sessionctx.Fields(ctx), zap.Error(err))...)
	}
	c.finish(entities.SessionStateFailed, cause)
}

// leave stops capture, compiles the buffered transcript and deregisters the session.
// On teardown failure the transcription is still returned alongside the error.
func (c *controller) leave(ctx context.Context) (*entities.Transcription, error) {
	if !c.transition(entities.SessionStateLeaving) {
		return nil, entities.ErrSessionNotFound
	}

	ctx = sessionctx.SessionBegin(context.WithoutCancel(ctx), c.id, c.meetingURL)
	ctx = sessionctx.WithStrategy(ctx, c.strategyName())
	c.publish(entities.SessionStateLeaving, nil)
	c.svc.logger.Info("👋 Leaving meeting", sessionctx.Fields(ctx)...)

	events, releaseErr := c.release(sessionctx.WithStage(ctx, sessionctx.StageTeardown))

	transcription := c.compile(sessionctx.WithStage(ctx, sessionctx.StageCompile), events)

	c.mu.Lock()
	channelErr := c.channelErr
	c.mu.Unlock()
	transcription.Partial = channelErr != nil

	switch {
	case releaseErr != nil:
		c.finish(entities.SessionStateFailed, releaseErr)
		metrics.RecordLeave(metrics.ResultFailed)
		c.svc.logger.Error("❌ Teardown incomplete",
			append(sessionctx.Fields(ctx), zap.Error(releaseErr))...)
		return transcription, fmt.Errorf("%w: %w", entities.ErrTeardownFailed, releaseErr)

	case channelErr != nil:
		c.finish(entities.SessionStateFailed, channelErr)
		metrics.RecordLeave(metrics.ResultPartial)

	default:
		c.finish(entities.SessionStateClosed, nil)
		metrics.RecordLeave(metrics.ResultSuccess)
	}

	c.svc.logger.Info("✅ Left meeting",
		append(sessionctx.Fields(ctx),
			zap.Int("events", len(events)),
			zap.Bool("partial", transcription.Partial))...)
	return transcription, nil
}

// compile builds the result; a failing summarizer falls back to the placeholder
func (c *controller) compile(ctx context.Context, events []entities.TranscriptEvent) *entities.Transcription {
	transcript := entities.CompileTranscript(events)

	summary, err := c.svc.summarizer.Summarize(ctx, transcript)
	if err != nil {
		c.svc.logger.Warn("⚠️ Summary failed, using placeholder",
			append(sessionctx.Fields(ctx), zap.Error(err))...)
		summary = ai.PlaceholderSummary(transcript)
	}

	return &entities.Transcription{
		Transcript: transcript,
		Speakers:   events,
		Summary:    summary,
	}
}

// captureFailure uploads a screenshot of the page for diagnostics
func (c *controller) captureFailure(ctx context.Context) {
	if c.page == nil || !c.svc.opts.FailureScreenshots || c.svc.artifacts == nil {
		return
	}

	shotCtx, cancel := context.WithTimeout(ctx, screenshotTimeout)
	defer cancel()

	png, err := c.page.Screenshot(shotCtx)
	if err != nil {
		c.svc.logger.Debug("Screenshot after failed join unavailable", zap.String("session_id", c.id), zap.Error(err))
		return
	}

	key := fmt.Sprintf("join-failures/%s/%s.png", c.id, uuid.New().String())
	go func() {
		upCtx, cancel := context.WithTimeout(context.Background(), screenshotTimeout)
		defer cancel()

		location, err := c.svc.artifacts.Put(upCtx, key, "image/png", png)
		if err != nil {
			c.svc.logger.Warn("⚠️ Failed to upload join failure screenshot", zap.String("session_id", c.id), zap.Error(err))
			return
		}
		c.svc.logger.Info("📸 Join failure screenshot stored", zap.String("session_id", c.id), zap.String("location", location))
	}()
}

// finish moves to a terminal state and deregisters the session
func (c *controller) finish(state entities.SessionState, cause error) {
	c.transition(state)
	c.svc.registry.Remove(c.id, c)
	metrics.SessionEnded(c.createdAt)
	c.publish(state, cause)
}

func (c *controller) transition(next entities.SessionState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.CanTransitionTo(next) {
		return false
	}
	c.state = next
	if next.IsTerminal() {
		now := time.Now()
		c.closedAt = &now
	}
	return true
}

func (c *controller) publish(state entities.SessionState, cause error) {
	if c.svc.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := c.svc.publisher.Publish(ctx, entities.NewSessionEvent(c.id, c.meetingURL, state, cause)); err != nil {
		c.svc.logger.Debug("Failed to publish session event",
			zap.String("session_id", c.id),
			zap.String("state", string(state)),
			zap.Error(err))
	}
}

func (c *controller) currentState() entities.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *controller) strategyName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.strategy == "" {
		return "unknown"
	}
	return c.strategy
}

// info returns a snapshot of the session
func (c *controller) info() *entities.SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &entities.SessionInfo{
		ID:         c.id,
		MeetingURL: c.meetingURL,
		State:      c.state,
		Strategy:   c.strategy,
		EventCount: c.buffer.Len(),
		CreatedAt:  c.createdAt,
		ClosedAt:   c.closedAt,
	}
}
