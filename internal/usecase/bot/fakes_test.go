package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
)

type fakePage struct {
	mu         sync.Mutex
	navigated  []string
	evaluated  []string
	closeCount int
	closeErr   error
	binding    func(gson.JSON)
	unbound    bool
	sources    int
	exposeErr  error
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error { return nil }

func (p *fakePage) Evaluate(ctx context.Context, script string, args ...interface{}) (gson.JSON, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evaluated = append(p.evaluated, script)
	if strings.Contains(script, "createGain") {
		return gson.New(float64(p.sources)), nil
	}
	return gson.New(true), nil
}

func (p *fakePage) WaitForSelector(ctx context.Context, selector string) error { return nil }

func (p *fakePage) Expose(ctx context.Context, name string, fn func(gson.JSON)) (func() error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exposeErr != nil {
		return nil, p.exposeErr
	}
	p.binding = fn
	return func() error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.unbound = true
		return nil
	}, nil
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	return []byte("png"), nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeCount++
	return p.closeErr
}

func (p *fakePage) closes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeCount
}

type fakeLauncher struct {
	mu        sync.Mutex
	pages     []*fakePage
	closeErr  error
	exposeErr error
}

func (l *fakeLauncher) Acquire(ctx context.Context) (gateways.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p := &fakePage{closeErr: l.closeErr, exposeErr: l.exposeErr}
	l.pages = append(l.pages, p)
	return p, nil
}

func (l *fakeLauncher) last() *fakePage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pages[len(l.pages)-1]
}

func (l *fakeLauncher) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pages)
}

type fakeStrategy struct {
	join func(ctx context.Context) error
}

func (s *fakeStrategy) Name() string { return "fake" }

func (s *fakeStrategy) EntryURL(ctx context.Context, req gateways.JoinRequest) (string, error) {
	return req.MeetingURL, nil
}

func (s *fakeStrategy) Join(ctx context.Context, page gateways.Page, req gateways.JoinRequest) error {
	if s.join == nil {
		return nil
	}
	return s.join(ctx)
}

func (s *fakeStrategy) Resolve(meetingURL string) (gateways.JoinStrategy, error) {
	return s, nil
}

type fakeChannel struct {
	mu       sync.Mutex
	closed   bool
	err      error
	events   chan gateways.Utterance
	sent     [][]byte
	closeErr error
	onClose  func()
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan gateways.Utterance, 64)}
}

// deliver simulates the backend pushing an utterance
func (c *fakeChannel) deliver(u gateways.Utterance) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.events <- u
	return true
}

func (c *fakeChannel) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.err = err
	close(c.events)
}

func (c *fakeChannel) Send(ctx context.Context, pcm []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, pcm)
	return nil
}

func (c *fakeChannel) Events() <-chan gateways.Utterance { return c.events }

func (c *fakeChannel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *fakeChannel) Close(ctx context.Context) error {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.events)
	}
	c.mu.Unlock()

	if c.onClose != nil {
		c.onClose()
	}
	return c.closeErr
}

func (c *fakeChannel) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeChannel) sentFrames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.sent...)
}

type fakeTranscriber struct {
	mu       sync.Mutex
	channels []*fakeChannel
	tokens   []string
	closeErr error
	onOpen   func(*fakeChannel)
}

func (t *fakeTranscriber) Name() string { return "fake" }

func (t *fakeTranscriber) Open(ctx context.Context, token string) (gateways.TranscriptChannel, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := newFakeChannel()
	ch.closeErr = t.closeErr
	t.channels = append(t.channels, ch)
	t.tokens = append(t.tokens, token)
	if t.onOpen != nil {
		t.onOpen(ch)
	}
	return ch, nil
}

func (t *fakeTranscriber) last() *fakeChannel {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.channels[len(t.channels)-1]
}

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

type failingSummarizer struct{}

func (failingSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	return "", errors.New("summary backend down")
}

type fakeArtifacts struct {
	puts chan string
}

func (a *fakeArtifacts) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	a.puts <- key
	return "s3://meeting-bot/" + key, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []entities.SessionEvent
}

func (p *fakePublisher) Publish(ctx context.Context, event entities.SessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) published() []entities.SessionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]entities.SessionEvent(nil), p.events...)
}

type harness struct {
	registry    *Registry
	launcher    *fakeLauncher
	strategy    *fakeStrategy
	transcriber *fakeTranscriber
	artifacts   *fakeArtifacts
	publisher   *fakePublisher
	svc         Service
}

func newHarness(opts Options) *harness {
	h := &harness{
		registry:    NewRegistry(),
		launcher:    &fakeLauncher{},
		strategy:    &fakeStrategy{},
		transcriber: &fakeTranscriber{},
		artifacts:   &fakeArtifacts{puts: make(chan string, 8)},
		publisher:   &fakePublisher{},
	}
	if opts.JoinTimeout == 0 {
		opts.JoinTimeout = time.Second
	}
	h.svc = NewService(h.registry, Dependencies{
		Launcher:    h.launcher,
		Resolver:    h.strategy,
		Transcriber: h.transcriber,
		Tokens:      staticToken("tok"),
		Artifacts:   h.artifacts,
		Publisher:   h.publisher,
	}, opts, zap.NewNop())
	return h
}
