package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
)

func TestJoinLeave_Scenario(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	info, err := h.svc.Join(ctx, "s1", "https://meet.example/abc")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if info.ID != "s1" || info.State != entities.SessionStateActive {
		t.Fatalf("unexpected session info %+v", info)
	}

	page := h.launcher.last()
	if len(page.navigated) != 1 || page.navigated[0] != "https://meet.example/abc" {
		t.Fatalf("page navigated to %v", page.navigated)
	}

	ch := h.transcriber.last()
	ch.deliver(gateways.Utterance{Text: "hello", Speaker: "A", Start: 0, End: 1})
	ch.deliver(gateways.Utterance{Text: "world", Speaker: "B", Start: 1, End: 2})

	tr, err := h.svc.Leave(ctx, "s1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if tr.Transcript != "hello world" {
		t.Fatalf("transcript = %q", tr.Transcript)
	}
	if len(tr.Speakers) != 2 || tr.Speakers[0].Speaker != "A" || tr.Speakers[1].Speaker != "B" {
		t.Fatalf("speakers = %+v", tr.Speakers)
	}
	if tr.Summary != "hello world..." {
		t.Fatalf("summary = %q", tr.Summary)
	}
	if tr.Partial {
		t.Fatal("clean leave should not be partial")
	}

	if page.closes() != 1 {
		t.Fatalf("page closed %d times, want 1", page.closes())
	}
	if !ch.isClosed() {
		t.Fatal("channel should be closed")
	}
	if h.registry.Len() != 0 {
		t.Fatal("session should be deregistered")
	}
}

func TestLeave_UnknownSession(t *testing.T) {
	h := newHarness(Options{})

	_, err := h.svc.Leave(context.Background(), "nope")
	if !errors.Is(err, entities.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestJoin_MissingFields(t *testing.T) {
	h := newHarness(Options{})

	cases := []struct{ id, url string }{
		{"", "https://meet.example/abc"},
		{"s1", ""},
	}
	for _, tc := range cases {
		_, err := h.svc.Join(context.Background(), tc.id, tc.url)
		if !errors.Is(err, entities.ErrInvalidSessionRequest) {
			t.Errorf("Join(%q, %q) error = %v", tc.id, tc.url, err)
		}
	}
	if h.launcher.count() != 0 {
		t.Fatal("invalid requests must not acquire a browser")
	}
}

func TestJoin_AlreadyActive(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	h.transcriber.last().deliver(gateways.Utterance{Text: "kept"})

	_, err := h.svc.Join(ctx, "s1", "https://meet.example/other")
	if !errors.Is(err, entities.ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive, got %v", err)
	}
	if h.launcher.count() != 1 {
		t.Fatal("duplicate join must not acquire a browser")
	}

	info, err := h.svc.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if info.State != entities.SessionStateActive || info.MeetingURL != "https://meet.example/abc" {
		t.Fatalf("original session changed: %+v", info)
	}

	tr, err := h.svc.Leave(ctx, "s1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if tr.Transcript != "kept" {
		t.Fatalf("transcript = %q", tr.Transcript)
	}
}

func TestJoin_ConcurrentSameID(t *testing.T) {
	h := newHarness(Options{})
	entered := make(chan struct{})
	release := make(chan struct{})
	h.strategy.join = func(ctx context.Context) error {
		close(entered)
		<-release
		return nil
	}

	var firstErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = h.svc.Join(context.Background(), "s1", "https://meet.example/abc")
	}()
	<-entered

	_, err := h.svc.Join(context.Background(), "s1", "https://meet.example/abc")
	if !errors.Is(err, entities.ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive while first join runs, got %v", err)
	}

	close(release)
	wg.Wait()
	if firstErr != nil {
		t.Fatalf("first join failed: %v", firstErr)
	}
}

func TestJoin_ReuseAfterLeave(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	h.transcriber.last().deliver(gateways.Utterance{Text: "first"})
	if _, err := h.svc.Leave(ctx, "s1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	if h.launcher.count() != 2 {
		t.Fatalf("expected a fresh browser, got %d acquisitions", h.launcher.count())
	}

	tr, err := h.svc.Leave(ctx, "s1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if tr.Transcript != "" || len(tr.Speakers) != 0 {
		t.Fatalf("fresh session leaked previous transcript: %+v", tr)
	}
}

func TestLeave_ReceiptOrderAndDropEmpty(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	ch := h.transcriber.last()
	ch.deliver(gateways.Utterance{Text: "third", Start: 5, End: 6})
	ch.deliver(gateways.Utterance{Text: "", Speaker: "A", Start: 6, End: 7})
	ch.deliver(gateways.Utterance{Text: "   ", Start: 7, End: 8})
	ch.deliver(gateways.Utterance{Text: "first", Start: 0, End: 1})
	ch.deliver(gateways.Utterance{Text: "second", Speaker: "C", Start: 2, End: 1})

	tr, err := h.svc.Leave(ctx, "s1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if tr.Transcript != "third first second" {
		t.Fatalf("transcript = %q, want receipt order", tr.Transcript)
	}
	if len(tr.Speakers) != 3 {
		t.Fatalf("expected empty events to be dropped, got %d", len(tr.Speakers))
	}
	if tr.Speakers[0].Speaker != entities.UnknownSpeaker {
		t.Fatalf("missing speaker should be %q, got %q", entities.UnknownSpeaker, tr.Speakers[0].Speaker)
	}
	if tr.Speakers[2].EndTime < tr.Speakers[2].StartTime {
		t.Fatalf("end before start: %+v", tr.Speakers[2])
	}
}

func TestLeave_EventsAfterCloseAreIgnored(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	ch := h.transcriber.last()
	ch.deliver(gateways.Utterance{Text: "before"})

	var lateAccepted bool
	ch.onClose = func() {
		lateAccepted = ch.deliver(gateways.Utterance{Text: "after"})
	}

	tr, err := h.svc.Leave(ctx, "s1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if lateAccepted {
		t.Fatal("channel accepted an event after close")
	}
	if ch.deliver(gateways.Utterance{Text: "much later"}) {
		t.Fatal("channel accepted an event after leave")
	}
	if tr.Transcript != "before" {
		t.Fatalf("transcript = %q", tr.Transcript)
	}
}

func TestJoin_TimeoutReleasesHandle(t *testing.T) {
	h := newHarness(Options{JoinTimeout: 50 * time.Millisecond})
	h.strategy.join = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	_, err := h.svc.Join(context.Background(), "s1", "https://meet.example/abc")
	if !errors.Is(err, entities.ErrJoinFailed) {
		t.Fatalf("expected ErrJoinFailed, got %v", err)
	}
	if !errors.Is(err, entities.ErrJoinTimeout) {
		t.Fatalf("expected ErrJoinTimeout in chain, got %v", err)
	}
	if h.launcher.last().closes() != 1 {
		t.Fatalf("page must be released exactly once, got %d", h.launcher.last().closes())
	}
	if h.registry.Len() != 0 {
		t.Fatal("failed join must not stay registered")
	}
	if _, err := h.svc.Leave(context.Background(), "s1"); !errors.Is(err, entities.ErrSessionNotFound) {
		t.Fatalf("leave after failed join should be not found, got %v", err)
	}
}

func TestJoin_StrategyPanicIsUnexpectedFault(t *testing.T) {
	h := newHarness(Options{})
	h.strategy.join = func(ctx context.Context) error {
		panic("selector engine exploded")
	}

	_, err := h.svc.Join(context.Background(), "s1", "https://meet.example/abc")
	if !errors.Is(err, entities.ErrUnexpectedFault) {
		t.Fatalf("expected ErrUnexpectedFault, got %v", err)
	}
	if h.launcher.last().closes() != 1 {
		t.Fatal("page must be released after a panic")
	}
	if h.registry.Len() != 0 {
		t.Fatal("session must be deregistered after a panic")
	}
}

func TestLeave_TeardownErrorsAreCollected(t *testing.T) {
	h := newHarness(Options{})
	h.launcher.closeErr = errors.New("browser already gone")
	h.transcriber.closeErr = errors.New("websocket reset")
	ctx := context.Background()

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	h.transcriber.last().deliver(gateways.Utterance{Text: "partial data"})

	tr, err := h.svc.Leave(ctx, "s1")
	if !errors.Is(err, entities.ErrTeardownFailed) {
		t.Fatalf("expected ErrTeardownFailed, got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{"browser already gone", "websocket reset"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
	if tr == nil || tr.Transcript != "partial data" {
		t.Fatalf("captured transcript must survive teardown failure, got %+v", tr)
	}
	if h.launcher.last().closes() != 1 {
		t.Fatal("page close must still be attempted")
	}
	if h.registry.Len() != 0 {
		t.Fatal("session should be deregistered")
	}
}

func TestLeave_ChannelFailureReturnsPartial(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	ch := h.transcriber.last()
	ch.deliver(gateways.Utterance{Text: "before failure"})
	ch.fail(errors.New("upstream closed"))

	tr, err := h.svc.Leave(ctx, "s1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if !tr.Partial {
		t.Fatal("expected partial transcription")
	}
	if tr.Transcript != "before failure" {
		t.Fatalf("transcript = %q", tr.Transcript)
	}
}

func TestLeave_SummarizerFallsBackToPlaceholder(t *testing.T) {
	registry := NewRegistry()
	launcher := &fakeLauncher{}
	transcriber := &fakeTranscriber{}
	svc := NewService(registry, Dependencies{
		Launcher:    launcher,
		Resolver:    &fakeStrategy{},
		Transcriber: transcriber,
		Tokens:      staticToken("tok"),
		Summarizer:  failingSummarizer{},
	}, Options{}, zap.NewNop())

	if _, err := svc.Join(context.Background(), "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	transcriber.last().deliver(gateways.Utterance{Text: "hello"})

	tr, err := svc.Leave(context.Background(), "s1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if tr.Summary != "hello..." {
		t.Fatalf("summary = %q", tr.Summary)
	}
	if transcriber.tokens[0] != "tok" {
		t.Fatalf("channel opened with token %q", transcriber.tokens[0])
	}
}

func TestShutdown_LeavesActiveSessions(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := h.svc.Join(ctx, id, "https://meet.example/"+id); err != nil {
			t.Fatalf("join %s failed: %v", id, err)
		}
	}
	if got := len(h.svc.ListSessions(ctx)); got != 2 {
		t.Fatalf("expected 2 sessions, got %d", got)
	}

	if err := h.svc.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if h.registry.Len() != 0 {
		t.Fatal("shutdown should deregister all sessions")
	}
	for _, p := range h.launcher.pages {
		if p.closes() != 1 {
			t.Fatalf("page closed %d times", p.closes())
		}
	}

	if _, err := h.svc.Join(ctx, "c", "https://meet.example/c"); !errors.Is(err, entities.ErrJoinFailed) {
		t.Fatalf("join after shutdown should fail, got %v", err)
	}
}

func TestLeave_ClosesChannelBeforePage(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	page := h.launcher.last()
	ch := h.transcriber.last()

	pageClosesAtChannelClose := -1
	ch.onClose = func() { pageClosesAtChannelClose = page.closes() }
	ch.deliver(gateways.Utterance{Text: "hello", Speaker: "A", Start: 0, End: 1})

	tr, err := h.svc.Leave(ctx, "s1")
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if pageClosesAtChannelClose != 0 {
		t.Fatalf("page closed %d times before channel close, want 0", pageClosesAtChannelClose)
	}
	if page.closes() != 1 {
		t.Fatalf("page closed %d times, want 1", page.closes())
	}
	if tr.Transcript != "hello" {
		t.Fatalf("transcript = %q", tr.Transcript)
	}
}

func TestJoin_CaptureFailureClosesChannelBeforePage(t *testing.T) {
	h := newHarness(Options{})
	h.launcher.exposeErr = errors.New("binding refused")

	pageClosesAtChannelClose := -1
	h.transcriber.onOpen = func(ch *fakeChannel) {
		ch.onClose = func() { pageClosesAtChannelClose = h.launcher.last().closes() }
	}

	_, err := h.svc.Join(context.Background(), "s1", "https://meet.example/abc")
	if !errors.Is(err, entities.ErrJoinFailed) {
		t.Fatalf("expected ErrJoinFailed, got %v", err)
	}
	if !h.transcriber.last().isClosed() {
		t.Fatal("channel should be closed after failed attach")
	}
	if pageClosesAtChannelClose != 0 {
		t.Fatalf("page closed %d times before channel close, want 0", pageClosesAtChannelClose)
	}
	if h.launcher.last().closes() != 1 {
		t.Fatalf("page closed %d times, want 1", h.launcher.last().closes())
	}
	if h.registry.Len() != 0 {
		t.Fatal("failed session should be deregistered")
	}
}

func TestShutdown_CancelsInFlightJoin(t *testing.T) {
	h := newHarness(Options{JoinTimeout: 10 * time.Second})
	started := make(chan struct{})
	h.strategy.join = func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}

	joinErr := make(chan error, 1)
	go func() {
		_, err := h.svc.Join(context.Background(), "s1", "https://meet.example/abc")
		joinErr <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("join never reached the strategy")
	}

	if err := h.svc.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	select {
	case err := <-joinErr:
		if !errors.Is(err, entities.ErrJoinFailed) {
			t.Fatalf("expected ErrJoinFailed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("join did not return after shutdown")
	}

	if got := h.launcher.last().closes(); got != 1 {
		t.Fatalf("page closed %d times, want 1", got)
	}
	if h.registry.Len() != 0 {
		t.Fatal("cancelled session should be deregistered")
	}
}

func TestJoin_FailureScreenshotStored(t *testing.T) {
	h := newHarness(Options{FailureScreenshots: true})
	h.strategy.join = func(ctx context.Context) error { return errors.New("join button missing") }

	if _, err := h.svc.Join(context.Background(), "s1", "https://meet.example/abc"); !errors.Is(err, entities.ErrJoinFailed) {
		t.Fatalf("expected ErrJoinFailed, got %v", err)
	}

	select {
	case key := <-h.artifacts.puts:
		if !strings.HasPrefix(key, "join-failures/s1/") || !strings.HasSuffix(key, ".png") {
			t.Fatalf("unexpected screenshot key %q", key)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("screenshot was not uploaded")
	}
}

func TestJoin_FailureScreenshotDisabled(t *testing.T) {
	h := newHarness(Options{})
	h.strategy.join = func(ctx context.Context) error { return errors.New("join button missing") }

	if _, err := h.svc.Join(context.Background(), "s1", "https://meet.example/abc"); !errors.Is(err, entities.ErrJoinFailed) {
		t.Fatalf("expected ErrJoinFailed, got %v", err)
	}
	if n := len(h.artifacts.puts); n != 0 {
		t.Fatalf("expected no uploads, got %d", n)
	}
}

func TestLifecycleEvents_JoinLeave(t *testing.T) {
	h := newHarness(Options{})
	ctx := context.Background()

	if _, err := h.svc.Join(ctx, "s1", "https://meet.example/abc"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := h.svc.Leave(ctx, "s1"); err != nil {
		t.Fatalf("leave failed: %v", err)
	}

	want := []entities.SessionState{
		entities.SessionStateJoining,
		entities.SessionStateActive,
		entities.SessionStateLeaving,
		entities.SessionStateClosed,
	}
	events := h.publisher.published()
	if len(events) != len(want) {
		t.Fatalf("published %d events, want %d: %+v", len(events), len(want), events)
	}
	for i, ev := range events {
		if ev.State != want[i] {
			t.Fatalf("event %d state = %s, want %s", i, ev.State, want[i])
		}
		if ev.SessionID != "s1" || ev.MeetingURL != "https://meet.example/abc" {
			t.Fatalf("event %d has wrong session: %+v", i, ev)
		}
		if ev.Error != "" {
			t.Fatalf("event %d carries unexpected error %q", i, ev.Error)
		}
	}
}

func TestLifecycleEvents_FailedJoin(t *testing.T) {
	h := newHarness(Options{})
	h.strategy.join = func(ctx context.Context) error { return errors.New("join button missing") }

	if _, err := h.svc.Join(context.Background(), "s1", "https://meet.example/abc"); err == nil {
		t.Fatal("expected join to fail")
	}

	events := h.publisher.published()
	if len(events) != 2 {
		t.Fatalf("published %d events, want 2: %+v", len(events), events)
	}
	if events[0].State != entities.SessionStateJoining {
		t.Fatalf("first event state = %s", events[0].State)
	}
	last := events[1]
	if last.State != entities.SessionStateFailed {
		t.Fatalf("last event state = %s, want failed", last.State)
	}
	if !strings.Contains(last.Error, "join button missing") {
		t.Fatalf("failed event error = %q", last.Error)
	}
}
