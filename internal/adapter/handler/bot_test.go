package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/adapter/dto/bot"
	"github.com/johnquangdev/meeting-bot/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/pkg/validator"
)

type fakeService struct {
	sessions map[string]*entities.SessionInfo
	joinErr  error
	leaveErr error
	result   *entities.Transcription
}

func newFakeService() *fakeService {
	return &fakeService{sessions: map[string]*entities.SessionInfo{}}
}

func (f *fakeService) Join(_ context.Context, id, url string) (*entities.SessionInfo, error) {
	if f.joinErr != nil {
		return nil, f.joinErr
	}
	if _, ok := f.sessions[id]; ok {
		return nil, entities.ErrSessionAlreadyActive
	}
	info := &entities.SessionInfo{ID: id, MeetingURL: url, State: entities.SessionStateActive, CreatedAt: time.Now()}
	f.sessions[id] = info
	return info, nil
}

func (f *fakeService) Leave(_ context.Context, id string) (*entities.Transcription, error) {
	if _, ok := f.sessions[id]; !ok {
		return nil, entities.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return f.result, f.leaveErr
}

func (f *fakeService) GetSession(_ context.Context, id string) (*entities.SessionInfo, error) {
	info, ok := f.sessions[id]
	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return info, nil
}

func (f *fakeService) ListSessions(context.Context) []*entities.SessionInfo {
	out := make([]*entities.SessionInfo, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out
}

func (f *fakeService) Shutdown(context.Context) error { return nil }

func newTestServer(svc *fakeService) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	NewRouter(nil, NewBot(svc, zap.NewNop())).Setup(e)
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var body common.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestJoinAndLeave(t *testing.T) {
	svc := newFakeService()
	svc.result = &entities.Transcription{
		Transcript: "hello world",
		Speakers: []entities.TranscriptEvent{
			{Text: "hello", Speaker: "A", StartTime: 0, EndTime: 1},
			{Text: "world", Speaker: "B", StartTime: 1, EndTime: 2},
		},
		Summary: "hello world...",
	}
	e := newTestServer(svc)

	rec := do(t, e, http.MethodPost, "/join", `{"sessionId":"s1","meetingUrl":"https://meet.example/abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("join status = %d, body %s", rec.Code, rec.Body.String())
	}
	var joined bot.JoinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &joined); err != nil {
		t.Fatal(err)
	}
	if !joined.Success || joined.SessionID != "s1" {
		t.Fatalf("unexpected join response %+v", joined)
	}

	rec = do(t, e, http.MethodPost, "/leave", `{"sessionId":"s1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("leave status = %d, body %s", rec.Code, rec.Body.String())
	}
	var left bot.LeaveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &left); err != nil {
		t.Fatal(err)
	}
	if !left.Success || left.Transcription == nil {
		t.Fatalf("unexpected leave response %s", rec.Body.String())
	}
	if left.Transcription.Transcript != "hello world" || left.Transcription.Summary != "hello world..." {
		t.Fatalf("unexpected transcription %+v", left.Transcription)
	}
	if len(left.Transcription.Speakers) != 2 || left.Transcription.Speakers[1].Speaker != "B" {
		t.Fatalf("unexpected speakers %+v", left.Transcription.Speakers)
	}
	if !strings.Contains(rec.Body.String(), `"timestamp_start"`) {
		t.Fatalf("expected timestamp_start in body: %s", rec.Body.String())
	}
}

func TestJoinMissingFields(t *testing.T) {
	e := newTestServer(newFakeService())

	for _, body := range []string{
		`{"sessionId":"","meetingUrl":"url"}`,
		`{"sessionId":"s1"}`,
		`{}`,
	} {
		rec := do(t, e, http.MethodPost, "/join", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", body, rec.Code)
		}
		if got := decodeError(t, rec).Error; got != "sessionId and meetingUrl are required" {
			t.Fatalf("%s: error = %q", body, got)
		}
	}
}

// A malformed meetingUrl is rejected with 400 up front instead of failing at navigation with 500.
func TestJoinRejectsNonHTTPMeetingURLBeforeLaunch(t *testing.T) {
	e := newTestServer(newFakeService())

	rec := do(t, e, http.MethodPost, "/join", `{"sessionId":"s1","meetingUrl":"ftp://meet.example/abc"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; !strings.Contains(got, "meetingUrl") {
		t.Fatalf("error = %q", got)
	}
}

func TestJoinMalformedBody(t *testing.T) {
	e := newTestServer(newFakeService())

	rec := do(t, e, http.MethodPost, "/join", `{"sessionId":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Invalid payload" {
		t.Fatalf("error = %q", got)
	}
}

func TestJoinAlreadyActive(t *testing.T) {
	e := newTestServer(newFakeService())
	body := `{"sessionId":"s1","meetingUrl":"https://meet.example/abc"}`

	if rec := do(t, e, http.MethodPost, "/join", body); rec.Code != http.StatusOK {
		t.Fatalf("first join status = %d", rec.Code)
	}
	rec := do(t, e, http.MethodPost, "/join", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("second join status = %d", rec.Code)
	}
}

func TestJoinFailureHidesCause(t *testing.T) {
	svc := newFakeService()
	svc.joinErr = fmt.Errorf("%w: %w", entities.ErrJoinFailed, fmt.Errorf("chrome crashed at 0xdeadbeef"))
	e := newTestServer(svc)

	rec := do(t, e, http.MethodPost, "/join", `{"sessionId":"s1","meetingUrl":"https://meet.example/abc"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Failed to join meeting" {
		t.Fatalf("error = %q", got)
	}
	if strings.Contains(rec.Body.String(), "0xdeadbeef") {
		t.Fatalf("internal cause leaked: %s", rec.Body.String())
	}
}

func TestJoinUnexpectedFault(t *testing.T) {
	svc := newFakeService()
	svc.joinErr = fmt.Errorf("%w: nil pointer", entities.ErrUnexpectedFault)
	e := newTestServer(svc)

	rec := do(t, e, http.MethodPost, "/join", `{"sessionId":"s1","meetingUrl":"https://meet.example/abc"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Internal server error" {
		t.Fatalf("error = %q", got)
	}
}

func TestLeaveUnknownSession(t *testing.T) {
	e := newTestServer(newFakeService())

	rec := do(t, e, http.MethodPost, "/leave", `{"sessionId":"nope"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decodeError(t, rec).Error; got != "Session not found" {
		t.Fatalf("error = %q", got)
	}
}

func TestLeaveTeardownFailureKeepsTranscription(t *testing.T) {
	svc := newFakeService()
	svc.sessions["s1"] = &entities.SessionInfo{ID: "s1"}
	svc.result = &entities.Transcription{Transcript: "partial", Speakers: []entities.TranscriptEvent{}, Summary: "partial..."}
	svc.leaveErr = fmt.Errorf("%w: browser close: broken pipe", entities.ErrTeardownFailed)
	e := newTestServer(svc)

	rec := do(t, e, http.MethodPost, "/leave", `{"sessionId":"s1"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body bot.LeaveErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Error != "Failed to leave meeting" {
		t.Fatalf("error = %q", body.Error)
	}
	if body.Transcription == nil || body.Transcription.Transcript != "partial" {
		t.Fatalf("expected transcription in body: %s", rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "broken pipe") {
		t.Fatalf("internal cause leaked: %s", rec.Body.String())
	}
}

func TestLeaveMissingSessionID(t *testing.T) {
	e := newTestServer(newFakeService())

	rec := do(t, e, http.MethodPost, "/leave", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSessionsEndpoints(t *testing.T) {
	svc := newFakeService()
	e := newTestServer(svc)
	do(t, e, http.MethodPost, "/join", `{"sessionId":"s1","meetingUrl":"https://meet.example/abc"}`)

	rec := do(t, e, http.MethodGet, "/sessions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list bot.SessionListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if list.Total != 1 || list.Sessions[0].SessionID != "s1" {
		t.Fatalf("unexpected list %+v", list)
	}

	rec = do(t, e, http.MethodGet, "/sessions/s1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	var one bot.SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &one); err != nil {
		t.Fatal(err)
	}
	if one.State != "active" || one.MeetingURL != "https://meet.example/abc" {
		t.Fatalf("unexpected session %+v", one)
	}

	if rec := do(t, e, http.MethodGet, "/sessions/nope", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing session status = %d", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	e := newTestServer(newFakeService())

	rec := do(t, e, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body common.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "ok" {
		t.Fatalf("status = %q", body.Status)
	}
}
