package sessionctx

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type KeyContext string

var (
	keySessionID  KeyContext = "session_id"
	keyMeetingURL KeyContext = "meeting_url"
	keyStage      KeyContext = "stage"
	keyStrategy   KeyContext = "strategy"
	keyStartTime  KeyContext = "session_start_time"
)

// Session stages
const (
	StageAcquire  = "acquire"
	StageNavigate = "navigate"
	StageJoin     = "join"
	StageChannel  = "channel"
	StageCapture  = "capture"
	StageTeardown = "teardown"
	StageCompile  = "compile"
)

// SessionMetadata holds metadata for one bot session operation
type SessionMetadata struct {
	SessionID  string
	MeetingURL string
	Stage      string
	Strategy   string
	StartTime  time.Time
}

// SessionBegin attaches session metadata to ctx.
// The returned context is not bounded by a timeout; join deadlines are applied per stage.
func SessionBegin(parentCtx context.Context, sessionID, meetingURL string) context.Context {
	ctx := context.WithValue(parentCtx, keySessionID, sessionID)
	ctx = context.WithValue(ctx, keyMeetingURL, meetingURL)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())
	return ctx
}

// WithStage records the lifecycle stage currently executing
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, keyStage, stage)
}

// WithStrategy records the join strategy in use
func WithStrategy(ctx context.Context, strategy string) context.Context {
	return context.WithValue(ctx, keyStrategy, strategy)
}

// GetSessionID extracts session ID from context
func GetSessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(keySessionID).(string)
	return id, ok
}

// GetMeetingURL extracts meeting URL from context
func GetMeetingURL(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(keyMeetingURL).(string)
	return u, ok
}

// GetStage extracts the current stage from context
func GetStage(ctx context.Context) string {
	stage, ok := ctx.Value(keyStage).(string)
	if !ok {
		return ""
	}
	return stage
}

// GetStrategy extracts the join strategy name from context
func GetStrategy(ctx context.Context) string {
	s, _ := ctx.Value(keyStrategy).(string)
	return s
}

// GetStartTime extracts session start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(keyStartTime).(time.Time)
	return t, ok
}

// GetSessionMetadata extracts all session metadata from context
func GetSessionMetadata(ctx context.Context) *SessionMetadata {
	id, _ := GetSessionID(ctx)
	u, _ := GetMeetingURL(ctx)
	start, _ := GetStartTime(ctx)

	return &SessionMetadata{
		SessionID:  id,
		MeetingURL: u,
		Stage:      GetStage(ctx),
		Strategy:   GetStrategy(ctx),
		StartTime:  start,
	}
}

// Fields returns zap fields describing the session carried by ctx
func Fields(ctx context.Context) []zap.Field {
	md := GetSessionMetadata(ctx)

	fields := make([]zap.Field, 0, 5)
	if md.SessionID != "" {
		fields = append(fields, zap.String("session_id", md.SessionID))
	}
	if md.MeetingURL != "" {
		fields = append(fields, zap.String("meeting_url", md.MeetingURL))
	}
	if md.Stage != "" {
		fields = append(fields, zap.String("stage", md.Stage))
	}
	if md.Strategy != "" {
		fields = append(fields, zap.String("strategy", md.Strategy))
	}
	if !md.StartTime.IsZero() {
		fields = append(fields, zap.Duration("elapsed", time.Since(md.StartTime)))
	}
	return fields
}
