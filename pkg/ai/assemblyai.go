package ai

import (
	"context"
	"fmt"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
	"github.com/johnquangdev/meeting-bot/pkg/config"
)

// AssemblyAITranscriber opens AssemblyAI real-time transcription channels
type AssemblyAITranscriber struct {
	sampleRate int
	logger     *zap.Logger
}

// NewAssemblyAITranscriber creates a transcriber streaming PCM at sampleRate
func NewAssemblyAITranscriber(sampleRate int, logger *zap.Logger) *AssemblyAITranscriber {
	return &AssemblyAITranscriber{
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Name returns the provider name
func (t *AssemblyAITranscriber) Name() string {
	return config.ProviderAssemblyAI
}

// Open connects a real-time session authenticated with token
func (t *AssemblyAITranscriber) Open(ctx context.Context, token string) (gateways.TranscriptChannel, error) {
	ch := &assemblyChannel{stream: newStream(), logger: t.logger}

	transcriber := &aai.RealTimeTranscriber{
		OnSessionBegins: func(event aai.SessionBegins) {
			t.logger.Debug("🎙️ AssemblyAI session started", zap.String("aai_session_id", event.SessionID))
		},
		OnFinalTranscript: ch.onFinal,
		OnError:           ch.onError,
	}

	ch.client = aai.NewRealTimeClientWithOptions(
		aai.WithRealTimeAuthToken(token),
		aai.WithRealTimeSampleRate(t.sampleRate),
		aai.WithRealTimeEncoding(aai.RealTimeEncodingPCMS16LE),
		aai.WithRealTimeTranscriber(transcriber),
	)

	if err := ch.client.Connect(ctx); err != nil {
		ch.shut()
		return nil, fmt.Errorf("assemblyai connect: %w", err)
	}
	return ch, nil
}

type assemblyChannel struct {
	*stream
	client *aai.RealTimeClient
	logger *zap.Logger
}

func (c *assemblyChannel) onFinal(event aai.FinalTranscript) {
	// Real-time sessions carry no diarization, speaker stays empty.
	c.emit(gateways.Utterance{
		Text:  event.Text,
		Start: msToSeconds(event.AudioStart),
		End:   msToSeconds(event.AudioEnd),
	})
}

func (c *assemblyChannel) onError(err error) {
	if c.isClosed() {
		return
	}
	c.logger.Warn("⚠️ AssemblyAI channel error", zap.Error(err))
	c.fail(err)
}

// Send forwards PCM frames
func (c *assemblyChannel) Send(ctx context.Context, pcm []byte) error {
	if c.isClosed() {
		return fmt.Errorf("assemblyai: %w", entities.ErrChannelClosed)
	}
	return c.client.Send(ctx, pcm)
}

// Close stops emission first, then disconnects without waiting for trailing results
func (c *assemblyChannel) Close(ctx context.Context) error {
	c.shut()
	if err := c.client.Disconnect(ctx, false); err != nil {
		return fmt.Errorf("assemblyai disconnect: %w", err)
	}
	return nil
}

func msToSeconds(ms int64) float64 {
	return float64(ms) / 1000
}

// StaticToken is a TokenSource returning a fixed credential
type StaticToken string

// Token returns the configured credential
func (s StaticToken) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", fmt.Errorf("transcription token not configured")
	}
	return string(s), nil
}

// AssemblyAITokenSource mints a short-lived real-time token per session
type AssemblyAITokenSource struct {
	client *aai.Client
	ttl    time.Duration
}

// NewAssemblyAITokenSource creates a token source from the provided config.
// Pass a nil config to fall back to environment variables.
func NewAssemblyAITokenSource(cfg *config.AssemblyAIConfig) *AssemblyAITokenSource {
	var apiKey string
	ttl := time.Hour
	if cfg != nil {
		apiKey = cfg.APIKey
		if cfg.TokenTTL > 0 {
			ttl = cfg.TokenTTL
		}
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	return &AssemblyAITokenSource{
		client: aai.NewClient(apiKey),
		ttl:    ttl,
	}
}

// Token requests a temporary real-time token
func (s *AssemblyAITokenSource) Token(ctx context.Context) (string, error) {
	resp, err := s.client.RealTime.CreateTemporaryToken(ctx, int64(s.ttl.Seconds()))
	if err != nil {
		return "", fmt.Errorf("create temporary token: %w", err)
	}
	token := aai.ToString(resp.Token)
	if token == "" {
		return "", fmt.Errorf("assemblyai returned empty token")
	}
	return token, nil
}

// NewTokenSource picks the token source for the configured AssemblyAI credentials
func NewTokenSource(cfg *config.AssemblyAIConfig) gateways.TokenSource {
	if cfg.APIKey != "" {
		return NewAssemblyAITokenSource(cfg)
	}
	return StaticToken(cfg.Token)
}
