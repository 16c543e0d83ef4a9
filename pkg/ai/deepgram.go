package ai

import (
	"context"
	"fmt"
	"strconv"

	websocketv1api "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket"
	msginterfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/api/listen/v1/websocket/interfaces"
	interfaces "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/interfaces"
	listenClient "github.com/deepgram/deepgram-go-sdk/v3/pkg/client/listen"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
	"github.com/johnquangdev/meeting-bot/pkg/config"
)

// DeepgramTranscriber opens Deepgram live transcription channels with diarization
type DeepgramTranscriber struct {
	cfg        config.DeepgramConfig
	sampleRate int
	logger     *zap.Logger
}

// NewDeepgramTranscriber creates a transcriber streaming linear16 PCM at sampleRate
func NewDeepgramTranscriber(cfg config.DeepgramConfig, sampleRate int, logger *zap.Logger) *DeepgramTranscriber {
	return &DeepgramTranscriber{
		cfg:        cfg,
		sampleRate: sampleRate,
		logger:     logger,
	}
}

// Name returns the provider name
func (t *DeepgramTranscriber) Name() string {
	return config.ProviderDeepgram
}

// Open connects a live session. token is the Deepgram API key.
func (t *DeepgramTranscriber) Open(ctx context.Context, token string) (gateways.TranscriptChannel, error) {
	ch := &deepgramChannel{stream: newStream(), logger: t.logger}

	tOptions := &interfaces.LiveTranscriptionOptions{
		Model:      t.cfg.Model,
		Language:   t.cfg.Language,
		Punctuate:  true,
		Diarize:    true,
		Encoding:   "linear16",
		Channels:   1,
		SampleRate: t.sampleRate,
	}

	callback := &deepgramCallback{
		DefaultCallbackHandler: websocketv1api.NewDefaultCallbackHandler(),
		channel:                ch,
	}

	client, err := listenClient.NewWSUsingCallback(ctx, token, nil, tOptions, callback)
	if err != nil {
		ch.shut()
		return nil, fmt.Errorf("failed to create Deepgram client: %w", err)
	}
	if !client.Connect() {
		ch.shut()
		return nil, fmt.Errorf("deepgram connect failed")
	}
	ch.client = client

	t.logger.Debug("🎙️ Deepgram session started",
		zap.String("model", t.cfg.Model),
		zap.String("language", t.cfg.Language))
	return ch, nil
}

// deepgramCallback embeds the default handler and overrides only the methods we need
type deepgramCallback struct {
	*websocketv1api.DefaultCallbackHandler
	channel *deepgramChannel
}

// Message converts final results into utterances
func (cb *deepgramCallback) Message(msg *msginterfaces.MessageResponse) error {
	if msg == nil || !msg.IsFinal || len(msg.Channel.Alternatives) == 0 {
		return nil
	}
	alt := msg.Channel.Alternatives[0]

	cb.channel.emit(gateways.Utterance{
		Text:    alt.Transcript,
		Speaker: dominantSpeaker(alt.Words),
		Start:   msg.Start,
		End:     msg.Start + msg.Duration,
	})
	return nil
}

// Error ends the channel with the upstream failure
func (cb *deepgramCallback) Error(er *msginterfaces.ErrorResponse) error {
	if cb.channel.isClosed() {
		return nil
	}
	cb.channel.logger.Warn("⚠️ Deepgram channel error", zap.Any("response", er))
	cb.channel.fail(fmt.Errorf("deepgram error: %+v", er))
	return nil
}

// Close treats an upstream close we did not ask for as a failure
func (cb *deepgramCallback) Close(cr *msginterfaces.CloseResponse) error {
	cb.channel.fail(fmt.Errorf("deepgram connection closed by server"))
	return nil
}

// dominantSpeaker labels an utterance with the speaker of most of its words
func dominantSpeaker(words []msginterfaces.Word) string {
	counts := map[int]int{}
	best, bestCount := -1, 0
	for _, w := range words {
		if w.Speaker == nil {
			continue
		}
		counts[*w.Speaker]++
		if counts[*w.Speaker] > bestCount {
			best, bestCount = *w.Speaker, counts[*w.Speaker]
		}
	}
	if best < 0 {
		return ""
	}
	return "Speaker " + strconv.Itoa(best)
}

type deepgramChannel struct {
	*stream
	client *listenClient.WSCallback
	logger *zap.Logger
}

// Send forwards PCM frames
func (c *deepgramChannel) Send(ctx context.Context, pcm []byte) error {
	if c.isClosed() {
		return fmt.Errorf("deepgram: %w", entities.ErrChannelClosed)
	}
	if _, err := c.client.Write(pcm); err != nil {
		return fmt.Errorf("failed to send audio to Deepgram: %w", err)
	}
	return nil
}

// Close stops emission, then finishes the upstream stream.
// The SDK's Finish reports no error, so only a done ctx is surfaced.
func (c *deepgramChannel) Close(ctx context.Context) error {
	c.shut()
	c.client.Finish()
	return ctx.Err()
}
