package bot

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/ysmood/gson"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
	"github.com/johnquangdev/meeting-bot/internal/infrastructure/metrics"
)

const (
	audioBinding    = "__meetingBotAudio"
	frameBufferSize = 64
)

// captureScript mixes every <audio> element present at call time into one
// stream and pushes it to the binding as base64 16-bit PCM.
// Elements rendered later are not picked up.
const captureScript = `(binding, sampleRate) => {
	const ctx = new AudioContext({ sampleRate });
	const mixer = ctx.createGain();
	const dest = ctx.createMediaStreamDestination();
	mixer.connect(dest);

	let sources = 0;
	document.querySelectorAll('audio').forEach((el) => {
		try {
			const src = el.srcObject
				? ctx.createMediaStreamSource(el.srcObject)
				: ctx.createMediaElementSource(el);
			src.connect(mixer);
			sources++;
		} catch (e) {}
	});

	const input = ctx.createMediaStreamSource(dest.stream);
	const proc = ctx.createScriptProcessor(4096, 1, 1);
	proc.onaudioprocess = (e) => {
		const f32 = e.inputBuffer.getChannelData(0);
		const i16 = new Int16Array(f32.length);
		for (let i = 0; i < f32.length; i++) {
			const s = Math.max(-1, Math.min(1, f32[i]));
			i16[i] = s < 0 ? s * 0x8000 : s * 0x7fff;
		}
		const bytes = new Uint8Array(i16.buffer);
		let bin = '';
		for (let i = 0; i < bytes.length; i++) bin += String.fromCharCode(bytes[i]);
		window[binding](btoa(bin));
	};
	input.connect(proc);
	proc.connect(ctx.destination);

	window.__meetingBotCapture = { ctx, proc, input };
	return sources;
}`

const stopCaptureScript = `() => {
	const c = window.__meetingBotCapture;
	if (!c) return false;
	c.proc.onaudioprocess = null;
	c.input.disconnect();
	c.proc.disconnect();
	c.ctx.close();
	delete window.__meetingBotCapture;
	return true;
}`

// capturePipe bridges the in-page mixed stream to a transcript channel
type capturePipe struct {
	page    gateways.Page
	channel gateways.TranscriptChannel
	logger  *zap.Logger
	sources int

	mu       sync.Mutex
	stopping bool
	detached bool
	frames   chan []byte
	done     chan struct{}
	unbind   func() error
}

// attachCapture installs the page binding, starts forwarding frames to channel
// and wires the in-page mixer. Zero audio elements is not an error.
// forwardCtx bounds the forwarder and must outlive the join request.
func attachCapture(ctx, forwardCtx context.Context, page gateways.Page, channel gateways.TranscriptChannel, sampleRate int, logger *zap.Logger) (*capturePipe, error) {
	p := &capturePipe{
		page:    page,
		channel: channel,
		logger:  logger,
		frames:  make(chan []byte, frameBufferSize),
		done:    make(chan struct{}),
	}

	unbind, err := page.Expose(ctx, audioBinding, p.onFrame)
	if err != nil {
		return nil, fmt.Errorf("expose audio binding: %w", err)
	}
	p.unbind = unbind

	go p.forward(forwardCtx)

	res, err := page.Evaluate(ctx, captureScript, audioBinding, sampleRate)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("install capture: %w", err), p.detach(context.WithoutCancel(ctx)))
	}
	p.sources = res.Int()
	return p, nil
}

// onFrame receives one base64 PCM frame from the page
func (p *capturePipe) onFrame(arg gson.JSON) {
	pcm, err := base64.StdEncoding.DecodeString(arg.Str())
	if err != nil || len(pcm) == 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.detached {
		return
	}
	select {
	case p.frames <- pcm:
	default:
		metrics.RecordDroppedFrame()
	}
}

func (p *capturePipe) forward(ctx context.Context) {
	defer close(p.done)

	warned := false
	for pcm := range p.frames {
		if err := p.channel.Send(ctx, pcm); err != nil {
			if !warned {
				p.logger.Warn("⚠️ Failed to forward audio", zap.Error(err))
				warned = true
			}
			continue
		}
		metrics.RecordAudioBytes(len(pcm))
	}
}

// detach stops the in-page mixer, removes the binding and waits for the
// forwarder to flush. Every step runs even if an earlier one fails.
func (p *capturePipe) detach(ctx context.Context) error {
	p.mu.Lock()
	if p.stopping {
		p.mu.Unlock()
		return nil
	}
	p.stopping = true
	p.mu.Unlock()

	var errs error
	if _, err := p.page.Evaluate(ctx, stopCaptureScript); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("stop mixer: %w", err))
	}
	if p.unbind != nil {
		if err := p.unbind(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove audio binding: %w", err))
		}
	}

	p.mu.Lock()
	p.detached = true
	close(p.frames)
	p.mu.Unlock()

	<-p.done
	return errs
}
