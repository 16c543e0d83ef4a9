package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
	"github.com/johnquangdev/meeting-bot/pkg/config"
)

// RodLauncher starts one headless Chromium per session
type RodLauncher struct {
	cfg    config.BrowserConfig
	logger *zap.Logger
}

// NewRodLauncher creates a launcher from browser config
func NewRodLauncher(cfg config.BrowserConfig, logger *zap.Logger) *RodLauncher {
	return &RodLauncher{cfg: cfg, logger: logger}
}

// Acquire launches a browser and opens a blank page.
// Media permission prompts are auto-accepted and autoplay is allowed so
// remote audio elements start rendering without a user gesture.
func (l *RodLauncher) Acquire(ctx context.Context) (gateways.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The process outlives ctx; it is killed by Close.
	lc := launcher.New().
		Headless(l.cfg.Headless).
		NoSandbox(true).
		Set("use-fake-ui-for-media-stream").
		Set("use-fake-device-for-media-stream").
		Set("autoplay-policy", "no-user-gesture-required").
		Set("disable-dev-shm-usage")
	if l.cfg.Bin != "" {
		lc = lc.Bin(l.cfg.Bin)
	}

	controlURL, err := lc.Launch()
	if err != nil {
		lc.Kill()
		lc.Cleanup()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		lc.Kill()
		lc.Cleanup()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		p := &rodPage{browser: b, launcher: lc}
		return nil, multierr.Append(fmt.Errorf("open page: %w", err), p.Close())
	}

	l.logger.Debug("🌐 Browser launched", zap.String("control_url", controlURL))
	return &rodPage{page: page, browser: b, launcher: lc}, nil
}

// rodPage owns a page together with its browser process
type rodPage struct {
	page     *rod.Page
	browser  *rod.Browser
	launcher *launcher.Launcher

	closeOnce sync.Once
	closeErr  error
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	page := p.page.Context(ctx)
	wait := page.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	wait()
	return ctx.Err()
}

func (p *rodPage) Click(ctx context.Context, selector string) error {
	el, err := p.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("find %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Evaluate(ctx context.Context, script string, args ...interface{}) (gson.JSON, error) {
	res, err := p.page.Context(ctx).Eval(script, args...)
	if err != nil {
		return gson.New(nil), fmt.Errorf("evaluate: %w", err)
	}
	return res.Value, nil
}

// WaitForSelector relies on rod's element query, which retries until found or ctx is done
func (p *rodPage) WaitForSelector(ctx context.Context, selector string) error {
	if _, err := p.page.Context(ctx).Element(selector); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("wait for %s: %w", selector, ctx.Err())
		}
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

func (p *rodPage) Expose(ctx context.Context, name string, fn func(gson.JSON)) (func() error, error) {
	stop, err := p.page.Context(ctx).Expose(name, func(arg gson.JSON) (interface{}, error) {
		fn(arg)
		return nil, nil
	})
	if err != nil {
		return nil, fmt.Errorf("expose %s: %w", name, err)
	}
	return stop, nil
}

func (p *rodPage) Screenshot(ctx context.Context) ([]byte, error) {
	return p.page.Context(ctx).Screenshot(false, nil)
}

// Close releases the page, the browser and its process exactly once
func (p *rodPage) Close() error {
	p.closeOnce.Do(func() {
		if p.page != nil {
			if err := p.page.Close(); err != nil {
				p.closeErr = multierr.Append(p.closeErr, fmt.Errorf("close page: %w", err))
			}
		}
		if err := p.browser.Close(); err != nil {
			p.closeErr = multierr.Append(p.closeErr, fmt.Errorf("close browser: %w", err))
		}
		p.launcher.Kill()
		p.launcher.Cleanup()
	})
	return p.closeErr
}
