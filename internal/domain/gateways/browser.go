package gateways

import (
	"context"

	"github.com/ysmood/gson"
)

// Page is an automation handle: one browser tab under programmatic control.
// A Page owns its browser process; Close releases both and is safe to call more than once.
type Page interface {
	// Navigate loads url and waits for the page to settle
	Navigate(ctx context.Context, url string) error

	// Click clicks the first element matching selector
	Click(ctx context.Context, selector string) error

	// Evaluate runs script (a JS function expression) in the page with args
	Evaluate(ctx context.Context, script string, args ...interface{}) (gson.JSON, error)

	// WaitForSelector blocks until an element matching selector exists or ctx is done
	WaitForSelector(ctx context.Context, selector string) error

	// Expose binds a global page function name that forwards its argument to fn.
	// The returned stop func removes the binding.
	Expose(ctx context.Context, name string, fn func(gson.JSON)) (stop func() error, err error)

	// Screenshot captures the visible viewport as PNG
	Screenshot(ctx context.Context) ([]byte, error)

	Close() error
}

// Launcher acquires fresh automation handles
type Launcher interface {
	Acquire(ctx context.Context) (Page, error)
}
