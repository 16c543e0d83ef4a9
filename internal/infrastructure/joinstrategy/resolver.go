package joinstrategy

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
	"github.com/johnquangdev/meeting-bot/internal/domain/gateways"
)

// Resolver picks a join strategy by meeting host, falling back to a default
type Resolver struct {
	byHost   map[string]gateways.JoinStrategy
	fallback gateways.JoinStrategy
}

// NewResolver creates a resolver that uses fallback for unknown hosts
func NewResolver(fallback gateways.JoinStrategy) *Resolver {
	return &Resolver{
		byHost:   make(map[string]gateways.JoinStrategy),
		fallback: fallback,
	}
}

// Register routes meetings on host to strategy
func (r *Resolver) Register(host string, strategy gateways.JoinStrategy) {
	r.byHost[strings.ToLower(host)] = strategy
}

// Resolve returns the strategy for meetingURL
func (r *Resolver) Resolve(meetingURL string) (gateways.JoinStrategy, error) {
	u, err := url.Parse(meetingURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrNoJoinStrategy, err)
	}
	if s, ok := r.byHost[strings.ToLower(u.Host)]; ok {
		return s, nil
	}
	if r.fallback == nil {
		return nil, fmt.Errorf("%w: %s", entities.ErrNoJoinStrategy, u.Host)
	}
	return r.fallback, nil
}
