package gateways

import (
	"context"

	"github.com/johnquangdev/meeting-bot/internal/domain/entities"
)

// ArtifactStore stores diagnostic artifacts
type ArtifactStore interface {
	// Put uploads data under key and returns its object location
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// EventPublisher broadcasts session lifecycle events
type EventPublisher interface {
	Publish(ctx context.Context, event entities.SessionEvent) error
}
