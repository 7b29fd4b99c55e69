package events

import (
	"context"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// NoopPublisher drops verdict events. Used when event publishing is disabled.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that discards everything
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// PublishVerdict implements core.EventPublisher
func (NoopPublisher) PublishVerdict(ctx context.Context, sub *core.JobSubmission, verdict *core.ModerationVerdict) error {
	return nil
}
