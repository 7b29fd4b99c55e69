package ports

import (
	"context"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// SubmissionGateway defines the interface for intake surfaces that feed
// submissions into the moderation service
type SubmissionGateway interface {
	// ProcessSubmission moderates a single submission and returns the verdict
	ProcessSubmission(ctx context.Context, sub *core.JobSubmission) (*core.ModerationVerdict, error)

	// Start starts the gateway
	Start() error

	// Stop stops the gateway
	Stop() error
}
