package core

import (
	"context"
)

// ReviewClient defines the interface for LLM second-opinion reviewers
type ReviewClient interface {
	// ReviewSubmission asks the reviewer whether a submission should be listed
	ReviewSubmission(ctx context.Context, sub *JobSubmission) (*ReviewAssessment, error)
}

// VerdictCache defines the interface for caching moderation verdicts
type VerdictCache interface {
	// Get retrieves a cached verdict by content fingerprint
	Get(ctx context.Context, fingerprint string) (*VerdictEntry, error)

	// Set stores a verdict entry
	Set(ctx context.Context, entry *VerdictEntry) error

	// Delete removes a verdict entry
	Delete(ctx context.Context, fingerprint string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// EventPublisher defines the interface for emitting verdict records
type EventPublisher interface {
	// PublishVerdict emits a record of a decided verdict
	PublishVerdict(ctx context.Context, sub *JobSubmission, verdict *ModerationVerdict) error
}

// TrustChecker reports whether a poster bypasses content moderation
type TrustChecker interface {
	// IsTrusted checks the poster id and email against the trust list
	IsTrusted(posterID, email string) bool
}
