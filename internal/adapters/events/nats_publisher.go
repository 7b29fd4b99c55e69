// Package events publishes decided verdicts onto a message bus for
// downstream consumers such as listing search and poster reputation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// verdictEvent is the wire shape of a published verdict
type verdictEvent struct {
	VerdictID   string    `json:"verdict_id"`
	Fingerprint string    `json:"fingerprint"`
	PosterID    string    `json:"poster_id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	Approved    bool      `json:"approved"`
	Reason      string    `json:"reason,omitempty"`
	Rule        string    `json:"rule,omitempty"`
	ReviewedBy  string    `json:"reviewed_by"`
	DecidedAt   time.Time `json:"decided_at"`
}

// NATSPublisher emits verdict events onto a NATS subject
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewNATSPublisher connects to the NATS server at url
func NewNATSPublisher(url, subject string, logger *zap.Logger) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("fixer-moderation"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("Connected to NATS",
		zap.String("url", url),
		zap.String("subject", subject))

	return &NATSPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger,
	}, nil
}

// PublishVerdict implements core.EventPublisher. nats.Conn.Publish is
// synchronous and takes no context, so the context is only consulted
// before the write.
func (p *NATSPublisher) PublishVerdict(ctx context.Context, sub *core.JobSubmission, verdict *core.ModerationVerdict) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context cancelled before publish: %w", err)
	}

	data, err := json.Marshal(verdictEvent{
		VerdictID:   verdict.VerdictID,
		Fingerprint: sub.Fingerprint(),
		PosterID:    sub.PosterID,
		Source:      sub.Source,
		Title:       sub.Title,
		Amount:      sub.Amount,
		Approved:    verdict.Approved,
		Reason:      verdict.Reason,
		Rule:        verdict.Rule,
		ReviewedBy:  verdict.ReviewedBy,
		DecidedAt:   verdict.DecidedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal verdict event: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish verdict event: %w", err)
	}
	return nil
}

// Stop drains the connection so queued events flush before shutdown
func (p *NATSPublisher) Stop() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}
