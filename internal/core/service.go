package core

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/metrics"
	"github.com/fixerhq/fixer-moderation/internal/rules"
)

// RuleLLMReview labels verdicts where an enforced reviewer rejection
// overrode the rules approval.
const RuleLLMReview = "llm_review"

// ServiceOptions tunes the moderation pipeline.
type ServiceOptions struct {
	CacheEnabled  bool
	CacheTTL      time.Duration
	ReviewEnabled bool
	// ReviewEnforce lets a reviewer rejection override a rules approval.
	// When false the assessment is advisory only.
	ReviewEnforce bool
}

// ModerationService is the core service deciding job submissions
type ModerationService struct {
	engine  atomic.Pointer[rules.Engine]
	cache   VerdictCache
	review  ReviewClient
	events  EventPublisher
	trust   TrustChecker
	metrics *metrics.Metrics
	logger  *zap.Logger
	opts    ServiceOptions
}

// NewModerationService creates a new moderation service
func NewModerationService(
	engine *rules.Engine,
	cache VerdictCache,
	review ReviewClient,
	events EventPublisher,
	trust TrustChecker,
	m *metrics.Metrics,
	logger *zap.Logger,
	opts ServiceOptions,
) *ModerationService {
	if m == nil {
		m = metrics.New()
	}
	s := &ModerationService{
		cache:   cache,
		review:  review,
		events:  events,
		trust:   trust,
		metrics: m,
		logger:  logger,
		opts:    opts,
	}
	s.engine.Store(engine)
	return s
}

// Metrics returns the service's metrics set for exposition.
func (s *ModerationService) Metrics() *metrics.Metrics {
	return s.metrics
}

// SwapEngine replaces the rules engine. In-flight evaluations keep the
// engine they started with.
func (s *ModerationService) SwapEngine(engine *rules.Engine) {
	s.engine.Store(engine)
	s.logger.Info("Rules engine swapped")
}

// CheckContent runs the content rules alone: no trust list, cache or
// review. Pure function of the inputs and the current rulebook.
func (s *ModerationService) CheckContent(title, description string) rules.Result {
	return s.engine.Load().FilterContent(title, description)
}

// CheckAmount runs the payment amount rules alone.
func (s *ModerationService) CheckAmount(amount float64) rules.Result {
	return s.engine.Load().ValidateAmount(amount)
}

// ModerateSubmission decides a submission through the full pipeline:
// trust list, verdict cache, content rules, amount rules, then the
// optional LLM review. The first rejection wins.
func (s *ModerationService) ModerateSubmission(ctx context.Context, sub *JobSubmission) (*ModerationVerdict, error) {
	started := time.Now()
	engine := s.engine.Load()

	// Trusted posters skip the content rules and review, never the
	// amount bounds.
	if s.trust != nil && s.trust.IsTrusted(sub.PosterID, sub.PosterEmail) {
		s.logger.Info("Skipping content rules for trusted poster",
			zap.String("poster_id", sub.PosterID),
			zap.String("action", "trust_bypass"))

		verdict := newVerdict(engine.ValidateAmount(sub.Amount), "trust")
		s.finish(ctx, sub, verdict, started)
		return verdict, nil
	}

	fingerprint := sub.Fingerprint()
	if s.opts.CacheEnabled {
		if entry, err := s.cache.Get(ctx, fingerprint); err == nil {
			s.logger.Debug("Verdict cache hit", zap.String("fingerprint", fingerprint))
			s.metrics.RecordCacheHit()

			verdict := &ModerationVerdict{
				VerdictID:  uuid.NewString(),
				Approved:   entry.Approved,
				Reason:     entry.Reason,
				Rule:       entry.Rule,
				ReviewedBy: "cache",
				DecidedAt:  time.Now(),
			}
			s.finish(ctx, sub, verdict, started)
			return verdict, nil
		}
	}

	res := engine.FilterContent(sub.Title, sub.Description)
	if res.Approved {
		res = engine.ValidateAmount(sub.Amount)
	}
	verdict := newVerdict(res, "rules")

	if verdict.Approved && s.opts.ReviewEnabled && s.review != nil {
		s.applyReview(ctx, sub, verdict)
	}

	if s.opts.CacheEnabled {
		entry := &VerdictEntry{
			Fingerprint: fingerprint,
			Approved:    verdict.Approved,
			Reason:      verdict.Reason,
			Rule:        verdict.Rule,
			LastSeen:    time.Now(),
			ExpiresAt:   time.Now().Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update verdict cache", zap.Error(err))
		}
	}

	s.finish(ctx, sub, verdict, started)
	return verdict, nil
}

// applyReview asks the LLM reviewer for a second opinion on a submission
// the rules approved. Reviewer errors fail open: the rules verdict stands.
func (s *ModerationService) applyReview(ctx context.Context, sub *JobSubmission, verdict *ModerationVerdict) {
	assessment, err := s.review.ReviewSubmission(ctx, sub)
	if err != nil {
		s.metrics.RecordReviewFailure()
		s.logger.Warn("LLM review failed, keeping rules verdict",
			zap.String("verdict_id", verdict.VerdictID),
			zap.Error(err))
		return
	}

	s.logger.Info("LLM review assessment",
		zap.String("verdict_id", verdict.VerdictID),
		zap.Bool("approve", assessment.Approve),
		zap.Float64("confidence", assessment.Confidence),
		zap.Strings("categories", assessment.Categories),
		zap.String("model", assessment.ModelUsed),
		zap.Bool("enforced", s.opts.ReviewEnforce))

	if assessment.Approve || !s.opts.ReviewEnforce {
		return
	}

	verdict.Approved = false
	verdict.Rule = RuleLLMReview
	verdict.Reason = assessment.Explanation
	if verdict.Reason == "" {
		verdict.Reason = "content was flagged by review"
	}
	if assessment.ModelUsed != "" {
		verdict.ReviewedBy = assessment.ModelUsed
	}
}

func (s *ModerationService) finish(ctx context.Context, sub *JobSubmission, verdict *ModerationVerdict, started time.Time) {
	s.metrics.RecordVerdict(sub.Source, verdict.Rule, verdict.Approved, time.Since(started))

	if s.events != nil {
		if err := s.events.PublishVerdict(ctx, sub, verdict); err != nil {
			s.logger.Error("Failed to publish verdict event",
				zap.String("verdict_id", verdict.VerdictID),
				zap.Error(err))
		}
	}

	s.logger.Info("Submission moderated",
		zap.String("verdict_id", verdict.VerdictID),
		zap.String("poster_id", sub.PosterID),
		zap.String("source", sub.Source),
		zap.Bool("approved", verdict.Approved),
		zap.String("rule", verdict.Rule),
		zap.String("reviewed_by", verdict.ReviewedBy))
}

func newVerdict(res rules.Result, reviewedBy string) *ModerationVerdict {
	return &ModerationVerdict{
		VerdictID:  uuid.NewString(),
		Approved:   res.Approved,
		Reason:     res.Reason,
		Rule:       res.Rule,
		ReviewedBy: reviewedBy,
		DecidedAt:  time.Now(),
	}
}
