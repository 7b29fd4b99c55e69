package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/config"
	"github.com/fixerhq/fixer-moderation/internal/core"
	"github.com/fixerhq/fixer-moderation/internal/factory"
	"github.com/fixerhq/fixer-moderation/internal/logging"
	"github.com/fixerhq/fixer-moderation/internal/metrics"
	"github.com/fixerhq/fixer-moderation/internal/ports"
	"github.com/fixerhq/fixer-moderation/internal/rules"
	"github.com/fixerhq/fixer-moderation/internal/trust"
	"github.com/fixerhq/fixer-moderation/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewReviewerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGatewayFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewEventsFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(metrics.New); err != nil {
		return nil, err
	}

	// Register rules engine
	if err := container.Provide(func(f *factory.EngineFactory) (*rules.Engine, error) {
		return f.CreateEngine()
	}); err != nil {
		return nil, err
	}

	// Register trusted poster registry
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.TrustChecker {
		posterIDs := cfg.GetStringSlice("moderation.trusted_poster_ids")
		domains := cfg.GetStringSlice("moderation.trusted_domains")
		if len(posterIDs) > 0 || len(domains) > 0 {
			logger.Info("Loaded trusted posters",
				zap.Strings("poster_ids", posterIDs),
				zap.Strings("domains", domains),
			)
		}
		return trust.NewRegistry(posterIDs, domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register verdict cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.VerdictCache, error) {
		if !f.IsCacheEnabled() {
			return nil, nil
		}
		return f.CreateVerdictCache()
	}); err != nil {
		return nil, err
	}

	// Register review client
	if err := container.Provide(func(f *factory.ReviewerFactory) (core.ReviewClient, error) {
		return f.CreateReviewClient()
	}); err != nil {
		return nil, err
	}

	// Register event publisher
	if err := container.Provide(func(f *factory.EventsFactory) (core.EventPublisher, error) {
		return f.CreateEventPublisher()
	}); err != nil {
		return nil, err
	}

	// Register service options
	if err := container.Provide(func(cfg *config.Config, f *factory.CacheFactory) (core.ServiceOptions, error) {
		ttl, err := f.GetCacheTTL()
		if err != nil {
			return core.ServiceOptions{}, err
		}
		reviewCfg := cfg.GetReview()
		return core.ServiceOptions{
			CacheEnabled:  f.IsCacheEnabled(),
			CacheTTL:      ttl,
			ReviewEnabled: reviewCfg.Enabled,
			ReviewEnforce: reviewCfg.Enforce,
		}, nil
	}); err != nil {
		return nil, err
	}

	// Register moderation service
	if err := container.Provide(core.NewModerationService); err != nil {
		return nil, err
	}

	// Register submission gateway
	if err := container.Provide(func(f *factory.GatewayFactory) (ports.SubmissionGateway, error) {
		return f.CreateSubmissionGateway()
	}); err != nil {
		return nil, err
	}

	// Register rulebook watcher. Nil when live reload is not configured.
	if err := container.Provide(func(cfg *config.Config, svc *core.ModerationService, logger *zap.Logger) (*rules.Watcher, error) {
		path := cfg.GetString("moderation.rulebook_path")
		if !cfg.GetBool("moderation.watch_rulebook") || path == "" {
			return nil, nil
		}
		return rules.NewWatcher(path, svc.SwapEngine, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
