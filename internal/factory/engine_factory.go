package factory

import (
	"fmt"

	"github.com/fixerhq/fixer-moderation/internal/config"
	"github.com/fixerhq/fixer-moderation/internal/rules"
	"go.uber.org/zap"
)

// EngineFactory builds the rules engine from the configured rulebook
type EngineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEngineFactory creates a new engine factory
func NewEngineFactory(cfg *config.Config, logger *zap.Logger) *EngineFactory {
	return &EngineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEngine loads the rulebook and compiles the rules engine.
// An empty rulebook path falls back to the built-in catalog.
func (f *EngineFactory) CreateEngine() (*rules.Engine, error) {
	path := f.cfg.GetString("moderation.rulebook_path")

	catalog, err := rules.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rulebook: %w", err)
	}

	engine, err := rules.NewEngine(catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to compile rules engine: %w", err)
	}

	if path != "" {
		f.logger.Info("Loaded rulebook", zap.String("path", path))
	}
	return engine, nil
}
