package factory

import (
	"github.com/fixerhq/fixer-moderation/internal/adapters/events"
	"github.com/fixerhq/fixer-moderation/internal/config"
	"github.com/fixerhq/fixer-moderation/internal/core"
	"go.uber.org/zap"
)

// EventsFactory creates verdict event publishers
type EventsFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewEventsFactory creates a new events factory
func NewEventsFactory(cfg *config.Config, logger *zap.Logger) *EventsFactory {
	return &EventsFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateEventPublisher creates a NATS publisher when events are enabled,
// otherwise a no-op publisher
func (f *EventsFactory) CreateEventPublisher() (core.EventPublisher, error) {
	if !f.cfg.GetBool("events.enabled") {
		return events.NewNoopPublisher(), nil
	}
	return events.NewNATSPublisher(
		f.cfg.GetString("events.nats_url"),
		f.cfg.GetString("events.subject"),
		f.logger,
	)
}
