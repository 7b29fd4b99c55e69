package factory

import (
	"fmt"

	"github.com/fixerhq/fixer-moderation/internal/adapters/intake"
	"github.com/fixerhq/fixer-moderation/internal/config"
	"github.com/fixerhq/fixer-moderation/internal/core"
	"github.com/fixerhq/fixer-moderation/internal/ports"
	"go.uber.org/zap"
)

// GatewayFactory creates submission gateways based on configuration
type GatewayFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ModerationService
}

// NewGatewayFactory creates a new gateway factory
func NewGatewayFactory(cfg *config.Config, logger *zap.Logger, service *core.ModerationService) *GatewayFactory {
	return &GatewayFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateSubmissionGateway creates a submission gateway based on the configuration
func (f *GatewayFactory) CreateSubmissionGateway() (ports.SubmissionGateway, error) {
	gatewayType := f.cfg.GetString("server.gateway_type")

	switch gatewayType {
	case "http":
		return intake.NewHTTPGateway(
			f.service,
			f.logger,
			f.cfg.GetString("server.listen_address"),
		), nil
	case "smtp":
		return intake.NewSMTPGateway(
			f.service,
			f.logger,
			f.cfg.GetString("server.smtp_listen_address"),
			f.cfg.GetString("server.smtp_relay_address"),
			f.cfg.GetBool("server.block_rejected"),
			f.cfg.GetString("server.headers.approved"),
			f.cfg.GetString("server.headers.rule"),
			f.cfg.GetString("server.headers.reason"),
			f.cfg.GetString("server.headers.amount"),
		), nil
	case "cli":
		return intake.NewCLIGateway(
			f.service,
			f.logger,
			f.cfg.GetBool("cli.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported gateway type: %s", gatewayType)
	}
}
