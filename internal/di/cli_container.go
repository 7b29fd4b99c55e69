package di

import (
	"flag"
	"fmt"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/config"
	"github.com/fixerhq/fixer-moderation/internal/core"
	"github.com/fixerhq/fixer-moderation/internal/factory"
	"github.com/fixerhq/fixer-moderation/internal/logging"
	"github.com/fixerhq/fixer-moderation/internal/metrics"
	"github.com/fixerhq/fixer-moderation/internal/ports"
	"github.com/fixerhq/fixer-moderation/internal/rules"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Submission flags
	Title       string
	Description string
	Amount      float64

	// Input flags
	InputFile    string
	RulebookPath string
	Verbose      bool
	JSONLog      bool
	ConfigFile   string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Submission flags
	flag.StringVar(&flags.Title, "title", "", "Job title to check")
	flag.StringVar(&flags.Description, "description", "", "Job description to check")
	flag.Float64Var(&flags.Amount, "amount", 0, "Offered payment amount in dollars")

	// Input flags
	flag.StringVar(&flags.InputFile, "file", "", "Input file with the title on the first line and the description after it (stdin when neither flags nor file are given)")
	flag.StringVar(&flags.RulebookPath, "rulebook", "", "Path to the rulebook file (built-in rules when not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			v := config.NewEmptyViper()
			v.SetConfigFile(flags.ConfigFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// The vet tool always runs one-shot regardless of what the file says
			v.Set("server.gateway_type", "cli")
			v.Set("cli.verbose", flags.Verbose)
			logger.Info("Loaded configuration from file", zap.String("file", v.ConfigFileUsed()))
			return config.NewFromViper(v), nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewEngineFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewGatewayFactory); err != nil {
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

	// Register moderation service with the rules stage only
	if err := container.Provide(func(
		engine *rules.Engine,
		m *metrics.Metrics,
		logger *zap.Logger,
	) *core.ModerationService {
		return core.NewModerationService(
			engine,
			nil, // No cache for one-shot checks
			nil, // No LLM review
			nil, // No event publishing
			nil, // No trusted posters
			m,
			logger,
			core.ServiceOptions{},
		)
	}); err != nil {
		return nil, err
	}

	// Register submission gateway
	if err := container.Provide(func(f *factory.GatewayFactory) (ports.SubmissionGateway, error) {
		return f.CreateSubmissionGateway()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.gateway_type", "cli")
	v.Set("cli.verbose", flags.Verbose)

	if flags.RulebookPath != "" {
		v.Set("moderation.rulebook_path", flags.RulebookPath)
	}

	return config.NewFromViper(v)
}
