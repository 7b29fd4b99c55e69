package factory

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/fixerhq/fixer-moderation/internal/adapters/review"
	"github.com/fixerhq/fixer-moderation/internal/adapters/review/bedrock"
	"github.com/fixerhq/fixer-moderation/internal/adapters/review/gemini"
	"github.com/fixerhq/fixer-moderation/internal/adapters/review/openai"
	"github.com/fixerhq/fixer-moderation/internal/config"
	"github.com/fixerhq/fixer-moderation/internal/core"
	"github.com/fixerhq/fixer-moderation/internal/utils"
	"go.uber.org/zap"
)

// ReviewerFactory creates LLM review clients
type ReviewerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewReviewerFactory creates a new reviewer factory
func NewReviewerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ReviewerFactory {
	return &ReviewerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateReviewClient creates the configured review client, wrapped in the
// retry decorator when retries are configured. Returns a nil client when
// the review stage is disabled.
func (f *ReviewerFactory) CreateReviewClient() (core.ReviewClient, error) {
	reviewCfg := f.cfg.GetReview()
	if !reviewCfg.Enabled {
		return nil, nil
	}

	var client core.ReviewClient
	switch reviewCfg.Provider {
	case "bedrock":
		bedrockCfg := f.cfg.GetBedrock()
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(bedrockCfg.Region),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		client = bedrock.NewReviewer(
			bedrockruntime.NewFromConfig(awsCfg),
			bedrockCfg.ModelID,
			bedrockCfg.MaxTokens,
			bedrockCfg.Temperature,
			bedrockCfg.TopP,
			bedrockCfg.MaxBodySize,
			f.logger,
			f.textProcessor,
		)
	case "gemini":
		geminiCfg := f.cfg.GetGemini()
		if geminiCfg.APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		reviewer, err := gemini.NewReviewer(
			geminiCfg.APIKey,
			geminiCfg.ModelName,
			geminiCfg.MaxTokens,
			geminiCfg.Temperature,
			geminiCfg.TopP,
			geminiCfg.MaxBodySize,
			f.logger,
			f.textProcessor,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		client = reviewer
	case "openai":
		openaiCfg := f.cfg.GetOpenAI()
		if openaiCfg.APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		client = openai.NewReviewer(
			openaiCfg.APIKey,
			openaiCfg.ModelName,
			openaiCfg.MaxTokens,
			openaiCfg.Temperature,
			openaiCfg.TopP,
			openaiCfg.MaxBodySize,
			f.logger,
			f.textProcessor,
		)
	default:
		return nil, fmt.Errorf("unsupported review provider: %s", reviewCfg.Provider)
	}

	if reviewCfg.MaxRetries > 0 {
		client = review.NewRetry(client, reviewCfg.MaxRetries, f.logger)
	}
	return client, nil
}
