package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/fixerhq/fixer-moderation/internal/adapters/review"
	"github.com/fixerhq/fixer-moderation/internal/core"
	"github.com/fixerhq/fixer-moderation/internal/utils"
)

// Reviewer implements core.ReviewClient using Google Gemini
type Reviewer struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxTextSize   int
	logger        *zap.Logger
	promptFormat  string
	textProcessor *utils.TextProcessor
}

// NewReviewer creates a Gemini-backed reviewer
func NewReviewer(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Reviewer, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Reviewer{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxTextSize:   maxTextSize,
		logger:        logger,
		promptFormat:  review.PromptFormat,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the underlying Gemini client
func (c *Reviewer) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ReviewSubmission asks the model for a second opinion on a posting
func (c *Reviewer) ReviewSubmission(ctx context.Context, sub *core.JobSubmission) (*core.ReviewAssessment, error) {
	description := c.textProcessor.ProcessText(sub.Description, c.maxTextSize)
	prompt := fmt.Sprintf(c.promptFormat, review.PosterLabel(sub), sub.Title, sub.Amount, description)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	// Candidates carry no content when the reply was safety-blocked
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	return review.ParseAssessment(responseText, c.modelName)
}
