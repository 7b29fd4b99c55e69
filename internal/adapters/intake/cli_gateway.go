package intake

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// CLIGateway vets a single submission and prints the verdict.
// Used by fixer-vet for one-shot checks.
type CLIGateway struct {
	service *core.ModerationService
	logger  *zap.Logger
	verbose bool
}

// NewCLIGateway creates a new CLI gateway
func NewCLIGateway(service *core.ModerationService, logger *zap.Logger, verbose bool) (*CLIGateway, error) {
	return &CLIGateway{
		service: service,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessSubmission moderates a submission and displays the verdict
func (g *CLIGateway) ProcessSubmission(ctx context.Context, sub *core.JobSubmission) (*core.ModerationVerdict, error) {
	g.logger.Debug("Processing submission", zap.String("title", sub.Title))

	fmt.Printf("\n=== Submission ===\n")
	if sub.PosterID != "" || sub.PosterEmail != "" {
		fmt.Printf("Poster: %s %s\n", sub.PosterID, sub.PosterEmail)
	}
	fmt.Printf("Title: %s\n", sub.Title)
	fmt.Printf("Amount: $%.2f\n", sub.Amount)
	fmt.Printf("Description length: %d bytes\n", len(sub.Description))

	if g.verbose {
		preview := sub.Description
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nDescription preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Moderation ===\n")
	startTime := time.Now()
	verdict, err := g.service.ModerateSubmission(ctx, sub)
	if err != nil {
		g.logger.Error("Failed to moderate submission", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Printf("\n=== Verdict ===\n")
	fmt.Printf("Approved: %t\n", verdict.Approved)
	if !verdict.Approved {
		fmt.Printf("Reason: %s\n", verdict.Reason)
		fmt.Printf("Rule: %s\n", verdict.Rule)
	}
	fmt.Printf("Reviewed by: %s\n", verdict.ReviewedBy)
	fmt.Printf("Processing time: %v\n", duration)

	return verdict, nil
}

// Start is a no-op for the CLI gateway
func (g *CLIGateway) Start() error {
	return nil
}

// Stop is a no-op for the CLI gateway
func (g *CLIGateway) Stop() error {
	return nil
}
