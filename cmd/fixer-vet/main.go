package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fixerhq/fixer-moderation/internal/core"
	"github.com/fixerhq/fixer-moderation/internal/di"
	"github.com/fixerhq/fixer-moderation/internal/ports"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the check
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run assembles the submission and hands it to the one-shot gateway
func run(flags *di.CLIFlags, logger *zap.Logger, gateway ports.SubmissionGateway) error {
	defer logger.Sync()

	sub, err := buildSubmission(flags, logger)
	if err != nil {
		return err
	}

	_, err = gateway.ProcessSubmission(context.Background(), sub)
	return err
}

// buildSubmission creates the job submission from flags, an input file or
// stdin. File and stdin input carry the title on the first line and the
// description on the lines after it.
func buildSubmission(flags *di.CLIFlags, logger *zap.Logger) (*core.JobSubmission, error) {
	title := flags.Title
	description := flags.Description

	if title == "" && description == "" {
		var reader io.Reader
		if flags.InputFile != "" {
			file, err := os.Open(flags.InputFile)
			if err != nil {
				return nil, fmt.Errorf("failed to open input file: %w", err)
			}
			defer file.Close()
			reader = file
			logger.Info("Reading posting from file", zap.String("file", flags.InputFile))
		} else {
			reader = os.Stdin
			logger.Info("Reading posting from stdin")
		}

		br := bufio.NewReader(reader)
		titleLine, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read posting: %w", err)
		}
		rest, err := io.ReadAll(br)
		if err != nil {
			return nil, fmt.Errorf("failed to read posting: %w", err)
		}

		title = strings.TrimSpace(titleLine)
		description = strings.TrimSpace(string(rest))
	}

	return &core.JobSubmission{
		Title:       title,
		Description: description,
		Amount:      flags.Amount,
		Source:      "cli",
		SubmittedAt: time.Now(),
	}, nil
}
