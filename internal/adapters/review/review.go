// Package review holds the LLM reviewer adapters and what they share:
// the prompt template, the reply parser and the retry decorator. Each
// provider package formats the prompt, calls its API and hands the raw
// reply to ParseAssessment.
package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fixerhq/fixer-moderation/internal/core"
)

// PromptFormat is the instruction template shared by every provider.
// The verb slots are poster, title, amount and description.
const PromptFormat = `You are a content reviewer for a local services marketplace. Review the following job posting and decide whether it may be listed.
Respond with a JSON object containing:
- approve: boolean (true if the posting may be listed, false if it must be rejected)
- categories: array of strings naming any violated policy areas (spam, scam, illegal, inappropriate)
- confidence: number between 0 and 1 (how confident you are in your decision)
- explanation: string (brief explanation of your decision)

Posting:
Poster: %s
Title: %s
Offered amount: $%.2f
Description:
%s

Respond only with the JSON object and nothing else.`

// assessmentResponse mirrors the JSON object the prompt asks the model for
type assessmentResponse struct {
	Approve     bool     `json:"approve"`
	Categories  []string `json:"categories"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
}

// PosterLabel names the poster for the prompt, preferring the email when present
func PosterLabel(sub *core.JobSubmission) string {
	if sub.PosterEmail != "" {
		return sub.PosterEmail
	}
	if sub.PosterID != "" {
		return sub.PosterID
	}
	return "unknown"
}

// ParseAssessment decodes a reviewer reply into an assessment. Models
// sometimes wrap the JSON object in prose, so a failed decode is retried
// on the outermost brace-delimited slice of the reply.
func ParseAssessment(responseText, modelUsed string) (*core.ReviewAssessment, error) {
	var resp assessmentResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		jsonStart := strings.IndexByte(responseText, '{')
		jsonEnd := strings.LastIndexByte(responseText, '}')
		if jsonStart < 0 || jsonEnd < jsonStart {
			return nil, fmt.Errorf("failed to extract JSON from reviewer response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd+1]), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse reviewer response as JSON: %w", err)
		}
	}

	return &core.ReviewAssessment{
		Approve:     resp.Approve,
		Categories:  resp.Categories,
		Confidence:  resp.Confidence,
		Explanation: resp.Explanation,
		ModelUsed:   modelUsed,
	}, nil
}
