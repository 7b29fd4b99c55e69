package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// JobSubmission represents a job posting awaiting a verdict
type JobSubmission struct {
	PosterID    string
	PosterEmail string
	Title       string
	Description string
	Amount      float64
	Source      string
	SubmittedAt time.Time
}

// Fingerprint returns the verdict-cache key for this submission: a SHA-256
// digest over title, description and amount. Poster identity is excluded so
// identical content shares one verdict.
func (j *JobSubmission) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(j.Title))
	h.Write([]byte{0})
	h.Write([]byte(j.Description))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatFloat(j.Amount, 'g', -1, 64)))
	return hex.EncodeToString(h.Sum(nil))
}

// ModerationVerdict represents the outcome of moderating a submission
type ModerationVerdict struct {
	VerdictID  string
	Approved   bool
	Reason     string
	Rule       string
	ReviewedBy string
	DecidedAt  time.Time
}

// VerdictEntry is a cached verdict keyed by content fingerprint
type VerdictEntry struct {
	Fingerprint string
	Approved    bool
	Reason      string
	Rule        string
	LastSeen    time.Time
	ExpiresAt   time.Time
}

// ReviewAssessment is an LLM reviewer's second opinion on a submission
type ReviewAssessment struct {
	Approve     bool
	Categories  []string
	Confidence  float64
	Explanation string
	ModelUsed   string
}
