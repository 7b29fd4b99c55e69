// Package rules implements the deterministic vetting rules for job
// postings: a content filter over title and description, and a bounds
// check on the proposed payment amount. Both entry points are pure
// functions of their inputs and the compiled catalog, so an Engine may be
// shared across goroutines without locking.
package rules

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Stable machine labels for the rejecting rule. Category rejections use
// "category:<name>" via CategoryRule.
const (
	RuleDescriptionLength  = "description_length"
	RuleCapsRatio          = "caps_ratio"
	RuleSuspiciousKeywords = "suspicious_keywords"
	RuleRepetition         = "repetition"

	RuleInvalidAmount     = "invalid_amount"
	RuleAmountNotPositive = "amount_not_positive"
	RuleBelowMinimumRate  = "below_minimum_rate"
	RuleAmountTooHigh     = "amount_too_high"
)

// CategoryRule returns the rule label for a prohibited-category rejection.
func CategoryRule(name string) string {
	return "category:" + name
}

// Result is the outcome of one evaluation. Reason and Rule are non-empty
// exactly when Approved is false; Reason is the user-facing rejection
// message, Rule the stable label of the rule that fired.
type Result struct {
	Approved bool
	Reason   string
	Rule     string
}

type compiledCategory struct {
	name     string
	reason   string
	patterns []*regexp.Regexp
}

// Engine evaluates submissions against a compiled catalog. Immutable after
// construction.
type Engine struct {
	thresholds Thresholds
	categories []compiledCategory
	keywords   []string
}

// NewEngine compiles a catalog. Patterns are compiled case-insensitively;
// a pattern that does not compile fails the whole catalog.
func NewEngine(cat *Catalog) (*Engine, error) {
	if cat == nil {
		cat = DefaultCatalog()
	}

	categories := make([]compiledCategory, 0, len(cat.Categories))
	for _, c := range cat.Categories {
		cc := compiledCategory{
			name:     c.Name,
			reason:   c.Reason,
			patterns: make([]*regexp.Regexp, 0, len(c.Patterns)),
		}
		for _, p := range c.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("failed to compile pattern %q in category %q: %w", p, c.Name, err)
			}
			cc.patterns = append(cc.patterns, re)
		}
		categories = append(categories, cc)
	}

	keywords := make([]string, len(cat.SuspiciousKeywords))
	for i, k := range cat.SuspiciousKeywords {
		keywords[i] = strings.ToLower(k)
	}

	return &Engine{
		thresholds: cat.Thresholds,
		categories: categories,
		keywords:   keywords,
	}, nil
}

// Thresholds returns the bounds the engine was compiled with.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// FilterContent evaluates a posting's title and description.
//
// Evaluation order (must not be changed, reported reasons depend on it):
//  1. Minimum description length
//  2. Caps ratio over title + description
//  3. Prohibited categories, in catalog order, first pattern match wins
//  4. Suspicious keyword scan
//  5. Repetition heuristic
func (e *Engine) FilterContent(title, description string) Result {
	if utf8.RuneCountInString(description) < e.thresholds.MinDescriptionLength {
		return reject(RuleDescriptionLength,
			fmt.Sprintf("description is too short: at least %d characters required", e.thresholds.MinDescriptionLength))
	}

	combined := title + " " + description
	if capsPercent(combined) > e.thresholds.MaxCapsPercent {
		return reject(RuleCapsRatio, "too many capital letters")
	}

	lowered := strings.ToLower(combined)
	for _, cat := range e.categories {
		for _, re := range cat.patterns {
			if re.MatchString(lowered) {
				return reject(CategoryRule(cat.name), cat.reason)
			}
		}
	}

	for _, kw := range e.keywords {
		if strings.Contains(lowered, kw) {
			return reject(RuleSuspiciousKeywords, "content suggests suspicious activity")
		}
	}

	tokens := strings.Fields(lowered)
	if len(tokens) > e.thresholds.RepetitionMinTokens {
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			seen[t] = struct{}{}
		}
		if float64(len(seen))/float64(len(tokens)) < e.thresholds.RepetitionDistinctRatio {
			return reject(RuleRepetition, "repetitive content")
		}
	}

	return Result{Approved: true}
}

// ValidateAmount checks a proposed payment amount against the catalog
// bounds, in order: finite, positive, wage floor, upper bound. The finite
// check must come first: NaN compares false against every threshold and
// would otherwise fall through to approval.
func (e *Engine) ValidateAmount(amount float64) Result {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return reject(RuleInvalidAmount, "invalid amount")
	}
	if amount <= 0 {
		return reject(RuleAmountNotPositive, "amount must be greater than zero")
	}
	// Flat floor on the whole amount, not an hourly computation; the
	// "minimum wage" wording is inherited from the marketplace copy.
	if amount < e.thresholds.MinHourlyRate {
		return reject(RuleBelowMinimumRate,
			fmt.Sprintf("amount is below minimum wage ($%.2f)", e.thresholds.MinHourlyRate))
	}
	if amount > e.thresholds.MaxReasonableAmount {
		return reject(RuleAmountTooHigh, "amount is unusually high")
	}
	return Result{Approved: true}
}

func reject(rule, reason string) Result {
	return Result{Approved: false, Reason: reason, Rule: rule}
}

// capsPercent returns uppercase Latin letters as a percentage of
// non-whitespace characters. All-whitespace input yields 0, never NaN.
func capsPercent(s string) float64 {
	var caps, total int
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if r >= 'A' && r <= 'Z' {
			caps++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(caps) / float64(total) * 100
}
