package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds holds the numeric bounds the engine enforces.
type Thresholds struct {
	// MinDescriptionLength is the minimum description length in Unicode
	// code points. Title length is never checked on its own.
	MinDescriptionLength int `yaml:"min_description_length"`
	// MaxCapsPercent is the maximum share of uppercase Latin letters
	// among non-whitespace characters, in percent.
	MaxCapsPercent float64 `yaml:"max_caps_percent"`
	// MinHourlyRate is a flat floor on the posted amount. The name is
	// inherited from the marketplace copy; no hourly computation occurs.
	MinHourlyRate float64 `yaml:"min_hourly_rate"`
	// MaxReasonableAmount is the upper bound on a single posting amount.
	MaxReasonableAmount float64 `yaml:"max_reasonable_amount"`
	// RepetitionMinTokens is the token count above which the repetition
	// heuristic applies.
	RepetitionMinTokens int `yaml:"repetition_min_tokens"`
	// RepetitionDistinctRatio is the distinct/total token ratio below
	// which content is rejected as repetitive.
	RepetitionDistinctRatio float64 `yaml:"repetition_distinct_ratio"`
}

// Category is a named group of prohibited-content patterns. Patterns are
// case-insensitive regular expressions evaluated in listed order against
// the lowercased title + description.
type Category struct {
	Name     string   `yaml:"name"`
	Reason   string   `yaml:"reason"`
	Patterns []string `yaml:"patterns"`
}

// Catalog is the full rule configuration: thresholds, prohibited
// categories in evaluation order, and the suspicious keyword list.
// Catalogs are plain data; NewEngine compiles one into an immutable
// matcher.
type Catalog struct {
	Thresholds         Thresholds `yaml:"thresholds"`
	Categories         []Category `yaml:"categories"`
	SuspiciousKeywords []string   `yaml:"suspicious_keywords"`
}

// DefaultCatalog returns the built-in rulebook. Category order and pattern
// order within a category are part of the reason contract and must not be
// reordered.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Thresholds: Thresholds{
			MinDescriptionLength:    20,
			MaxCapsPercent:          30,
			MinHourlyRate:           7.25,
			MaxReasonableAmount:     10000,
			RepetitionMinTokens:     20,
			RepetitionDistinctRatio: 0.5,
		},
		Categories: []Category{
			{
				Name:   "spam",
				Reason: "content was flagged as spam",
				Patterns: []string{
					`\bbuy now\b`,
					`limited time offer`,
					`\bact now\b`,
					`100% (free|guaranteed)`,
					`guaranteed income`,
					`make \$\d+ (a|per) (day|week|hour)`,
					`work from home and earn`,
					`click (here|this link)`,
					`multi[- ]level marketing`,
					`pyramid scheme`,
				},
			},
			{
				Name:   "illegal",
				Reason: "content describes illegal goods or services",
				Patterns: []string{
					`\b(sell|sale|buy|move)\b.{0,30}\b(drugs|narcotics|weapons|firearms)\b`,
					`\bstolen (goods|property|merchandise)\b`,
					`\bcounterfeit\b`,
					`\bfake (id|ids|documents|passports)\b`,
					`\bcontrolled substance`,
					`\bunlicensed (firearm|gun)`,
					`\b(pick|transport) (a package|packages) .{0,30}border`,
				},
			},
			{
				Name:   "scam",
				Reason: "content matches known scam patterns",
				Patterns: []string{
					`wire (me|us|the) (money|funds|payment)`,
					`advance (fee|payment) (required|needed)`,
					`(cashier'?s?|certified) check.{0,40}(overpay|refund|send back)`,
					`mystery shopper`,
					`lottery (winner|winnings)`,
					`inheritance (fund|transfer)`,
					`deposit.{0,30}before (you|we) (start|begin)`,
					`processing fee.{0,30}(upfront|in advance)`,
				},
			},
			{
				Name:   "inappropriate",
				Reason: "content is inappropriate for this marketplace",
				Patterns: []string{
					`\bescort\b`,
					`adult (services|entertainment|content)`,
					`\bexplicit (photos|pictures|content)\b`,
					`\bnsfw\b`,
					`sexual (favor|service)`,
					`\bnude\b`,
				},
			},
		},
		SuspiciousKeywords: []string{
			"cash only",
			"under the table",
			"no questions asked",
			"off the books",
			"discreet",
			"untraceable",
			"wire me",
			"western union",
			"gift cards only",
			"money mule",
			"reshipping",
			"package forwarding",
			"advance fee",
			"pay upfront",
			"no id required",
			"quick cash",
			"easy money",
		},
	}
}

// LoadCatalog loads a rulebook from a YAML file. A missing file returns the
// defaults. Fields absent from the file keep their default values; lists
// given in the file replace the default lists wholesale, preserving the
// order written there.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultCatalog(), nil
		}
		return nil, fmt.Errorf("failed to read rulebook: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields
	cat := DefaultCatalog()
	if err := yaml.Unmarshal(data, cat); err != nil {
		return nil, fmt.Errorf("failed to parse rulebook: %w", err)
	}

	return cat, nil
}
