package rules

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultCatalog())
	require.NoError(t, err)
	return e
}

func TestEngine_FilterContent_ShortDescription(t *testing.T) {
	e := newTestEngine(t)

	titles := []string{"", "Yard work", "BUY NOW", "a perfectly ordinary title"}
	for _, title := range titles {
		res := e.FilterContent(title, "mow my lawn")
		assert.False(t, res.Approved, "title %q", title)
		assert.Contains(t, res.Reason, "too short")
		assert.Equal(t, RuleDescriptionLength, res.Rule)
	}
}

func TestEngine_FilterContent_DescriptionLengthCountsRunes(t *testing.T) {
	e := newTestEngine(t)

	// 19 runes but 38 bytes: must still be too short.
	res := e.FilterContent("", strings.Repeat("ñ", 19))
	assert.False(t, res.Approved)
	assert.Equal(t, RuleDescriptionLength, res.Rule)

	res = e.FilterContent("", strings.Repeat("ñ", 20))
	assert.True(t, res.Approved)
}

func TestEngine_FilterContent_CapsRatio(t *testing.T) {
	e := newTestEngine(t)

	res := e.FilterContent("BUY NOW BUY NOW BUY NOW", "ALL CAPS ALL CAPS TEXT HERE TODAY")
	assert.False(t, res.Approved)
	assert.Equal(t, RuleCapsRatio, res.Rule)

	t.Run("boundary", func(t *testing.T) {
		// 9 caps of 30 non-whitespace characters: exactly 30%, allowed.
		res := e.FilterContent("", "AAABBBCCCdddeeefffggghhhiiijjj")
		assert.True(t, res.Approved)

		// 10 caps of 31: just above 30%, rejected.
		res = e.FilterContent("", "AAAABBBCCCdddeeefffggghhhiiijjj")
		assert.False(t, res.Approved)
		assert.Equal(t, RuleCapsRatio, res.Rule)
	})

	t.Run("whitespace only description never divides by zero", func(t *testing.T) {
		res := e.FilterContent("", strings.Repeat(" ", 25))
		assert.True(t, res.Approved)
	})
}

func TestEngine_FilterContent_Approves(t *testing.T) {
	e := newTestEngine(t)

	res := e.FilterContent("Yard work",
		"Looking for someone to mow my lawn and trim the hedges this weekend, flexible timing.")
	assert.True(t, res.Approved)
	assert.Empty(t, res.Reason)
	assert.Empty(t, res.Rule)
}

func TestEngine_FilterContent_Categories(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name        string
		title       string
		description string
		wantRule    string
		wantIn      string
	}{
		{
			name:        "spam",
			title:       "Great opportunity",
			description: "Limited time offer, work from home and earn big money fast.",
			wantRule:    "category:spam",
			wantIn:      "spam",
		},
		{
			name:        "illegal",
			title:       "Delivery help",
			description: "Need someone to move counterfeit merchandise across town quietly.",
			wantRule:    "category:illegal",
			wantIn:      "illegal",
		},
		{
			name:        "scam",
			title:       "Easy gig",
			description: "Become a mystery shopper and keep a share of every purchase you make.",
			wantRule:    "category:scam",
			wantIn:      "scam",
		},
		{
			name:        "inappropriate",
			title:       "Evening work",
			description: "Looking to hire an escort for a corporate gala downtown next week.",
			wantRule:    "category:inappropriate",
			wantIn:      "inappropriate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.FilterContent(tt.title, tt.description)
			require.False(t, res.Approved)
			assert.Equal(t, tt.wantRule, res.Rule)
			assert.Contains(t, res.Reason, tt.wantIn)
		})
	}
}

func TestEngine_FilterContent_CategoriesMatchCaseInsensitive(t *testing.T) {
	e := newTestEngine(t)

	res := e.FilterContent("Help wanted",
		"selling Counterfeit designer bags, quiet buyers preferred thanks.")
	assert.False(t, res.Approved)
	assert.Equal(t, "category:illegal", res.Rule)
}

func TestEngine_FilterContent_SuspiciousKeywords(t *testing.T) {
	e := newTestEngine(t)

	res := e.FilterContent("Side gig",
		"Cash only work, no questions asked, pays well and is totally discreet.")
	assert.False(t, res.Approved)
	assert.Equal(t, RuleSuspiciousKeywords, res.Rule)
	assert.Contains(t, res.Reason, "suspicious activity")
}

func TestEngine_FilterContent_Repetition(t *testing.T) {
	e := newTestEngine(t)

	t.Run("25 tokens 5 distinct rejects", func(t *testing.T) {
		desc := strings.TrimSpace(strings.Repeat("alpha beta gamma delta epsilon ", 5))
		res := e.FilterContent("", desc)
		require.False(t, res.Approved)
		assert.Equal(t, RuleRepetition, res.Rule)
		assert.Contains(t, res.Reason, "repetitive")
	})

	t.Run("25 tokens 15 distinct passes", func(t *testing.T) {
		desc := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen " +
			"one two three four five six seven eight nine ten"
		res := e.FilterContent("", desc)
		assert.True(t, res.Approved)
	})

	t.Run("20 tokens or fewer never trips", func(t *testing.T) {
		desc := strings.TrimSpace(strings.Repeat("spin dry spin dry ", 5))
		require.Len(t, strings.Fields(desc), 20)
		res := e.FilterContent("", desc)
		assert.True(t, res.Approved)
	})

	t.Run("ratio of exactly half passes", func(t *testing.T) {
		// 24 tokens, 12 distinct: 0.5 is not below the threshold.
		desc := "a b c d e f g h i j k l a b c d e f g h i j k l"
		res := e.FilterContent("", desc)
		assert.True(t, res.Approved)
	})
}

func TestEngine_FilterContent_RuleOrder(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name        string
		title       string
		description string
		wantRule    string
	}{
		{
			name:        "length beats everything",
			title:       "BUY NOW",
			description: "CASH ONLY DRUGS",
			wantRule:    RuleDescriptionLength,
		},
		{
			name:        "caps beats categories",
			title:       "",
			description: "SELLING COUNTERFEIT BAGS RIGHT HERE TODAY",
			wantRule:    RuleCapsRatio,
		},
		{
			name:        "category order is spam before scam",
			title:       "Opportunity",
			description: "Limited time offer to become a mystery shopper in your area.",
			wantRule:    "category:spam",
		},
		{
			name:        "categories beat keywords",
			title:       "Help wanted",
			description: "selling counterfeit watches, cash only deals welcome here",
			wantRule:    "category:illegal",
		},
		{
			name:        "keywords beat repetition",
			title:       "",
			description: strings.TrimSpace(strings.Repeat("cash only ", 13)),
			wantRule:    RuleSuspiciousKeywords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.FilterContent(tt.title, tt.description)
			require.False(t, res.Approved)
			assert.Equal(t, tt.wantRule, res.Rule)
		})
	}
}

func TestEngine_FilterContent_Deterministic(t *testing.T) {
	e := newTestEngine(t)

	inputs := [][2]string{
		{"Yard work", "Looking for someone to mow my lawn and trim the hedges this weekend, flexible timing."},
		{"Side gig", "Cash only work, no questions asked, pays well and is totally discreet."},
		{"", "short"},
		{"BUY NOW BUY NOW BUY NOW", "ALL CAPS ALL CAPS TEXT HERE TODAY"},
	}

	for _, in := range inputs {
		first := e.FilterContent(in[0], in[1])
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, e.FilterContent(in[0], in[1]))
		}
	}
}

func TestEngine_FilterContent_ResultInvariant(t *testing.T) {
	e := newTestEngine(t)

	inputs := [][2]string{
		{"", ""},
		{"Yard work", "Looking for someone to mow my lawn and trim the hedges this weekend, flexible timing."},
		{"", "selling counterfeit watches, quiet buyers preferred thanks"},
		{"Side gig", "Cash only work, no questions asked, pays well and is totally discreet."},
		{"", strings.Repeat("word ", 30)},
	}

	for _, in := range inputs {
		res := e.FilterContent(in[0], in[1])
		if res.Approved {
			assert.Empty(t, res.Reason)
			assert.Empty(t, res.Rule)
		} else {
			assert.NotEmpty(t, res.Reason)
			assert.NotEmpty(t, res.Rule)
		}
	}
}

func TestEngine_ValidateAmount(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name     string
		amount   float64
		approved bool
		wantRule string
		wantIn   string
	}{
		{name: "zero", amount: 0, wantRule: RuleAmountNotPositive, wantIn: "greater than zero"},
		{name: "negative", amount: -3, wantRule: RuleAmountNotPositive, wantIn: "greater than zero"},
		{name: "below wage floor", amount: 5, wantRule: RuleBelowMinimumRate, wantIn: "below minimum wage"},
		{name: "just under floor", amount: 7.24, wantRule: RuleBelowMinimumRate, wantIn: "below minimum wage"},
		{name: "exactly the floor", amount: 7.25, approved: true},
		{name: "ordinary amount", amount: 50, approved: true},
		{name: "exactly the ceiling", amount: 10000, approved: true},
		{name: "above the ceiling", amount: 15000, wantRule: RuleAmountTooHigh, wantIn: "unusually high"},
		{name: "NaN", amount: math.NaN(), wantRule: RuleInvalidAmount, wantIn: "invalid amount"},
		{name: "positive infinity", amount: math.Inf(1), wantRule: RuleInvalidAmount, wantIn: "invalid amount"},
		{name: "negative infinity", amount: math.Inf(-1), wantRule: RuleInvalidAmount, wantIn: "invalid amount"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.ValidateAmount(tt.amount)
			assert.Equal(t, tt.approved, res.Approved)
			if tt.approved {
				assert.Empty(t, res.Reason)
				assert.Empty(t, res.Rule)
			} else {
				assert.Equal(t, tt.wantRule, res.Rule)
				assert.Contains(t, res.Reason, tt.wantIn)
			}
		})
	}
}

func TestCapsPercent(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"abcd", 0},
		{"ABCD", 100},
		{"AB cd", 50},
		{"A1b2", 25},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, capsPercent(tt.in), 1e-9, "input %q", tt.in)
	}
}
