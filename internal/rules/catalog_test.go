package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	cat := DefaultCatalog()

	assert.Equal(t, 20, cat.Thresholds.MinDescriptionLength)
	assert.Equal(t, 30.0, cat.Thresholds.MaxCapsPercent)
	assert.Equal(t, 7.25, cat.Thresholds.MinHourlyRate)
	assert.Equal(t, 10000.0, cat.Thresholds.MaxReasonableAmount)
	assert.Equal(t, 20, cat.Thresholds.RepetitionMinTokens)
	assert.Equal(t, 0.5, cat.Thresholds.RepetitionDistinctRatio)

	names := make([]string, len(cat.Categories))
	for i, c := range cat.Categories {
		names[i] = c.Name
		assert.NotEmpty(t, c.Reason, "category %s", c.Name)
		assert.NotEmpty(t, c.Patterns, "category %s", c.Name)
	}
	assert.Equal(t, []string{"spam", "illegal", "scam", "inappropriate"}, names)

	assert.Len(t, cat.SuspiciousKeywords, 17)
}

func TestLoadCatalog(t *testing.T) {
	t.Run("empty path returns defaults", func(t *testing.T) {
		cat, err := LoadCatalog("")
		require.NoError(t, err)
		assert.Equal(t, DefaultCatalog(), cat)
	})

	t.Run("missing file returns defaults", func(t *testing.T) {
		cat, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultCatalog(), cat)
	})

	t.Run("partial file keeps defaults for unset fields", func(t *testing.T) {
		path := writeRulebook(t, `
thresholds:
  min_description_length: 10
`)
		cat, err := LoadCatalog(path)
		require.NoError(t, err)

		assert.Equal(t, 10, cat.Thresholds.MinDescriptionLength)
		assert.Equal(t, 7.25, cat.Thresholds.MinHourlyRate)
		assert.Equal(t, DefaultCatalog().Categories, cat.Categories)
		assert.Equal(t, DefaultCatalog().SuspiciousKeywords, cat.SuspiciousKeywords)
	})

	t.Run("category list replaces defaults and keeps order", func(t *testing.T) {
		path := writeRulebook(t, `
categories:
  - name: custom
    reason: custom content is not allowed
    patterns: ["forbidden thing"]
  - name: second
    reason: second category
    patterns: ["other thing"]
`)
		cat, err := LoadCatalog(path)
		require.NoError(t, err)
		require.Len(t, cat.Categories, 2)
		assert.Equal(t, "custom", cat.Categories[0].Name)
		assert.Equal(t, "second", cat.Categories[1].Name)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := writeRulebook(t, "categories: [unclosed")
		_, err := LoadCatalog(path)
		assert.Error(t, err)
	})
}

func TestNewEngine_RejectsBadPattern(t *testing.T) {
	cat := DefaultCatalog()
	cat.Categories[0].Patterns = append(cat.Categories[0].Patterns, "(unclosed")

	_, err := NewEngine(cat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unclosed")
}

func TestNewEngine_NilCatalogUsesDefaults(t *testing.T) {
	e, err := NewEngine(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultCatalog().Thresholds, e.Thresholds())
}

func TestNewEngine_LowercasesKeywords(t *testing.T) {
	cat := DefaultCatalog()
	cat.SuspiciousKeywords = []string{"CASH ONLY"}

	e, err := NewEngine(cat)
	require.NoError(t, err)

	res := e.FilterContent("Side gig", "cash only work, paid at the end of every single shift")
	assert.False(t, res.Approved)
	assert.Equal(t, RuleSuspiciousKeywords, res.Rule)
}

func writeRulebook(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rulebook.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
