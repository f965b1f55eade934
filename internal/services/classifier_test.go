package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigLoads(t *testing.T) {
	cfg, err := LoadKeywordConfig("")
	require.NoError(t, err)

	var tags []string
	for _, g := range cfg.Topics {
		tags = append(tags, g.Tag)
	}
	assert.Equal(t, []string{
		"nationality", "current_degree", "desired_field", "desired_level",
		"ielts_score", "german_level", "budget", "preferred_cities",
	}, tags)
	assert.Contains(t, cfg.CatalogKeywords, "it")
}

func TestTopics(t *testing.T) {
	c := DefaultClassifier()

	assert.Contains(t, c.Topics("My budget is 8000 euros"), "budget")
	assert.NotContains(t, c.Topics("I like Berlin"), "budget")
	assert.Equal(t, []string{"preferred_cities"}, c.Topics("I like Berlin"))
	assert.Empty(t, c.Topics("hello there"))
}

func TestCatalogQueryShortKeywordIsWholeWord(t *testing.T) {
	c := DefaultClassifier()

	assert.True(t, c.IsCatalogQuery("any IT programmes?"))
	assert.True(t, c.IsCatalogQuery("I want to do IT."))
	assert.False(t, c.IsCatalogQuery("what is the weather like"), "'it' inside other words must not match")
	assert.True(t, c.IsCatalogQuery("Which UNIVERSITY is best"))
}

func TestPlanningStep(t *testing.T) {
	c := DefaultClassifier()

	title, ok := c.PlanningStep("I want to apply to TU Munich")
	require.True(t, ok)
	assert.Equal(t, "Prepare and submit applications", title)

	title, ok = c.PlanningStep("I need to sort out my visa")
	require.True(t, ok)
	assert.Equal(t, "Prepare visa documents", title)

	title, ok = c.PlanningStep("I plan to move next year")
	require.True(t, ok)
	assert.Equal(t, "Review the next steps discussed with your counselor", title)

	_, ok = c.PlanningStep("What is a blocked account?")
	assert.False(t, ok)
}

func TestLoadKeywordConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
topics:
  - tag: budget
    keywords: [kosten]
catalog_keywords: [hochschule]
`), 0o600))

	cfg, err := LoadKeywordConfig(path)
	require.NoError(t, err)

	c := NewKeywordClassifier(cfg)
	assert.Equal(t, []string{"budget"}, c.Topics("Die Kosten sind hoch"))
	assert.True(t, c.IsCatalogQuery("welche Hochschule?"))
	_, ok := c.PlanningStep("I want to apply")
	assert.False(t, ok)
}

func TestLoadKeywordConfigRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("catalog_keywords: [x]\n"), 0o600))
	_, err := LoadKeywordConfig(path)
	assert.Error(t, err)
}
