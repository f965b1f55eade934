package services

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// TopicClassifier labels free text. Callers depend only on this interface so
// the keyword tables can be swapped for a model-backed classifier.
type TopicClassifier interface {
	// Topics returns the profile topic tags mentioned in text, in table order.
	Topics(text string) []string
	IsCatalogQuery(text string) bool
	// PlanningStep returns a step title when text expresses planning intent.
	PlanningStep(text string) (string, bool)
}

//go:embed topics.yaml
var defaultTopicsYAML []byte

type TopicGroup struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

type PlanningStepRule struct {
	Keyword string `yaml:"keyword"`
	Title   string `yaml:"title"`
}

type KeywordConfig struct {
	Topics          []TopicGroup `yaml:"topics"`
	CatalogKeywords []string     `yaml:"catalog_keywords"`
	Planning        struct {
		Keywords    []string           `yaml:"keywords"`
		DefaultStep string             `yaml:"default_step"`
		Steps       []PlanningStepRule `yaml:"steps"`
	} `yaml:"planning"`
}

// LoadKeywordConfig reads path, or the built-in tables when path is empty.
func LoadKeywordConfig(path string) (KeywordConfig, error) {
	raw := defaultTopicsYAML
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return KeywordConfig{}, err
		}
		raw = b
	}
	var cfg KeywordConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return KeywordConfig{}, fmt.Errorf("keyword config: %w", err)
	}
	if len(cfg.Topics) == 0 {
		return KeywordConfig{}, fmt.Errorf("keyword config: no topics defined")
	}
	return cfg, nil
}

type KeywordClassifier struct {
	cfg KeywordConfig
}

func NewKeywordClassifier(cfg KeywordConfig) *KeywordClassifier {
	return &KeywordClassifier{cfg: cfg}
}

// DefaultClassifier uses the embedded tables. They are validated by tests,
// so a failure here is a build defect.
func DefaultClassifier() *KeywordClassifier {
	cfg, err := LoadKeywordConfig("")
	if err != nil {
		panic(err)
	}
	return NewKeywordClassifier(cfg)
}

func (k *KeywordClassifier) Topics(text string) []string {
	t := newMatchText(text)
	var tags []string
	for _, g := range k.cfg.Topics {
		if t.any(g.Keywords) {
			tags = append(tags, g.Tag)
		}
	}
	return tags
}

func (k *KeywordClassifier) IsCatalogQuery(text string) bool {
	return newMatchText(text).any(k.cfg.CatalogKeywords)
}

func (k *KeywordClassifier) PlanningStep(text string) (string, bool) {
	t := newMatchText(text)
	if !t.any(k.cfg.Planning.Keywords) {
		return "", false
	}
	for _, r := range k.cfg.Planning.Steps {
		if t.has(r.Keyword) {
			return r.Title, true
		}
	}
	if k.cfg.Planning.DefaultStep == "" {
		return "", false
	}
	return k.cfg.Planning.DefaultStep, true
}

type matchText struct {
	lower string
	words map[string]bool
}

func newMatchText(s string) matchText {
	lower := strings.ToLower(s)
	words := map[string]bool{}
	for _, w := range strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}
	return matchText{lower: lower, words: words}
}

// has matches short keywords ("it") as whole words and longer ones as substrings.
func (m matchText) has(kw string) bool {
	kw = strings.ToLower(strings.TrimSpace(kw))
	if kw == "" {
		return false
	}
	if len([]rune(kw)) <= 2 {
		return m.words[kw]
	}
	return strings.Contains(m.lower, kw)
}

func (m matchText) any(kws []string) bool {
	for _, kw := range kws {
		if m.has(kw) {
			return true
		}
	}
	return false
}
