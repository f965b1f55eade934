package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yoockh/studycounsel/internal/metrics"
	"github.com/yoockh/studycounsel/internal/models"
	"github.com/yoockh/studycounsel/internal/providers/llm"
	"github.com/yoockh/studycounsel/internal/utils"
)

type IntentExtractor interface {
	Extract(ctx context.Context, message string, history []models.Message) Extraction[models.Intent]
}

type intentExtractor struct {
	x jsonExtractor
}

func NewIntentExtractor(p llm.Provider, log *logrus.Logger, m *metrics.Metrics) IntentExtractor {
	return &intentExtractor{x: jsonExtractor{
		llm:  p,
		log:  log,
		m:    m,
		kind: "intent",
		opts: llm.Options{Temperature: 0.3, MaxTokens: 200},
	}}
}

const intentSystemPrompt = "You are a helper that extracts structured data from messages. Always return valid JSON only, no markdown."

func (e *intentExtractor) Extract(ctx context.Context, message string, history []models.Message) Extraction[models.Intent] {
	prompt := fmt.Sprintf(`Extract search parameters for finding study programmes from this message. Return ONLY a JSON object with these fields:
- field: field of study (e.g., "IT", "Computer Science", "Business", "Engineering")
- degree_type: "Bachelor", "Master", "PhD", or null
- language: "English", "German", or null
- city: city name if mentioned, or null
- keywords: array of important keywords from the message

Message: %s
%s
Return JSON only, no explanation:`, message, historyBlock(history, 3, 0))

	res := run(ctx, e.x, intentSystemPrompt, prompt, decodeIntent)
	if !res.OK() {
		res.Value = models.Intent{Keywords: []string{}}
	}
	return res
}

func decodeIntent(obj map[string]any) models.Intent {
	in := models.Intent{
		Field:      docString(obj, "field"),
		DegreeType: docString(obj, "degree_type"),
		Language:   docString(obj, "language"),
		City:       docString(obj, "city"),
		Keywords:   docStrings(obj, "keywords"),
	}
	if in.Keywords == nil {
		in.Keywords = []string{}
	}
	return in
}

// historyBlock renders the last n messages; maxChars of 0 keeps full text.
func historyBlock(history []models.Message, n, maxChars int) string {
	if len(history) == 0 {
		return ""
	}
	if len(history) > n {
		history = history[len(history)-n:]
	}
	var sb strings.Builder
	sb.WriteString("\nRecent conversation:\n")
	for _, m := range history {
		text := m.Text
		if maxChars > 0 {
			text = utils.Truncate(text, maxChars)
		}
		fmt.Fprintf(&sb, "%s: %s\n", m.Sender, text)
	}
	return sb.String()
}
