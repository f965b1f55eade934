package models

// Intent holds search parameters inferred from a message.
type Intent struct {
	Field      string   `json:"field,omitempty"`
	DegreeType string   `json:"degree_type,omitempty"`
	Language   string   `json:"language,omitempty"`
	City       string   `json:"city,omitempty"`
	Keywords   []string `json:"keywords"`
}

// ConversationState is the heuristic view of what was asked and answered.
type ConversationState struct {
	QuestionsAsked   []string        `json:"questions_asked"`
	InfoGathered     map[string]bool `json:"info_gathered"`
	LastQuestionType string          `json:"last_question_type,omitempty"`
}

// RecentlyAsked returns the last n asked tags.
func (s ConversationState) RecentlyAsked(n int) []string {
	if len(s.QuestionsAsked) <= n {
		return s.QuestionsAsked
	}
	return s.QuestionsAsked[len(s.QuestionsAsked)-n:]
}
