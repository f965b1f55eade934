package services

import (
	"strings"

	"github.com/yoockh/studycounsel/internal/models"
)

const (
	TagNationality     = "nationality"
	TagCurrentDegree   = "current_degree"
	TagDesiredField    = "desired_field"
	TagDesiredLevel    = "desired_level"
	TagIELTSScore      = "ielts_score"
	TagGermanLevel     = "german_level"
	TagBudget          = "budget"
	TagPreferredCities = "preferred_cities"
)

var questionPriority = []string{
	TagCurrentDegree,
	TagDesiredField,
	TagDesiredLevel,
	TagIELTSScore,
	TagGermanLevel,
	TagBudget,
	TagPreferredCities,
}

// recentQuestionWindow is how many asked tags count as "recently asked".
const recentQuestionWindow = 3

type StateTracker struct {
	cls TopicClassifier
}

func NewStateTracker(cls TopicClassifier) *StateTracker {
	return &StateTracker{cls: cls}
}

// DeriveState treats an assistant message as having asked about a topic when it
// mentions the topic and contains a question mark. User messages mentioning a
// topic mark it as gathered. Repeated tags accumulate.
func (t *StateTracker) DeriveState(history []models.Message) models.ConversationState {
	st := models.ConversationState{
		QuestionsAsked: []string{},
		InfoGathered:   map[string]bool{},
	}
	for _, msg := range history {
		switch msg.Sender {
		case models.SenderAssistant:
			if !strings.Contains(msg.Text, "?") {
				continue
			}
			for _, tag := range t.cls.Topics(msg.Text) {
				st.QuestionsAsked = append(st.QuestionsAsked, tag)
				st.LastQuestionType = tag
			}
		case models.SenderUser:
			for _, tag := range t.cls.Topics(msg.Text) {
				st.InfoGathered[tag] = true
			}
		}
	}
	return st
}

// MissingProfileInfo lists the tags of the six tracked profile fields that are empty.
func MissingProfileInfo(p *models.Profile) []string {
	if p == nil {
		p = &models.Profile{}
	}
	checks := []struct {
		tag   string
		value string
	}{
		{TagNationality, p.Nationality},
		{TagCurrentDegree, p.HighestEducationLevel},
		{TagDesiredLevel, p.DesiredStudyLevel},
		{TagDesiredField, p.DesiredField},
		{TagIELTSScore, p.EnglishLevel},
		{TagGermanLevel, p.GermanLevel},
	}
	missing := []string{}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			missing = append(missing, c.tag)
		}
	}
	return missing
}

// NextQuestion picks the highest-priority missing tag not asked recently. When
// every missing tag was asked recently it falls back to the first missing one.
func NextQuestion(missing []string, st models.ConversationState) string {
	if len(missing) == 0 {
		return ""
	}
	isMissing := make(map[string]bool, len(missing))
	for _, m := range missing {
		isMissing[m] = true
	}
	recent := map[string]bool{}
	for _, q := range st.RecentlyAsked(recentQuestionWindow) {
		recent[q] = true
	}

	for _, tag := range questionPriority {
		if isMissing[tag] && !recent[tag] {
			return tag
		}
	}
	// tags outside the priority list, like nationality
	for _, tag := range missing {
		if !recent[tag] {
			return tag
		}
	}
	return missing[0]
}
