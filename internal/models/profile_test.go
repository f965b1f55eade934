package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestProfileMergeKeepsStoredValues(t *testing.T) {
	stored := Profile{UserID: "u1", Nationality: "India"}
	delta := &ProfileDelta{Nationality: nil, DesiredField: strp("CS")}

	merged := stored.Merge(delta)

	assert.Equal(t, "India", merged.Nationality)
	assert.Equal(t, "CS", merged.DesiredField)
	assert.Empty(t, stored.DesiredField, "merge must not mutate the receiver")
}

func TestProfileMergeIgnoresBlankValues(t *testing.T) {
	stored := Profile{EnglishLevel: "C1", PreferredCities: []string{"Berlin"}}
	merged := stored.Merge(&ProfileDelta{EnglishLevel: strp("  "), PreferredCities: []string{" ", ""}})

	assert.Equal(t, "C1", merged.EnglishLevel)
	assert.Equal(t, []string{"Berlin"}, merged.PreferredCities)
}

func TestProfileDeltaValues(t *testing.T) {
	d := &ProfileDelta{DesiredField: strp(" computer science "), PreferredCities: []string{"Berlin", " Munich"}}
	assert.Equal(t, map[string]any{
		"desired_field":    "computer science",
		"preferred_cities": []string{"Berlin", "Munich"},
	}, d.Values())
	assert.False(t, d.IsEmpty())
	assert.True(t, (&ProfileDelta{GermanLevel: strp("")}).IsEmpty())
}

func TestSplitCities(t *testing.T) {
	assert.Equal(t, []string{"Berlin", "Munich"}, SplitCities("Berlin, Munich,"))
}

func TestRecentlyAsked(t *testing.T) {
	s := ConversationState{QuestionsAsked: []string{"a", "b", "c", "d"}}
	assert.Equal(t, []string{"b", "c", "d"}, s.RecentlyAsked(3))
	assert.Equal(t, []string{"a"}, ConversationState{QuestionsAsked: []string{"a"}}.RecentlyAsked(3))
}
