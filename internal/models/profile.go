package models

import (
	"strings"
	"time"
)

// Profile is the per-user study profile stored in student_profiles.
type Profile struct {
	UserID                string    `bson:"user_id" json:"user_id"`
	Nationality           string    `bson:"nationality,omitempty" json:"nationality,omitempty"`
	CountryOfResidence    string    `bson:"country_of_residence,omitempty" json:"country_of_residence,omitempty"`
	HighestEducationLevel string    `bson:"highest_education_level,omitempty" json:"highest_education_level,omitempty"`
	HighestEducationField string    `bson:"highest_education_field,omitempty" json:"highest_education_field,omitempty"`
	GPAOrMarks            string    `bson:"gpa_or_marks,omitempty" json:"gpa_or_marks,omitempty"`
	DesiredStudyLevel     string    `bson:"desired_study_level,omitempty" json:"desired_study_level,omitempty"`
	DesiredField          string    `bson:"desired_field,omitempty" json:"desired_field,omitempty"`
	EnglishLevel          string    `bson:"english_level,omitempty" json:"english_level,omitempty"`
	GermanLevel           string    `bson:"german_level,omitempty" json:"german_level,omitempty"`
	PreferredCities       []string  `bson:"preferred_cities,omitempty" json:"preferred_cities,omitempty"`
	BudgetFunds           string    `bson:"budget_funds,omitempty" json:"budget_funds,omitempty"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at" json:"updated_at"`
}

// ProfileDelta is a partial profile. Nil or blank fields are treated as unset.
type ProfileDelta struct {
	Nationality           *string  `json:"nationality,omitempty"`
	CountryOfResidence    *string  `json:"country_of_residence,omitempty"`
	HighestEducationLevel *string  `json:"highest_education_level,omitempty"`
	HighestEducationField *string  `json:"highest_education_field,omitempty"`
	GPAOrMarks            *string  `json:"gpa_or_marks,omitempty"`
	DesiredStudyLevel     *string  `json:"desired_study_level,omitempty"`
	DesiredField          *string  `json:"desired_field,omitempty"`
	EnglishLevel          *string  `json:"english_level,omitempty"`
	GermanLevel           *string  `json:"german_level,omitempty"`
	PreferredCities       []string `json:"preferred_cities,omitempty"`
	BudgetFunds           *string  `json:"budget_funds,omitempty"`
}

func set(p *string) bool { return p != nil && strings.TrimSpace(*p) != "" }

func (d *ProfileDelta) scalars() map[string]*string {
	return map[string]*string{
		"nationality":             d.Nationality,
		"country_of_residence":    d.CountryOfResidence,
		"highest_education_level": d.HighestEducationLevel,
		"highest_education_field": d.HighestEducationField,
		"gpa_or_marks":            d.GPAOrMarks,
		"desired_study_level":     d.DesiredStudyLevel,
		"desired_field":           d.DesiredField,
		"english_level":           d.EnglishLevel,
		"german_level":            d.GermanLevel,
		"budget_funds":            d.BudgetFunds,
	}
}

// Values returns the set fields keyed by their stored name.
func (d *ProfileDelta) Values() map[string]any {
	out := map[string]any{}
	if d == nil {
		return out
	}
	for k, v := range d.scalars() {
		if set(v) {
			out[k] = strings.TrimSpace(*v)
		}
	}
	if cities := cleanCities(d.PreferredCities); len(cities) > 0 {
		out["preferred_cities"] = cities
	}
	return out
}

func (d *ProfileDelta) IsEmpty() bool { return len(d.Values()) == 0 }

// Merge returns a copy of p with every set field of d applied.
// Populated fields are never cleared by an unset delta field.
func (p Profile) Merge(d *ProfileDelta) Profile {
	if d == nil {
		return p
	}
	apply := func(dst *string, v *string) {
		if set(v) {
			*dst = strings.TrimSpace(*v)
		}
	}
	apply(&p.Nationality, d.Nationality)
	apply(&p.CountryOfResidence, d.CountryOfResidence)
	apply(&p.HighestEducationLevel, d.HighestEducationLevel)
	apply(&p.HighestEducationField, d.HighestEducationField)
	apply(&p.GPAOrMarks, d.GPAOrMarks)
	apply(&p.DesiredStudyLevel, d.DesiredStudyLevel)
	apply(&p.DesiredField, d.DesiredField)
	apply(&p.EnglishLevel, d.EnglishLevel)
	apply(&p.GermanLevel, d.GermanLevel)
	apply(&p.BudgetFunds, d.BudgetFunds)
	if cities := cleanCities(d.PreferredCities); len(cities) > 0 {
		p.PreferredCities = cities
	}
	return p
}

func cleanCities(in []string) []string {
	var out []string
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// SplitCities splits a comma separated city list.
func SplitCities(s string) []string {
	return cleanCities(strings.Split(s, ","))
}
