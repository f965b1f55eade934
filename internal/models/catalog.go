package models

const (
	CollectionUniversities     = "universities"
	CollectionProgrammes       = "programmes"
	CollectionImmigrationRules = "immigration_rules"
)

// IndexableCollections lists the catalog collections that carry embeddings.
var IndexableCollections = []string{CollectionUniversities, CollectionProgrammes, CollectionImmigrationRules}

type Programme struct {
	ID                  string   `bson:"_id,omitempty" json:"id"`
	Title               string   `bson:"title" json:"title"`
	DegreeType          string   `bson:"degree_type" json:"degree_type"`
	Language            []string `bson:"language" json:"language"`
	UniversityName      string   `bson:"university_name" json:"university_name"`
	UniversityID        string   `bson:"university_id,omitempty" json:"university_id,omitempty"`
	City                string   `bson:"city" json:"city"`
	TuitionEURSemester  *int     `bson:"tuition_fee_eur_per_semester,omitempty" json:"tuition_fee_eur_per_semester,omitempty"`
	DurationSemesters   *int     `bson:"duration_semesters,omitempty" json:"duration_semesters,omitempty"`
	ApplicationDeadline string   `bson:"application_deadline,omitempty" json:"application_deadline,omitempty"`
	SourceURL           string   `bson:"source_url,omitempty" json:"source_url,omitempty"`
}

type University struct {
	ID            string   `bson:"_id,omitempty" json:"id"`
	Name          string   `bson:"name" json:"name"`
	Country       string   `bson:"country" json:"country"`
	StateProvince string   `bson:"state-province,omitempty" json:"state_province,omitempty"`
	WebPages      []string `bson:"web_pages,omitempty" json:"web_pages,omitempty"`
	Domains       []string `bson:"domains,omitempty" json:"domains,omitempty"`
}

// Website returns the first listed web page.
func (u University) Website() string {
	if len(u.WebPages) == 0 {
		return ""
	}
	return u.WebPages[0]
}

// ProgrammeFilter is the store-agnostic programme query.
// Empty fields are not filtered on.
type ProgrammeFilter struct {
	DegreeType string   // case-insensitive pattern
	Title      string   // case-insensitive pattern
	Languages  []string // any of
	City       string   // case-insensitive pattern
	Cities     []string // exact set, used when City is empty
}

// UniversityFilter is the store-agnostic university query.
type UniversityFilter struct {
	Country string
	Region  string   // case-insensitive pattern on state-province
	Regions []string // exact set, used when Region is empty
	Text    string   // full-text search terms
}
