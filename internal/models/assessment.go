package models

import "time"

type ScoreDetails struct {
	TotalScore float64 `bson:"total_score" json:"total_score"`
	MaxScore   float64 `bson:"max_score" json:"max_score"`
	Percentage float64 `bson:"percentage" json:"percentage"`
}

// Assessment is a feasibility snapshot produced outside the counseling flow.
type Assessment struct {
	UserID             string       `bson:"user_id" json:"user_id"`
	OverallFeasibility string       `bson:"overall_feasibility" json:"overall_feasibility"`
	SuggestedEntryPath string       `bson:"suggested_entry_path" json:"suggested_entry_path"`
	KeyGaps            []string     `bson:"key_gaps" json:"key_gaps"`
	RecommendedActions []string     `bson:"recommended_actions" json:"recommended_actions"`
	ScoreDetails       ScoreDetails `bson:"score_details" json:"score_details"`
	CreatedAt          time.Time    `bson:"created_at" json:"created_at"`
}
