package models

import "time"

const StepStatusPending = "pending"

type PlanStep struct {
	StepID  string     `bson:"step_id" json:"step_id"`
	Title   string     `bson:"title" json:"title"`
	Status  string     `bson:"status" json:"status"`
	DueDate *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Notes   string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Plan is the action plan of one (user, session) pair, kept in counseling_plans.
type Plan struct {
	UserID        string     `bson:"user_id" json:"user_id"`
	SessionID     string     `bson:"session_id" json:"session_id"`
	CountryTarget string     `bson:"country_target" json:"country_target"`
	Steps         []PlanStep `bson:"plan_steps" json:"plan_steps"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	LastUpdatedAt time.Time  `bson:"last_updated_at" json:"last_updated_at"`
}

// PlanDelta carries steps proposed during a turn.
type PlanDelta struct {
	NewSteps []PlanStep `json:"new_steps"`
}

func (d *PlanDelta) IsEmpty() bool { return d == nil || len(d.NewSteps) == 0 }
