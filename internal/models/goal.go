package models

import "time"

// GoalStatus enumerates the lifecycle states of a therapy goal.
type GoalStatus string

const (
	GoalStatusInProgress GoalStatus = "in-progress"
	GoalStatusAchieved   GoalStatus = "achieved"
	GoalStatusModified   GoalStatus = "modified"
)

// Goal represents a therapy goal attached to a student. Target is free text
// expected to embed a percentage, e.g. "with 80% accuracy".
type Goal struct {
	ID           string     `db:"id" json:"id"`
	StudentID    string     `db:"student_id" json:"student_id"`
	Description  string     `db:"description" json:"description"`
	Status       GoalStatus `db:"status" json:"status"`
	Target       string     `db:"target" json:"target"`
	ParentGoalID *string    `db:"parent_goal_id" json:"parent_goal_id,omitempty"`
	DateCreated  time.Time  `db:"date_created" json:"date_created"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
