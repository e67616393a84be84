package models

import (
	"encoding/json"
	"time"
)

// Session represents one per-student therapy encounter record. Sessions that
// belong to a shared group encounter carry the same GroupSessionID.
type Session struct {
	ID               string     `db:"id" json:"id"`
	StudentID        string     `db:"student_id" json:"student_id"`
	Date             time.Time  `db:"date" json:"date"`
	EndTime          *time.Time `db:"end_time" json:"end_time,omitempty"`
	IsDirectServices bool       `db:"is_direct_services" json:"is_direct_services"`
	MissedSession    bool       `db:"missed_session" json:"missed_session"`
	GoalsTargeted    string     `db:"goals_targeted" json:"goals_targeted"`
	ActivitiesUsed   string     `db:"activities_used" json:"activities_used"`
	GroupSessionID   *string    `db:"group_session_id" json:"group_session_id,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// TargetedGoalIDs decodes the raw goals_targeted JSON column. Callers must
// treat a decode failure as "matches nothing" rather than aborting a scan.
func (s Session) TargetedGoalIDs() ([]string, error) {
	if s.GoalsTargeted == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(s.GoalsTargeted), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// RecurrencePattern enumerates supported scheduled-session recurrences.
type RecurrencePattern string

const (
	RecurrenceWeekly        RecurrencePattern = "weekly"
	RecurrenceDaily         RecurrencePattern = "daily"
	RecurrenceSpecificDates RecurrencePattern = "specific-dates"
	RecurrenceNone          RecurrencePattern = "none"
)

// ScheduledSession defines a recurring (or one-off) session template covering
// one or more students. A template with multiple students represents a group.
type ScheduledSession struct {
	ID                string            `json:"id"`
	StudentIDs        []string          `json:"student_ids"`
	StartTime         time.Time         `json:"start_time"`
	EndTime           *time.Time        `json:"end_time,omitempty"`
	DurationMinutes   *int              `json:"duration_minutes,omitempty"`
	RecurrencePattern RecurrencePattern `json:"recurrence_pattern"`
	DaysOfWeek        []int             `json:"days_of_week,omitempty"`
	SpecificDates     []string          `json:"specific_dates,omitempty"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           *time.Time        `json:"end_date,omitempty"`
	Active            bool              `json:"active"`
	CancelledDates    []string          `json:"cancelled_dates,omitempty"`
	IsDirectServices  bool              `json:"is_direct_services"`
}
