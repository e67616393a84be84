package models

import "time"

// ReminderType enumerates the seven reminder detectors.
type ReminderType string

const (
	ReminderGoalReview      ReminderType = "goal-review"
	ReminderEvaluationDue   ReminderType = "evaluation-due"
	ReminderReportDeadline  ReminderType = "report-deadline"
	ReminderAnnualReview    ReminderType = "annual-review"
	ReminderFrequencyBehind ReminderType = "frequency-behind"
	ReminderNoGoals         ReminderType = "no-goals"
	ReminderNoTarget        ReminderType = "no-target"
)

// ReminderPriority orders reminders in the feed.
type ReminderPriority string

const (
	PriorityHigh   ReminderPriority = "high"
	PriorityMedium ReminderPriority = "medium"
	PriorityLow    ReminderPriority = "low"
)

// Rank maps a priority to its sort rank (lower sorts first).
func (p ReminderPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Reminder is a derived alert produced by the reminder engine. Reminders are
// computed fresh on every aggregation call and never persisted.
// A negative DaysUntilDue means overdue or behind schedule.
type Reminder struct {
	ID           string           `json:"id"`
	Type         ReminderType     `json:"type"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	StudentID    string           `json:"student_id"`
	StudentName  string           `json:"student_name"`
	RelatedID    *string          `json:"related_id,omitempty"`
	DueDate      *time.Time       `json:"due_date,omitempty"`
	Priority     ReminderPriority `json:"priority"`
	DaysUntilDue *int             `json:"days_until_due,omitempty"`
}
