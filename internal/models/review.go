package models

import "time"

// Evaluation tracks a formal evaluation cycle for a student.
type Evaluation struct {
	ID              string     `db:"id" json:"id"`
	StudentID       string     `db:"student_id" json:"student_id"`
	DueDate         *time.Time `db:"due_date" json:"due_date,omitempty"`
	ReportCompleted bool       `db:"report_completed" json:"report_completed"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// ProgressReportStatus enumerates progress report states.
type ProgressReportStatus string

const (
	ProgressReportPending   ProgressReportStatus = "pending"
	ProgressReportCompleted ProgressReportStatus = "completed"
)

// ProgressReport tracks a periodic progress report deadline for a student.
type ProgressReport struct {
	ID        string               `db:"id" json:"id"`
	StudentID string               `db:"student_id" json:"student_id"`
	DueDate   time.Time            `db:"due_date" json:"due_date"`
	Status    ProgressReportStatus `db:"status" json:"status"`
	CreatedAt time.Time            `db:"created_at" json:"created_at"`
}
