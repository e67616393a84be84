package models

import "time"

// StudentStatus enumerates the lifecycle states of a student on the caseload.
type StudentStatus string

const (
	StudentStatusActive     StudentStatus = "active"
	StudentStatusDischarged StudentStatus = "discharged"
)

// FrequencyType describes how a student's service frequency is counted.
type FrequencyType string

const (
	FrequencyPerWeek  FrequencyType = "per-week"
	FrequencyPerMonth FrequencyType = "per-month"
)

// Student represents a learner on the therapist's caseload. Only active,
// non-archived students participate in reminder and timesheet derivations.
type Student struct {
	ID               string         `db:"id" json:"id"`
	FullName         string         `db:"full_name" json:"full_name"`
	Grade            string         `db:"grade" json:"grade"`
	School           string         `db:"school" json:"school"`
	Status           StudentStatus  `db:"status" json:"status"`
	Archived         bool           `db:"archived" json:"archived"`
	FrequencyPerWeek *int           `db:"frequency_per_week" json:"frequency_per_week,omitempty"`
	FrequencyType    *FrequencyType `db:"frequency_type" json:"frequency_type,omitempty"`
	AnnualReviewDate *time.Time     `db:"annual_review_date" json:"annual_review_date,omitempty"`
	DateAdded        time.Time      `db:"date_added" json:"date_added"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// Eligible reports whether the student participates in caseload derivations.
func (s Student) Eligible() bool {
	return !s.Archived && s.Status == StudentStatusActive
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	School    string
	Status    *StudentStatus
	Archived  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
