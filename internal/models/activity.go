package models

import "time"

// ArticulationScreener records a brief articulation screening contact.
type ArticulationScreener struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Date      time.Time `db:"date" json:"date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Communication records a parent/staff correspondence. RelatedTo is free text
// and may mention "IEP" or "Evaluation", which routes it away from the email
// correspondence bucket on timesheets.
type Communication struct {
	ID        string    `db:"id" json:"id"`
	StudentID *string   `db:"student_id" json:"student_id,omitempty"`
	Date      time.Time `db:"date" json:"date"`
	RelatedTo *string   `db:"related_to" json:"related_to,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
