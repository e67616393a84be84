package models

import "time"

// MeetingCategory is the stored category label of a meeting record. The
// classification of categories into billing buckets lives in the timesheet
// package; models only carries the raw enumeration.
type MeetingCategory string

const (
	CategoryInitialAssessment       MeetingCategory = "Initial Assessment"
	CategoryThreeYearReassessment   MeetingCategory = "3 Year Reassessment"
	CategoryIEP                     MeetingCategory = "IEP"
	CategoryIEPPlanning             MeetingCategory = "IEP planning"
	CategoryAssessmentPlanning      MeetingCategory = "Assessment planning"
	CategoryReassessmentPlanning    MeetingCategory = "3 year reassessment planning"
	CategoryAssessmentDocumentation MeetingCategory = "Assessment documentation"
	CategorySpeechScreening         MeetingCategory = "Speech screening"
	// CategoryAssessmentLegacy predates the Initial/3 Year split; its meaning
	// depends on the activity subtype.
	CategoryAssessmentLegacy MeetingCategory = "Assessment"
)

// ActivitySubtype qualifies what actually happened at a meeting.
type ActivitySubtype string

const (
	SubtypeMeeting    ActivitySubtype = "meeting"
	SubtypeUpdates    ActivitySubtype = "updates"
	SubtypeAssessment ActivitySubtype = "assessment"
)

// Meeting represents a non-session clinical activity record.
type Meeting struct {
	ID              string           `db:"id" json:"id"`
	Date            time.Time        `db:"date" json:"date"`
	EndTime         *time.Time       `db:"end_time" json:"end_time,omitempty"`
	Category        MeetingCategory  `db:"category" json:"category"`
	ActivitySubtype *ActivitySubtype `db:"activity_subtype" json:"activity_subtype,omitempty"`
	StudentID       *string          `db:"student_id" json:"student_id,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}
