package dto

// TimesheetNoteQuery selects the day and rendering mode for a note.
type TimesheetNoteQuery struct {
	Date          string `form:"date" validate:"required,datetime=2006-01-02"`
	Teletherapy   *bool  `form:"teletherapy"`
	SpecificTimes *bool  `form:"specific_times"`
}
