package dto

// ReminderFeedQuery filters the reminder feed.
type ReminderFeedQuery struct {
	School string `form:"school"`
}
