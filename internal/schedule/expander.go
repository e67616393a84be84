// Package schedule projects recurring scheduled-session templates onto
// calendar dates. It holds no state; callers expand fresh per render.
package schedule

import (
	"time"

	"github.com/talktrack/caseload-api/internal/models"
)

const defaultDurationMinutes = 30

// DateKey is the canonical day format used for specific and cancelled dates.
const DateKey = "2006-01-02"

// Occurrence is one projected per-student session instance.
type Occurrence struct {
	ScheduleID       string    `json:"schedule_id"`
	StudentID        string    `json:"student_id"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	IsDirectServices bool      `json:"is_direct_services"`
}

// ExpandForDate projects every matching schedule onto the target date. A
// schedule covering several students yields one occurrence per student.
func ExpandForDate(schedules []models.ScheduledSession, target time.Time) []Occurrence {
	var out []Occurrence
	for _, sched := range schedules {
		if !sched.Active || cancelledOn(sched, target) || !inWindow(sched, target) {
			continue
		}
		if !matchesRecurrence(sched, target) {
			continue
		}
		start := onDate(target, sched.StartTime)
		end := occurrenceEnd(sched, start, target)
		for _, studentID := range sched.StudentIDs {
			out = append(out, Occurrence{
				ScheduleID:       sched.ID,
				StudentID:        studentID,
				Start:            start,
				End:              end,
				IsDirectServices: sched.IsDirectServices,
			})
		}
	}
	return out
}

func cancelledOn(sched models.ScheduledSession, target time.Time) bool {
	key := target.Format(DateKey)
	for _, cancelled := range sched.CancelledDates {
		if cancelled == key {
			return true
		}
	}
	return false
}

// inWindow checks the inclusive [startDate, endDate] range at day
// granularity. A missing end date means unbounded future.
func inWindow(sched models.ScheduledSession, target time.Time) bool {
	day := dateOnly(target)
	if day.Before(dateOnly(sched.StartDate)) {
		return false
	}
	if sched.EndDate != nil && day.After(dateOnly(*sched.EndDate)) {
		return false
	}
	return true
}

func matchesRecurrence(sched models.ScheduledSession, target time.Time) bool {
	switch sched.RecurrencePattern {
	case models.RecurrenceWeekly:
		weekday := int(target.Weekday())
		for _, day := range sched.DaysOfWeek {
			if day == weekday {
				return true
			}
		}
		return false
	case models.RecurrenceDaily:
		return true
	case models.RecurrenceSpecificDates:
		key := target.Format(DateKey)
		for _, date := range sched.SpecificDates {
			if date == key {
				return true
			}
		}
		return false
	case models.RecurrenceNone:
		return dateOnly(target).Equal(dateOnly(sched.StartDate))
	default:
		return false
	}
}

// occurrenceEnd resolves the end instant: explicit end time, then duration,
// then a 30 minute default.
func occurrenceEnd(sched models.ScheduledSession, start, target time.Time) time.Time {
	if sched.EndTime != nil {
		return onDate(target, *sched.EndTime)
	}
	if sched.DurationMinutes != nil && *sched.DurationMinutes > 0 {
		return start.Add(time.Duration(*sched.DurationMinutes) * time.Minute)
	}
	return start.Add(defaultDurationMinutes * time.Minute)
}

// onDate transplants the clock component of src onto the target date.
func onDate(target, src time.Time) time.Time {
	return time.Date(target.Year(), target.Month(), target.Day(),
		src.Hour(), src.Minute(), src.Second(), 0, target.Location())
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
