package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktrack/caseload-api/internal/models"
)

// 2025-03-10 is a Monday.
var monday = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func weeklySchedule(id string, students []string, days []int) models.ScheduledSession {
	return models.ScheduledSession{
		ID:                id,
		StudentIDs:        students,
		StartTime:         time.Date(2025, 1, 6, 8, 10, 0, 0, time.UTC),
		RecurrencePattern: models.RecurrenceWeekly,
		DaysOfWeek:        days,
		StartDate:         time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Active:            true,
		IsDirectServices:  true,
	}
}

func TestExpandWeeklyMatchesWeekday(t *testing.T) {
	schedules := []models.ScheduledSession{
		weeklySchedule("sch-1", []string{"s1"}, []int{1, 3}),
		weeklySchedule("sch-2", []string{"s2"}, []int{2}),
	}

	got := ExpandForDate(schedules, monday)
	require.Len(t, got, 1)
	assert.Equal(t, "s1", got[0].StudentID)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 10, 0, 0, time.UTC), got[0].Start)
	// No end time or duration on the template: default 30 minutes.
	assert.Equal(t, time.Date(2025, 3, 10, 8, 40, 0, 0, time.UTC), got[0].End)
}

func TestExpandGroupScheduleEmitsPerStudent(t *testing.T) {
	schedules := []models.ScheduledSession{weeklySchedule("sch-1", []string{"s1", "s2", "s3"}, []int{1})}

	got := ExpandForDate(schedules, monday)
	require.Len(t, got, 3)
	for i, studentID := range []string{"s1", "s2", "s3"} {
		assert.Equal(t, studentID, got[i].StudentID)
		assert.Equal(t, "sch-1", got[i].ScheduleID)
	}
}

func TestExpandDurationAndExplicitEnd(t *testing.T) {
	duration := 45
	withDuration := weeklySchedule("sch-1", []string{"s1"}, []int{1})
	withDuration.DurationMinutes = &duration

	end := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	withEnd := weeklySchedule("sch-2", []string{"s2"}, []int{1})
	withEnd.EndTime = &end

	got := ExpandForDate([]models.ScheduledSession{withDuration, withEnd}, monday)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 55, 0, 0, time.UTC), got[0].End)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), got[1].End)
}

func TestExpandSkipsInactiveAndCancelled(t *testing.T) {
	inactive := weeklySchedule("sch-1", []string{"s1"}, []int{1})
	inactive.Active = false

	cancelled := weeklySchedule("sch-2", []string{"s2"}, []int{1})
	cancelled.CancelledDates = []string{"2025-03-10"}

	got := ExpandForDate([]models.ScheduledSession{inactive, cancelled}, monday)
	assert.Empty(t, got)
}

func TestExpandHonorsDateWindow(t *testing.T) {
	notStarted := weeklySchedule("sch-1", []string{"s1"}, []int{1})
	notStarted.StartDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	ended := weeklySchedule("sch-2", []string{"s2"}, []int{1})
	endDate := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	ended.EndDate = &endDate

	endsToday := weeklySchedule("sch-3", []string{"s3"}, []int{1})
	today := monday
	endsToday.EndDate = &today

	got := ExpandForDate([]models.ScheduledSession{notStarted, ended, endsToday}, monday)
	require.Len(t, got, 1)
	assert.Equal(t, "s3", got[0].StudentID)
}

func TestExpandDailyAndSpecificDates(t *testing.T) {
	daily := weeklySchedule("sch-1", []string{"s1"}, nil)
	daily.RecurrencePattern = models.RecurrenceDaily

	specific := weeklySchedule("sch-2", []string{"s2"}, nil)
	specific.RecurrencePattern = models.RecurrenceSpecificDates
	specific.SpecificDates = []string{"2025-03-09", "2025-03-10"}

	specificMiss := weeklySchedule("sch-3", []string{"s3"}, nil)
	specificMiss.RecurrencePattern = models.RecurrenceSpecificDates
	specificMiss.SpecificDates = []string{"2025-03-11"}

	got := ExpandForDate([]models.ScheduledSession{daily, specific, specificMiss}, monday)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].StudentID)
	assert.Equal(t, "s2", got[1].StudentID)
}

func TestExpandOneOff(t *testing.T) {
	oneOff := weeklySchedule("sch-1", []string{"s1"}, nil)
	oneOff.RecurrencePattern = models.RecurrenceNone
	oneOff.StartDate = monday

	got := ExpandForDate([]models.ScheduledSession{oneOff}, monday)
	require.Len(t, got, 1)

	got = ExpandForDate([]models.ScheduledSession{oneOff}, monday.AddDate(0, 0, 1))
	assert.Empty(t, got)
}
