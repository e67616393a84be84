package timesheet

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktrack/caseload-api/internal/models"
)

var noteDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func noteStudents() map[string]models.Student {
	return map[string]models.Student{
		"s1": {ID: "s1", FullName: "Aaron Brown", Grade: "3"},
		"s2": {ID: "s2", FullName: "Cara Diaz", Grade: "1"},
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func directSession(id, studentID string, start, end time.Time) models.Session {
	return models.Session{
		ID:               id,
		StudentID:        studentID,
		Date:             start,
		EndTime:          timePtr(end),
		IsDirectServices: true,
	}
}

func TestGenerateDirectTherapyDay(t *testing.T) {
	in := Input{
		Sessions: []models.Session{
			directSession("x1", "s1", at(8, 10), at(8, 30)),
			directSession("x2", "s2", at(9, 0), at(9, 30)),
		},
		Students:      noteStudents(),
		SpecificTimes: true,
	}

	want := strings.Join([]string{
		"Direct services:",
		"",
		"Direct Therapy: AB (3) 8:10am-8:30am, CD (1) 9:00am-9:30am",
		"",
		"Indirect services including:",
		"",
		"Session Documentation: AB (3), CD (1)",
		"",
		"Lesson Planning: AB (3), CD (1)",
	}, "\n")
	assert.Equal(t, want, Generate(in))
}

func TestGenerateIsIdempotent(t *testing.T) {
	in := Input{
		Sessions: []models.Session{
			directSession("x1", "s1", at(8, 10), at(8, 30)),
			directSession("x2", "s2", at(9, 0), at(9, 30)),
		},
		Students:    noteStudents(),
		Teletherapy: true,
	}
	assert.Equal(t, Generate(in), Generate(in))
}

func TestGenerateGroupSessionDedup(t *testing.T) {
	groupID := "grp-1"
	a := directSession("x1", "s1", at(8, 10), at(8, 30))
	a.GroupSessionID = &groupID
	b := directSession("x2", "s2", at(8, 10), at(8, 30))
	b.GroupSessionID = &groupID

	in := Input{
		Sessions: []models.Session{a, b},
		Students: noteStudents(),
		Groups:   map[string][]models.Session{groupID: {a, b}},
	}

	note := Generate(in)
	require.Equal(t, 1, strings.Count(note, "Direct Therapy"))
	assert.Contains(t, note, "Direct Therapy: AB (3), CD (1)")
}

func TestGenerateMissedDirectFoldsIntoIndirect(t *testing.T) {
	missed := directSession("x1", "s1", at(8, 10), at(8, 30))
	missed.MissedSession = true

	note := Generate(Input{Sessions: []models.Session{missed}, Students: noteStudents()})

	assert.NotContains(t, note, "Direct services")
	assert.Contains(t, note, "Session Documentation: AB (3)")
	assert.Contains(t, note, "Lesson Planning: AB (3)")
}

func TestGenerateTeletherapyForcesTimes(t *testing.T) {
	in := Input{
		Sessions:      []models.Session{directSession("x1", "s1", at(8, 10), at(8, 30))},
		Students:      noteStudents(),
		Teletherapy:   true,
		SpecificTimes: false,
	}

	note := Generate(in)
	assert.Contains(t, note, "Offsite Direct Services:")
	assert.Contains(t, note, "Offsite Indirect Services Including:")
	assert.Contains(t, note, "AB (3) 8:10am-8:30am")
}

func TestGenerateSameStudentCollapses(t *testing.T) {
	in := Input{
		Sessions: []models.Session{
			directSession("x1", "s1", at(8, 10), at(8, 30)),
			directSession("x2", "s1", at(13, 0), at(13, 30)),
		},
		Students: noteStudents(),
	}

	note := Generate(in)
	for _, line := range strings.Split(note, "\n") {
		if strings.HasPrefix(line, "Direct Therapy:") {
			assert.Equal(t, "Direct Therapy: AB (3)", line)
			return
		}
	}
	t.Fatal("missing Direct Therapy line")
}

func TestGenerateLegacyAssessmentBothWays(t *testing.T) {
	studentID := "s1"
	assessed := models.Meeting{
		ID:              "m1",
		Date:            at(10, 0),
		Category:        models.CategoryAssessmentLegacy,
		ActivitySubtype: subtypePtr(models.SubtypeAssessment),
		StudentID:       &studentID,
	}
	note := Generate(Input{Meetings: []models.Meeting{assessed}, Students: noteStudents()})
	assert.Contains(t, note, "3 Year Reassessment: AB (3)")

	planned := assessed
	planned.ActivitySubtype = subtypePtr(models.SubtypeMeeting)
	note = Generate(Input{Meetings: []models.Meeting{planned}, Students: noteStudents()})
	assert.NotContains(t, note, "Direct services")
	assert.Contains(t, note, "3 year reassessment planning meeting: AB (3)")
}

func TestGenerateScreeningFeedsContactAndWriteup(t *testing.T) {
	in := Input{
		Screeners: []models.ArticulationScreener{{ID: "scr-1", StudentID: "s1", Date: noteDay}},
		Students:  noteStudents(),
	}

	note := Generate(in)
	assert.Contains(t, note, "Speech screening: AB (3)")
	assert.Contains(t, note, "Speech Screening Write-Up and Staff Collaboration: AB (3)")
	assert.Contains(t, note, "Session Documentation: AB (3)")
}

func TestGenerateEmailCorrespondenceFilter(t *testing.T) {
	s1, s2 := "s1", "s2"
	iep := "IEP scheduling"
	lunch := "lunch schedule"
	in := Input{
		Communications: []models.Communication{
			{ID: "c1", StudentID: &s1, Date: noteDay, RelatedTo: &iep},
			{ID: "c2", StudentID: &s2, Date: noteDay, RelatedTo: &lunch},
			{ID: "c3", StudentID: &s1, Date: noteDay},
		},
		Students: noteStudents(),
	}

	note := Generate(in)
	assert.Contains(t, note, "Email Correspondence: AB (3), CD (1)")
}

func TestGenerateUnknownStudentDegrades(t *testing.T) {
	note := Generate(Input{
		Sessions: []models.Session{directSession("x1", "ghost", at(8, 0), at(8, 30))},
		Students: noteStudents(),
	})
	assert.Contains(t, note, "Direct Therapy: Unknown")
}

func TestGenerateEmptyInputs(t *testing.T) {
	assert.Equal(t, "", Generate(Input{Students: noteStudents()}))
}

func TestGenerateProspectiveFromSchedule(t *testing.T) {
	sched := models.ScheduledSession{
		ID:                "sch-1",
		StudentIDs:        []string{"s1", "s2"},
		StartTime:         at(8, 10),
		RecurrencePattern: models.RecurrenceWeekly,
		DaysOfWeek:        []int{1},
		StartDate:         time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Active:            true,
		IsDirectServices:  true,
	}

	note := GenerateProspective(ProspectiveInput{
		Schedules:     []models.ScheduledSession{sched},
		Date:          noteDay, // a Monday
		Students:      noteStudents(),
		SpecificTimes: true,
	})

	assert.Contains(t, note, "Direct services:")
	assert.Contains(t, note, "AB (3) 8:10am-8:40am")
	assert.Contains(t, note, "CD (1) 8:10am-8:40am")
	assert.NotContains(t, note, "Email Correspondence")
}
