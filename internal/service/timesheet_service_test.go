package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktrack/caseload-api/internal/models"
)

type stubDayRepo struct {
	sessions       []models.Session
	meetings       []models.Meeting
	screeners      []models.ArticulationScreener
	communications []models.Communication
	students       []models.Student
	schedules      []models.ScheduledSession
}

func (s *stubDayRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Session, error) {
	return s.sessions, nil
}

func (s *stubDayRepo) ListMeetingsByDateRange(ctx context.Context, from, to time.Time) ([]models.Meeting, error) {
	return s.meetings, nil
}

func (s *stubDayRepo) ListScreenersByDateRange(ctx context.Context, from, to time.Time) ([]models.ArticulationScreener, error) {
	return s.screeners, nil
}

func (s *stubDayRepo) ListCommunicationsByDateRange(ctx context.Context, from, to time.Time) ([]models.Communication, error) {
	return s.communications, nil
}

func (s *stubDayRepo) ListAll(ctx context.Context) ([]models.Student, error) {
	return s.students, nil
}

func (s *stubDayRepo) ListActive(ctx context.Context) ([]models.ScheduledSession, error) {
	return s.schedules, nil
}

func newTestTimesheetService(repo *stubDayRepo, cache *CacheService) *TimesheetService {
	return NewTimesheetService(TimesheetServiceParams{
		Sessions:   repo,
		Activities: repo,
		Students:   repo,
		Schedules:  repo,
		Cache:      cache,
		CacheTTL:   time.Minute,
	})
}

func TestTimesheetNoteRendersDay(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &stubDayRepo{
		sessions: []models.Session{{
			ID:               "sess-1",
			StudentID:        "stu-1",
			Date:             day.Add(9 * time.Hour),
			IsDirectServices: true,
		}},
		students: []models.Student{{ID: "stu-1", FullName: "Aaron Brown", Grade: "3"}},
	}
	svc := newTestTimesheetService(repo, nil)

	note, cached, err := svc.Note(context.Background(), day, NoteOptions{})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Contains(t, note, "Direct services:")
	assert.Contains(t, note, "Direct Therapy: AB (3)")
	assert.Contains(t, note, "Session Documentation")
}

func TestTimesheetNoteCaches(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &stubDayRepo{
		sessions: []models.Session{{
			ID:               "sess-1",
			StudentID:        "stu-1",
			Date:             day.Add(9 * time.Hour),
			IsDirectServices: true,
		}},
		students: []models.Student{{ID: "stu-1", FullName: "Aaron Brown", Grade: "3"}},
	}
	cache := NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil)
	svc := newTestTimesheetService(repo, cache)

	first, cached, err := svc.Note(context.Background(), day, NoteOptions{})
	require.NoError(t, err)
	assert.False(t, cached)

	repo.sessions = nil
	second, cached, err := svc.Note(context.Background(), day, NoteOptions{})
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, first, second)

	svc.Invalidate(context.Background())
	third, cached, err := svc.Note(context.Background(), day, NoteOptions{})
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Empty(t, third)
}

func TestTimesheetNoteCacheKeyVariesWithOptions(t *testing.T) {
	base := TimesheetNoteKey("2025-03-10", false, false)
	tele := TimesheetNoteKey("2025-03-10", true, false)
	timed := TimesheetNoteKey("2025-03-10", false, true)
	assert.NotEqual(t, base, tele)
	assert.NotEqual(t, base, timed)
	assert.NotEqual(t, tele, timed)
}

func TestTimesheetProspectiveNoteUsesSchedule(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) // Monday
	repo := &stubDayRepo{
		schedules: []models.ScheduledSession{{
			ID:                "sched-1",
			StudentIDs:        []string{"stu-1"},
			StartTime:         time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC),
			RecurrencePattern: models.RecurrenceWeekly,
			DaysOfWeek:        []int{1},
			StartDate:         time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
			Active:            true,
			IsDirectServices:  true,
		}},
		students: []models.Student{{ID: "stu-1", FullName: "Aaron Brown", Grade: "3"}},
	}
	svc := newTestTimesheetService(repo, nil)

	note, err := svc.ProspectiveNote(context.Background(), day, NoteOptions{})
	require.NoError(t, err)
	assert.Contains(t, note, "Direct Therapy: AB (3)")
}

func TestTimesheetNotePDF(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &stubDayRepo{
		sessions: []models.Session{{
			ID:               "sess-1",
			StudentID:        "stu-1",
			Date:             day.Add(9 * time.Hour),
			IsDirectServices: true,
		}},
		students: []models.Student{{ID: "stu-1", FullName: "Aaron Brown", Grade: "3"}},
	}
	svc := newTestTimesheetService(repo, nil)

	payload, err := svc.NotePDF(context.Background(), day, NoteOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
