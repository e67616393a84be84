package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/talktrack/caseload-api/internal/models"
	"github.com/talktrack/caseload-api/internal/timesheet"
	appErrors "github.com/talktrack/caseload-api/pkg/errors"
	"github.com/talktrack/caseload-api/pkg/export"
)

type timesheetSessionRepository interface {
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Session, error)
}

type timesheetActivityRepository interface {
	ListMeetingsByDateRange(ctx context.Context, from, to time.Time) ([]models.Meeting, error)
	ListScreenersByDateRange(ctx context.Context, from, to time.Time) ([]models.ArticulationScreener, error)
	ListCommunicationsByDateRange(ctx context.Context, from, to time.Time) ([]models.Communication, error)
}

type timesheetStudentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type timesheetScheduleRepository interface {
	ListActive(ctx context.Context) ([]models.ScheduledSession, error)
}

// NoteOptions adjust how a day note is rendered.
type NoteOptions struct {
	Teletherapy   bool
	SpecificTimes bool
}

// TimesheetService assembles one day's records and renders the billing note.
type TimesheetService struct {
	sessions   timesheetSessionRepository
	activities timesheetActivityRepository
	students   timesheetStudentRepository
	schedules  timesheetScheduleRepository
	cache      *CacheService
	metrics    *MetricsService
	pdf        *export.PDFExporter
	logger     *zap.Logger
	cacheTTL   time.Duration
}

// TimesheetServiceParams bundles dependencies for NewTimesheetService.
type TimesheetServiceParams struct {
	Sessions   timesheetSessionRepository
	Activities timesheetActivityRepository
	Students   timesheetStudentRepository
	Schedules  timesheetScheduleRepository
	Cache      *CacheService
	Metrics    *MetricsService
	Logger     *zap.Logger
	CacheTTL   time.Duration
}

// NewTimesheetService constructs a TimesheetService.
func NewTimesheetService(p TimesheetServiceParams) *TimesheetService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &TimesheetService{
		sessions:   p.Sessions,
		activities: p.Activities,
		students:   p.Students,
		schedules:  p.Schedules,
		cache:      p.Cache,
		metrics:    p.Metrics,
		pdf:        export.NewPDFExporter(),
		logger:     p.Logger,
		cacheTTL:   p.CacheTTL,
	}
}

// Note renders the timesheet note for one calendar day from logged records.
// The bool result reports whether the note came from cache.
func (s *TimesheetService) Note(ctx context.Context, date time.Time, opts NoteOptions) (string, bool, error) {
	key := TimesheetNoteKey(date.Format("2006-01-02"), opts.Teletherapy, opts.SpecificTimes)
	if s.cache != nil {
		var cached string
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	from, to := dayBounds(date)

	sessions, err := s.sessions.ListByDateRange(ctx, from, to)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	meetings, err := s.activities.ListMeetingsByDateRange(ctx, from, to)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meetings")
	}
	screeners, err := s.activities.ListScreenersByDateRange(ctx, from, to)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load screeners")
	}
	communications, err := s.activities.ListCommunicationsByDateRange(ctx, from, to)
	if err != nil {
		return "", false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load communications")
	}
	students, err := s.studentLookup(ctx)
	if err != nil {
		return "", false, err
	}

	note := timesheet.Generate(timesheet.Input{
		Sessions:       sessions,
		Meetings:       meetings,
		Screeners:      screeners,
		Communications: communications,
		Students:       students,
		Groups:         groupLookup(sessions),
		Teletherapy:    opts.Teletherapy,
		SpecificTimes:  opts.SpecificTimes,
	})

	s.metrics.ObserveNoteRender("timesheet", time.Since(start))

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, note, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache note", zap.Error(err))
		}
	}
	return note, false, nil
}

// ProspectiveNote projects a note for a future date from the recurring
// schedule plus any meetings and screeners already on the books.
func (s *TimesheetService) ProspectiveNote(ctx context.Context, date time.Time, opts NoteOptions) (string, error) {
	start := time.Now()
	from, to := dayBounds(date)

	schedules, err := s.schedules.ListActive(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedules")
	}
	meetings, err := s.activities.ListMeetingsByDateRange(ctx, from, to)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load meetings")
	}
	screeners, err := s.activities.ListScreenersByDateRange(ctx, from, to)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load screeners")
	}
	students, err := s.studentLookup(ctx)
	if err != nil {
		return "", err
	}

	note := timesheet.GenerateProspective(timesheet.ProspectiveInput{
		Schedules:     schedules,
		Meetings:      meetings,
		Screeners:     screeners,
		Date:          date,
		Students:      students,
		Teletherapy:   opts.Teletherapy,
		SpecificTimes: opts.SpecificTimes,
	})

	s.metrics.ObserveNoteRender("prospective", time.Since(start))
	return note, nil
}

// NotePDF renders the day note as a printable PDF.
func (s *TimesheetService) NotePDF(ctx context.Context, date time.Time, opts NoteOptions) ([]byte, error) {
	note, _, err := s.Note(ctx, date, opts)
	if err != nil {
		return nil, err
	}
	title := "Timesheet Note - " + date.Format("January 2, 2006")
	payload, err := s.pdf.RenderNote(title, note)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render note pdf")
	}
	return payload, nil
}

// Invalidate drops cached notes after a write to any day record.
func (s *TimesheetService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "timesheet:note:*"); err != nil {
		s.logger.Warn("failed to invalidate note cache", zap.Error(err))
	}
}

func (s *TimesheetService) studentLookup(ctx context.Context) (map[string]models.Student, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	lookup := make(map[string]models.Student, len(students))
	for _, student := range students {
		lookup[student.ID] = student
	}
	return lookup, nil
}

func groupLookup(sessions []models.Session) map[string][]models.Session {
	groups := map[string][]models.Session{}
	for _, session := range sessions {
		if session.GroupSessionID == nil || *session.GroupSessionID == "" {
			continue
		}
		groups[*session.GroupSessionID] = append(groups[*session.GroupSessionID], session)
	}
	return groups
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return from, from.AddDate(0, 0, 1)
}
