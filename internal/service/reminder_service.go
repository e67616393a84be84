package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/talktrack/caseload-api/internal/models"
	"github.com/talktrack/caseload-api/internal/reminder"
	appErrors "github.com/talktrack/caseload-api/pkg/errors"
	"github.com/talktrack/caseload-api/pkg/export"
)

// sessionHistoryWindow bounds how far back the session history loaded for a
// reminder scan reaches. Goals untouched for longer fall back to their
// creation date when computing staleness.
const sessionHistoryWindow = 365 * 24 * time.Hour

type reminderStudentRepository interface {
	ListEligible(ctx context.Context) ([]models.Student, error)
}

type reminderGoalRepository interface {
	ListAll(ctx context.Context) ([]models.Goal, error)
}

type reminderReviewRepository interface {
	ListOpenEvaluations(ctx context.Context) ([]models.Evaluation, error)
	ListPendingProgressReports(ctx context.Context) ([]models.ProgressReport, error)
}

type reminderSessionRepository interface {
	ListSince(ctx context.Context, since time.Time) ([]models.Session, error)
}

// ReminderFeed is the aggregated reminder payload returned to clients.
type ReminderFeed struct {
	Reminders   []models.Reminder `json:"reminders"`
	Total       int               `json:"total"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// ReminderService loads caseload records, runs the reminder engine over them
// and caches the resulting feed.
type ReminderService struct {
	students reminderStudentRepository
	goals    reminderGoalRepository
	reviews  reminderReviewRepository
	sessions reminderSessionRepository
	engine   *reminder.Engine
	cache    *CacheService
	metrics  *MetricsService
	exporter *export.CSVExporter
	logger   *zap.Logger
	cacheTTL time.Duration

	now func() time.Time
}

// ReminderServiceParams bundles dependencies for NewReminderService.
type ReminderServiceParams struct {
	Students reminderStudentRepository
	Goals    reminderGoalRepository
	Reviews  reminderReviewRepository
	Sessions reminderSessionRepository
	Engine   *reminder.Engine
	Cache    *CacheService
	Metrics  *MetricsService
	Logger   *zap.Logger
	CacheTTL time.Duration
}

// NewReminderService constructs a ReminderService.
func NewReminderService(p ReminderServiceParams) *ReminderService {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Engine == nil {
		p.Engine = reminder.NewEngine()
	}
	return &ReminderService{
		students: p.Students,
		goals:    p.Goals,
		reviews:  p.Reviews,
		sessions: p.Sessions,
		engine:   p.Engine,
		cache:    p.Cache,
		metrics:  p.Metrics,
		exporter: export.NewCSVExporter(),
		logger:   p.Logger,
		cacheTTL: p.CacheTTL,
		now:      time.Now,
	}
}

// Feed returns the current reminder feed, optionally filtered to one school.
// The bool result reports whether the payload came from cache.
func (s *ReminderService) Feed(ctx context.Context, school string) (*ReminderFeed, bool, error) {
	key := ReminderFeedKey(school)
	if s.cache != nil {
		var cached ReminderFeed
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	feed, err := s.build(ctx, school)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, feed, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache reminder feed", zap.Error(err))
		}
	}
	return feed, false, nil
}

// ExportCSV renders the current feed as a CSV document.
func (s *ReminderService) ExportCSV(ctx context.Context, school string) ([]byte, error) {
	feed, _, err := s.Feed(ctx, school)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Headers: []string{"type", "priority", "student_name", "student_id", "title", "description", "due_date", "days_until_due"},
	}
	for _, rem := range feed.Reminders {
		row := map[string]string{
			"type":         string(rem.Type),
			"priority":     string(rem.Priority),
			"student_name": rem.StudentName,
			"student_id":   rem.StudentID,
			"title":        rem.Title,
			"description":  rem.Description,
		}
		if rem.DueDate != nil {
			row["due_date"] = rem.DueDate.Format("2006-01-02")
		}
		if rem.DaysUntilDue != nil {
			row["days_until_due"] = strconv.Itoa(*rem.DaysUntilDue)
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	payload, err := s.exporter.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export reminders")
	}
	return payload, nil
}

// Invalidate drops cached feeds after a write to any underlying record type.
func (s *ReminderService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "reminders:feed:*"); err != nil {
		s.logger.Warn("failed to invalidate reminder cache", zap.Error(err))
	}
}

func (s *ReminderService) build(ctx context.Context, school string) (*ReminderFeed, error) {
	start := s.now()

	students, err := s.students.ListEligible(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	goals, err := s.goals.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goals")
	}
	evaluations, err := s.reviews.ListOpenEvaluations(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluations")
	}
	reports, err := s.reviews.ListPendingProgressReports(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load progress reports")
	}
	sessions, err := s.sessions.ListSince(ctx, start.Add(-sessionHistoryWindow))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}

	reminders := s.engine.All(reminder.Snapshot{
		Students:        students,
		Goals:           goals,
		Evaluations:     evaluations,
		ProgressReports: reports,
		Sessions:        sessions,
		School:          school,
	})

	elapsed := s.now().Sub(start)
	s.metrics.ObserveFeedBuild(elapsed, len(reminders))
	s.logger.Debug("reminder feed built",
		zap.Int("students", len(students)),
		zap.Int("reminders", len(reminders)),
		zap.Duration("elapsed", elapsed))

	return &ReminderFeed{
		Reminders:   reminders,
		Total:       len(reminders),
		GeneratedAt: start.UTC(),
	}, nil
}
