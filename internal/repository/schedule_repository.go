package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/talktrack/caseload-api/internal/models"
)

// ScheduleRepository manages persistence for recurring session templates.
// List-valued columns (students, weekdays, dates) are stored as JSON text.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

type scheduledSessionRow struct {
	ID                string                   `db:"id"`
	StudentIDs        string                   `db:"student_ids"`
	StartTime         time.Time                `db:"start_time"`
	EndTime           *time.Time               `db:"end_time"`
	DurationMinutes   *int                     `db:"duration_minutes"`
	RecurrencePattern models.RecurrencePattern `db:"recurrence_pattern"`
	DaysOfWeek        string                   `db:"days_of_week"`
	SpecificDates     string                   `db:"specific_dates"`
	StartDate         time.Time                `db:"start_date"`
	EndDate           *time.Time               `db:"end_date"`
	Active            bool                     `db:"active"`
	CancelledDates    string                   `db:"cancelled_dates"`
	IsDirectServices  bool                     `db:"is_direct_services"`
}

func (row scheduledSessionRow) toModel() (models.ScheduledSession, error) {
	schedule := models.ScheduledSession{
		ID:                row.ID,
		StartTime:         row.StartTime,
		EndTime:           row.EndTime,
		DurationMinutes:   row.DurationMinutes,
		RecurrencePattern: row.RecurrencePattern,
		StartDate:         row.StartDate,
		EndDate:           row.EndDate,
		Active:            row.Active,
		IsDirectServices:  row.IsDirectServices,
	}
	if err := decodeJSONColumn(row.StudentIDs, &schedule.StudentIDs); err != nil {
		return schedule, fmt.Errorf("decode student_ids for schedule %s: %w", row.ID, err)
	}
	if err := decodeJSONColumn(row.DaysOfWeek, &schedule.DaysOfWeek); err != nil {
		return schedule, fmt.Errorf("decode days_of_week for schedule %s: %w", row.ID, err)
	}
	if err := decodeJSONColumn(row.SpecificDates, &schedule.SpecificDates); err != nil {
		return schedule, fmt.Errorf("decode specific_dates for schedule %s: %w", row.ID, err)
	}
	if err := decodeJSONColumn(row.CancelledDates, &schedule.CancelledDates); err != nil {
		return schedule, fmt.Errorf("decode cancelled_dates for schedule %s: %w", row.ID, err)
	}
	return schedule, nil
}

func decodeJSONColumn(raw string, dest interface{}) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), dest)
}

const scheduleColumns = `id, student_ids, start_time, end_time, duration_minutes, recurrence_pattern, days_of_week, specific_dates, start_date, end_date, active, cancelled_dates, is_direct_services`

// ListActive returns every active schedule template.
func (r *ScheduleRepository) ListActive(ctx context.Context) ([]models.ScheduledSession, error) {
	query := fmt.Sprintf("SELECT %s FROM scheduled_sessions WHERE active = true ORDER BY start_time ASC", scheduleColumns)
	var rows []scheduledSessionRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active schedules: %w", err)
	}

	schedules := make([]models.ScheduledSession, 0, len(rows))
	for _, row := range rows {
		schedule, err := row.toModel()
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, schedule)
	}
	return schedules, nil
}
