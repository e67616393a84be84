package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/talktrack/caseload-api/internal/models"
)

// ActivityRepository manages meetings, articulation screeners and
// communication logs, the non-session inputs to a timesheet day.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs an ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// ListMeetingsByDateRange returns meetings dated inside [from, to).
func (r *ActivityRepository) ListMeetingsByDateRange(ctx context.Context, from, to time.Time) ([]models.Meeting, error) {
	const query = `SELECT id, date, end_time, category, activity_subtype, student_id, created_at, updated_at
        FROM meetings WHERE date >= $1 AND date < $2 ORDER BY date ASC`
	var meetings []models.Meeting
	if err := r.db.SelectContext(ctx, &meetings, query, from, to); err != nil {
		return nil, fmt.Errorf("list meetings in range: %w", err)
	}
	return meetings, nil
}

// ListScreenersByDateRange returns articulation screeners dated inside [from, to).
func (r *ActivityRepository) ListScreenersByDateRange(ctx context.Context, from, to time.Time) ([]models.ArticulationScreener, error) {
	const query = `SELECT id, student_id, date, created_at
        FROM articulation_screeners WHERE date >= $1 AND date < $2 ORDER BY date ASC`
	var screeners []models.ArticulationScreener
	if err := r.db.SelectContext(ctx, &screeners, query, from, to); err != nil {
		return nil, fmt.Errorf("list screeners in range: %w", err)
	}
	return screeners, nil
}

// ListCommunicationsByDateRange returns communication logs dated inside [from, to).
func (r *ActivityRepository) ListCommunicationsByDateRange(ctx context.Context, from, to time.Time) ([]models.Communication, error) {
	const query = `SELECT id, student_id, date, related_to, created_at
        FROM communications WHERE date >= $1 AND date < $2 ORDER BY date ASC`
	var communications []models.Communication
	if err := r.db.SelectContext(ctx, &communications, query, from, to); err != nil {
		return nil, fmt.Errorf("list communications in range: %w", err)
	}
	return communications, nil
}
