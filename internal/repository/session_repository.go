package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/talktrack/caseload-api/internal/models"
)

// SessionRepository manages persistence for logged therapy sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs a SessionRepository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, student_id, date, end_time, is_direct_services, missed_session, goals_targeted, activities_used, group_session_id, created_at, updated_at`

// ListSince returns sessions with a date at or after the given instant.
func (r *SessionRepository) ListSince(ctx context.Context, since time.Time) ([]models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE date >= $1 ORDER BY date ASC", sessionColumns)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, since); err != nil {
		return nil, fmt.Errorf("list sessions since %s: %w", since.Format(time.RFC3339), err)
	}
	return sessions, nil
}

// ListByDateRange returns sessions with a date inside [from, to).
func (r *SessionRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE date >= $1 AND date < $2 ORDER BY date ASC", sessionColumns)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, from, to); err != nil {
		return nil, fmt.Errorf("list sessions in range: %w", err)
	}
	return sessions, nil
}

// ListByStudent returns every session logged for one student.
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Session, error) {
	query := fmt.Sprintf("SELECT %s FROM sessions WHERE student_id = $1 ORDER BY date ASC", sessionColumns)
	var sessions []models.Session
	if err := r.db.SelectContext(ctx, &sessions, query, studentID); err != nil {
		return nil, fmt.Errorf("list sessions for student %s: %w", studentID, err)
	}
	return sessions, nil
}

// Create inserts a new session record.
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	const query = `INSERT INTO sessions (id, student_id, date, end_time, is_direct_services, missed_session, goals_targeted, activities_used, group_session_id, created_at, updated_at)
        VALUES (:id, :student_id, :date, :end_time, :is_direct_services, :missed_session, :goals_targeted, :activities_used, :group_session_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}
