package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/talktrack/caseload-api/internal/models"
)

// ReviewRepository manages evaluations and progress reports, the two
// deadline-bearing record types feeding the reminder engine.
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// ListOpenEvaluations returns evaluations whose report is not yet completed.
func (r *ReviewRepository) ListOpenEvaluations(ctx context.Context) ([]models.Evaluation, error) {
	const query = `SELECT id, student_id, due_date, report_completed, created_at
        FROM evaluations WHERE report_completed = false ORDER BY due_date ASC NULLS LAST`
	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query); err != nil {
		return nil, fmt.Errorf("list open evaluations: %w", err)
	}
	return evaluations, nil
}

// ListPendingProgressReports returns progress reports still awaiting completion.
func (r *ReviewRepository) ListPendingProgressReports(ctx context.Context) ([]models.ProgressReport, error) {
	const query = `SELECT id, student_id, due_date, status, created_at
        FROM progress_reports WHERE status = $1 ORDER BY due_date ASC`
	var reports []models.ProgressReport
	if err := r.db.SelectContext(ctx, &reports, query, models.ProgressReportPending); err != nil {
		return nil, fmt.Errorf("list pending progress reports: %w", err)
	}
	return reports, nil
}
