package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/talktrack/caseload-api/internal/models"
)

// GoalRepository manages persistence for therapy goals.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository constructs a GoalRepository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, student_id, description, status, target, parent_goal_id, date_created, created_at, updated_at`

// ListAll returns every goal across the caseload, oldest first.
func (r *GoalRepository) ListAll(ctx context.Context) ([]models.Goal, error) {
	query := fmt.Sprintf("SELECT %s FROM goals ORDER BY date_created ASC", goalColumns)
	var goals []models.Goal
	if err := r.db.SelectContext(ctx, &goals, query); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// ListByStudent returns the goals for one student.
func (r *GoalRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Goal, error) {
	query := fmt.Sprintf("SELECT %s FROM goals WHERE student_id = $1 ORDER BY date_created ASC", goalColumns)
	var goals []models.Goal
	if err := r.db.SelectContext(ctx, &goals, query, studentID); err != nil {
		return nil, fmt.Errorf("list goals for student %s: %w", studentID, err)
	}
	return goals, nil
}

// FindByID fetches a goal by ID.
func (r *GoalRepository) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	query := fmt.Sprintf("SELECT %s FROM goals WHERE id = $1", goalColumns)
	var goal models.Goal
	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find goal: %w", err)
	}
	return &goal, nil
}

// Create inserts a new goal.
func (r *GoalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if goal.DateCreated.IsZero() {
		goal.DateCreated = now
	}
	goal.CreatedAt = now
	goal.UpdatedAt = now
	const query = `INSERT INTO goals (id, student_id, description, status, target, parent_goal_id, date_created, created_at, updated_at)
        VALUES (:id, :student_id, :description, :status, :target, :parent_goal_id, :date_created, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	return nil
}

// Update modifies an existing goal.
func (r *GoalRepository) Update(ctx context.Context, goal *models.Goal) error {
	goal.UpdatedAt = time.Now().UTC()
	const query = `UPDATE goals SET description = :description, status = :status, target = :target, parent_goal_id = :parent_goal_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, goal); err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return nil
}
