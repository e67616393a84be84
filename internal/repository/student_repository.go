package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/talktrack/caseload-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, full_name, grade, school, status, archived, frequency_per_week, frequency_type, annual_review_date, date_added, created_at, updated_at`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.School != "" {
		conditions = append(conditions, fmt.Sprintf("school = $%d", len(args)+1))
		args = append(args, filter.School)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.Archived != nil {
		conditions = append(conditions, fmt.Sprintf("archived = $%d", len(args)+1))
		args = append(args, *filter.Archived)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(full_name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":  "full_name",
		"grade":      "grade",
		"date_added": "date_added",
	}
	if sortBy == "" {
		sortBy = "date_added"
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "date_added"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentColumns, base, column, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListEligible returns every non-archived active student, the population
// reminder and timesheet derivations run over.
func (r *StudentRepository) ListEligible(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE archived = false AND status = $1", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("list eligible students: %w", err)
	}
	return students, nil
}

// ListAll returns every student regardless of status, for lookups that must
// resolve names on historical records.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students", studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE id = $1", studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &student, nil
}

// Create inserts a new student record.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	if student.DateAdded.IsZero() {
		student.DateAdded = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, full_name, grade, school, status, archived, frequency_per_week, frequency_type, annual_review_date, date_added, created_at, updated_at)
        VALUES (:id, :full_name, :grade, :school, :status, :archived, :frequency_per_week, :frequency_type, :annual_review_date, :date_added, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update modifies an existing student.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET full_name = :full_name, grade = :grade, school = :school, status = :status, archived = :archived, frequency_per_week = :frequency_per_week, frequency_type = :frequency_type, annual_review_date = :annual_review_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Archive removes a student from active derivations without deleting data.
func (r *StudentRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE students SET archived = true, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("archive student: %w", err)
	}
	return nil
}
