package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/talktrack/caseload-api/internal/dto"
	"github.com/talktrack/caseload-api/internal/models"
	appErrors "github.com/talktrack/caseload-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Archive(ctx context.Context, id string) error
}

type studentGoalRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Goal, error)
}

// StudentService provides caseload roster management.
type StudentService struct {
	repo      studentRepository
	goals     studentGoalRepository
	reminders *ReminderService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService. The reminder service may be
// nil; when present its cached feeds are invalidated on every write.
func NewStudentService(repo studentRepository, goals studentGoalRepository, reminders *ReminderService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, goals: goals, reminders: reminders, validator: validate, logger: logger}
}

// List returns students matching the query plus pagination info.
func (s *StudentService) List(ctx context.Context, query dto.ListStudentsQuery) ([]models.Student, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid list query")
	}

	filter := models.StudentFilter{
		Search:    query.Search,
		School:    query.School,
		Archived:  query.Archived,
		Page:      query.Page,
		PageSize:  query.PageSize,
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
	}
	if query.Status != "" {
		status := models.StudentStatus(query.Status)
		filter.Status = &status
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	pagination := models.NewPagination(page, size, total)
	return students, &pagination, nil
}

// Get returns one student by ID.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch student")
	}
	return student, nil
}

// Goals returns the goals recorded for one student.
func (s *StudentService) Goals(ctx context.Context, id string) ([]models.Goal, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	goals, err := s.goals.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list goals")
	}
	return goals, nil
}

// Create adds a student to the caseload.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := &models.Student{
		FullName: req.FullName,
		Grade:    req.Grade,
		School:   req.School,
		Status:   models.StudentStatusActive,
	}
	student.FrequencyPerWeek = req.FrequencyPerWeek
	if req.FrequencyType != nil {
		ft := models.FrequencyType(*req.FrequencyType)
		student.FrequencyType = &ft
	}
	if req.AnnualReviewDate != nil {
		reviewDate, err := time.Parse("2006-01-02", *req.AnnualReviewDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid annual review date")
		}
		student.AnnualReviewDate = &reviewDate
	}

	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.invalidate(ctx)
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update edits a student, applying only the fields present in the request.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Grade != nil {
		student.Grade = *req.Grade
	}
	if req.School != nil {
		student.School = *req.School
	}
	if req.Status != nil {
		student.Status = models.StudentStatus(*req.Status)
	}
	if req.FrequencyPerWeek != nil {
		student.FrequencyPerWeek = req.FrequencyPerWeek
	}
	if req.FrequencyType != nil {
		ft := models.FrequencyType(*req.FrequencyType)
		student.FrequencyType = &ft
	}
	if req.AnnualReviewDate != nil {
		reviewDate, err := time.Parse("2006-01-02", *req.AnnualReviewDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid annual review date")
		}
		student.AnnualReviewDate = &reviewDate
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.invalidate(ctx)
	return student, nil
}

// Archive removes a student from active derivations.
func (s *StudentService) Archive(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Archive(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive student")
	}
	s.invalidate(ctx)
	s.logger.Info("student archived", zap.String("student_id", id))
	return nil
}

func (s *StudentService) invalidate(ctx context.Context) {
	if s.reminders != nil {
		s.reminders.Invalidate(ctx)
	}
}
