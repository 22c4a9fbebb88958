package grade

import (
	"context"
	"fmt"
	"time"

	"studentportal/internal/shared"
)

// Store is the persistence collaborator for grade records.
type Store interface {
	Insert(ctx context.Context, rec *shared.GradeRecord) error
	FindByID(ctx context.Context, id string) (*shared.GradeRecord, error)
	Update(ctx context.Context, rec *shared.GradeRecord) error
	FindByStudent(ctx context.Context, studentID string, page, limit int) ([]shared.GradeRecord, int64, error)
	FindByCourse(ctx context.Context, courseID string) ([]shared.GradeRecord, error)
}

// Service handles grade entry and reporting.
type Service struct {
	store Store
}

// NewService creates a new grade Service instance
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput is the payload for entering a new grade record.
type CreateInput struct {
	StudentID     string
	CourseID      string
	AssignmentID  string
	MarksEarned   *float64
	MarksPossible *float64
	Remarks       string
}

// Create enters a grade record. Percentage and letter grade are derived from
// the marks before the record is persisted; records with no marks yet are
// stored with both derived values unset.
func (s *Service) Create(ctx context.Context, in CreateInput, gradedBy string) (*shared.GradeRecord, error) {
	if in.StudentID == "" || in.CourseID == "" {
		return nil, shared.NewValidationError("student_id and course_id are required")
	}

	rec := &shared.GradeRecord{
		ID:            shared.GenerateID("GRD"),
		StudentID:     in.StudentID,
		CourseID:      in.CourseID,
		AssignmentID:  in.AssignmentID,
		MarksEarned:   in.MarksEarned,
		MarksPossible: in.MarksPossible,
		Remarks:       in.Remarks,
		GradedBy:      gradedBy,
		CreatedAt:     time.Now(),
	}

	if err := Recompute(rec); err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating grade record: %w", err)
	}
	return rec, nil
}

// UpdateInput is the allow-listed payload for grade updates.
type UpdateInput struct {
	MarksEarned   *float64
	MarksPossible *float64
	Remarks       *string
	IsFinal       *bool
}

// Update modifies a grade record and re-derives percentage and letter grade.
// Finalized records reject all mutation.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput, gradedBy string) (*shared.GradeRecord, error) {
	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.IsFinal {
		return nil, &shared.ConflictError{Message: "grade record is finalized"}
	}

	if in.MarksEarned != nil {
		rec.MarksEarned = in.MarksEarned
	}
	if in.MarksPossible != nil {
		rec.MarksPossible = in.MarksPossible
	}
	if in.Remarks != nil {
		rec.Remarks = *in.Remarks
	}
	if in.IsFinal != nil {
		rec.IsFinal = *in.IsFinal
	}
	rec.GradedBy = gradedBy
	rec.UpdatedAt = time.Now()

	if err := Recompute(rec); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("updating grade record: %w", err)
	}
	return rec, nil
}

// MarkIncomplete overrides a record's letter grade to incomplete. Only admins
// may do this; it is the one path that sets a letter the marks do not derive.
func (s *Service) MarkIncomplete(ctx context.Context, id string, actor *shared.User) (*shared.GradeRecord, error) {
	if actor.Role != shared.RoleAdmin {
		return nil, &shared.AuthorizationError{Message: "only admins may mark a grade incomplete"}
	}

	rec, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.IsFinal {
		return nil, &shared.ConflictError{Message: "grade record is finalized"}
	}

	rec.LetterGrade = shared.GradeI
	rec.Percentage = nil
	rec.GradedBy = actor.ID
	rec.UpdatedAt = time.Now()

	if err := s.store.Update(ctx, rec); err != nil {
		return nil, fmt.Errorf("marking grade incomplete: %w", err)
	}
	return rec, nil
}

// StudentGrades returns a student's grade records, most recently updated
// first.
func (s *Service) StudentGrades(ctx context.Context, studentID string, page, limit int) ([]shared.GradeRecord, *shared.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, total, err := s.store.FindByStudent(ctx, studentID, page, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("listing student grades: %w", err)
	}

	pagination := &shared.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: shared.NumPages(total, limit),
	}
	return records, pagination, nil
}

// CourseGrades returns every grade record for a course.
func (s *Service) CourseGrades(ctx context.Context, courseID string) ([]shared.GradeRecord, error) {
	records, err := s.store.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("listing course grades: %w", err)
	}
	return records, nil
}

// CourseStats summarizes the percentage distribution of a course's graded
// records.
func (s *Service) CourseStats(ctx context.Context, courseID string) (*shared.CourseGradeStats, error) {
	records, err := s.store.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("loading course grades: %w", err)
	}
	return ComputeStats(courseID, records)
}
