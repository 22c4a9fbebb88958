// Package course implements the catalog and the enrolled-set mutation.
package course

import (
	"context"
	"fmt"
	"time"

	"studentportal/internal/shared"
)

// Filter narrows catalog listings.
type Filter struct {
	Department      string
	Semester        int32 // 0 means any
	Search          string
	IncludeInactive bool
}

// Store is the persistence collaborator for courses. AddStudent must be an
// atomic add-if-absent so the enrolled-set uniqueness invariant holds under
// concurrent enrollment (the Mongo implementation uses $addToSet).
type Store interface {
	Find(ctx context.Context, filter Filter) ([]shared.Course, error)
	FindByID(ctx context.Context, id string) (*shared.Course, error)
	Insert(ctx context.Context, c *shared.Course) error
	UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error
	AddStudent(ctx context.Context, courseID, userID string) error
	AddMaterial(ctx context.Context, courseID string, m shared.Material) error
}

// Service handles course catalog queries and enrollment.
type Service struct {
	store Store
}

// NewService creates a new course Service instance
func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns active courses matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]shared.Course, error) {
	courses, err := s.store.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing courses: %w", err)
	}
	return courses, nil
}

// Get returns a single course by id.
func (s *Service) Get(ctx context.Context, id string) (*shared.Course, error) {
	return s.store.FindByID(ctx, id)
}

// Enroll adds the user to the course's enrolled set. Enrolling an already
// enrolled user is an idempotent success; the set never holds duplicates.
func (s *Service) Enroll(ctx context.Context, courseID, userID string) error {
	course, err := s.store.FindByID(ctx, courseID)
	if err != nil {
		return err
	}
	if !course.IsActive {
		return &shared.NotFoundError{Resource: "course", ID: courseID}
	}

	if course.HasStudent(userID) {
		return nil
	}

	if err := s.store.AddStudent(ctx, courseID, userID); err != nil {
		return fmt.Errorf("enrolling user %s in course %s: %w", userID, courseID, err)
	}
	return nil
}

// Materials returns a course's materials. Only enrolled students, the
// instructor, and admins may access them.
func (s *Service) Materials(ctx context.Context, courseID string, user *shared.User) ([]shared.Material, error) {
	course, err := s.store.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	allowed := user.Role == shared.RoleAdmin ||
		course.InstructorID == user.ID ||
		course.HasStudent(user.ID)
	if !allowed {
		return nil, &shared.AuthorizationError{Message: "not authorized to access course materials"}
	}

	if course.Materials == nil {
		return []shared.Material{}, nil
	}
	return course.Materials, nil
}

// AttachMaterial appends an uploaded material to the course.
func (s *Service) AttachMaterial(ctx context.Context, courseID string, m shared.Material) error {
	if _, err := s.store.FindByID(ctx, courseID); err != nil {
		return err
	}
	if err := s.store.AddMaterial(ctx, courseID, m); err != nil {
		return fmt.Errorf("attaching material: %w", err)
	}
	return nil
}

// CreateInput is the allow-listed payload for course creation.
type CreateInput struct {
	Code        string
	Title       string
	Description string
	Department  string
	Semester    int32
	Credits     int32
	Schedule    string
	Room        string
}

// Create inserts a new course owned by the given instructor.
func (s *Service) Create(ctx context.Context, in CreateInput, instructorID string) (*shared.Course, error) {
	if in.Code == "" || in.Title == "" {
		return nil, shared.NewValidationError("code and title are required")
	}
	if in.Credits < 1 {
		return nil, shared.NewValidationError("credits must be at least 1")
	}

	now := time.Now()
	course := &shared.Course{
		ID:               shared.GenerateID("CRS"),
		Code:             in.Code,
		Title:            in.Title,
		Description:      in.Description,
		InstructorID:     instructorID,
		Department:       in.Department,
		Semester:         in.Semester,
		Credits:          in.Credits,
		Schedule:         in.Schedule,
		Room:             in.Room,
		EnrolledStudents: []string{},
		IsActive:         true,
		CreatedAt:        now,
	}

	if err := s.store.Insert(ctx, course); err != nil {
		return nil, fmt.Errorf("creating course: %w", err)
	}
	return course, nil
}

// UpdateInput is the allow-listed payload for course updates. Nil fields are
// left untouched; the enrolled set is never writable through updates.
type UpdateInput struct {
	Title       *string
	Description *string
	Department  *string
	Semester    *int32
	Credits     *int32
	Schedule    *string
	Room        *string
	IsActive    *bool
}

// Update applies an allow-listed update to a course.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*shared.Course, error) {
	if _, err := s.store.FindByID(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"updated_at": time.Now()}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Department != nil {
		fields["department"] = *in.Department
	}
	if in.Semester != nil {
		fields["semester"] = *in.Semester
	}
	if in.Credits != nil {
		if *in.Credits < 1 {
			return nil, shared.NewValidationError("credits must be at least 1")
		}
		fields["credits"] = *in.Credits
	}
	if in.Schedule != nil {
		fields["schedule"] = *in.Schedule
	}
	if in.Room != nil {
		fields["room"] = *in.Room
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}

	if err := s.store.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("updating course: %w", err)
	}
	return s.store.FindByID(ctx, id)
}
