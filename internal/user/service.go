// Package user implements profile access and the admin user management
// surface.
package user

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"studentportal/internal/shared"
)

// Service handles profile and user administration queries.
type Service struct {
	usersCol    *mongo.Collection
	coursesCol  *mongo.Collection
	gradesCol   *mongo.Collection
	sessionsCol *mongo.Collection
}

// NewService creates a new user Service instance
func NewService(db *mongo.Database) *Service {
	return &Service{
		usersCol:    db.Collection("users"),
		coursesCol:  db.Collection("courses"),
		gradesCol:   db.Collection("grades"),
		sessionsCol: db.Collection("sessions"),
	}
}

// ProfileView is a user together with enrollment and grade context.
type ProfileView struct {
	User         *shared.User         `json:"user"`
	Courses      []shared.Course      `json:"courses"`
	RecentGrades []shared.GradeRecord `json:"recent_grades"`
}

// ============================================================================
// Profile
// ============================================================================

// GetProfile returns the user with their enrolled courses and recent grades.
func (s *Service) GetProfile(ctx context.Context, userID string) (*ProfileView, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var user shared.User
	err := s.usersCol.FindOne(queryCtx, bson.M{"_id": userID}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, &shared.NotFoundError{Resource: "user", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	view := &ProfileView{User: &user, Courses: []shared.Course{}, RecentGrades: []shared.GradeRecord{}}

	cursor, err := s.coursesCol.Find(queryCtx, bson.M{"enrolled_students": userID, "is_active": true})
	if err != nil {
		return nil, fmt.Errorf("loading enrolled courses: %w", err)
	}
	if err := cursor.All(queryCtx, &view.Courses); err != nil {
		return nil, fmt.Errorf("decoding courses: %w", err)
	}

	gradeOpts := shared.BuildPageOptions(1, 10, "updated_at", -1)
	gradeCursor, err := s.gradesCol.Find(queryCtx, bson.M{"student_id": userID}, gradeOpts)
	if err != nil {
		return nil, fmt.Errorf("loading grades: %w", err)
	}
	if err := gradeCursor.All(queryCtx, &view.RecentGrades); err != nil {
		return nil, fmt.Errorf("decoding grades: %w", err)
	}

	return view, nil
}

// ProfileInput is the allow-listed payload for profile updates. Nil fields
// stay untouched; role, email, and password can never change through here.
type ProfileInput struct {
	FullName   *string
	Phone      *string
	Department *string
	YearLevel  *int32
	Bio        *string
}

// UpdateProfile applies an allow-listed profile update and returns the
// refreshed user.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*shared.User, error) {
	fields := profileFields(in)
	if len(fields) == 0 {
		return nil, shared.NewValidationError("no profile fields to update")
	}
	fields["updated_at"] = time.Now()

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := s.usersCol.UpdateOne(queryCtx, bson.M{"_id": userID}, bson.M{"$set": fields})
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, &shared.NotFoundError{Resource: "user", ID: userID}
	}

	var user shared.User
	if err := s.usersCol.FindOne(queryCtx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, fmt.Errorf("reloading user: %w", err)
	}
	return &user, nil
}

// profileFields maps the allow-listed input onto dotted profile paths so the
// update cannot touch anything outside the profile sub-document.
func profileFields(in ProfileInput) bson.M {
	fields := bson.M{}
	if in.FullName != nil {
		fields["profile.full_name"] = *in.FullName
	}
	if in.Phone != nil {
		fields["profile.phone"] = *in.Phone
	}
	if in.Department != nil {
		fields["profile.department"] = *in.Department
	}
	if in.YearLevel != nil {
		fields["profile.year_level"] = *in.YearLevel
	}
	if in.Bio != nil {
		fields["profile.bio"] = *in.Bio
	}
	return fields
}

// SetAvatar records the stored avatar path on the user's profile.
func (s *Service) SetAvatar(ctx context.Context, userID, path string) error {
	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := s.usersCol.UpdateOne(queryCtx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"profile.avatar_path": path, "updated_at": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("setting avatar: %w", err)
	}
	if res.MatchedCount == 0 {
		return &shared.NotFoundError{Resource: "user", ID: userID}
	}
	return nil
}

// ============================================================================
// Admin User Management
// ============================================================================

// ListFilter narrows the admin user listing.
type ListFilter struct {
	Role       string
	Search     string // matches username, email, or full name
	ActiveOnly bool
}

// ListUsers returns a page of users for the admin dashboard.
func (s *Service) ListUsers(ctx context.Context, filter ListFilter, page, limit int) ([]shared.User, *shared.Pagination, error) {
	if filter.Role != "" && !shared.IsValidRole(filter.Role) {
		return nil, nil, shared.NewValidationError("invalid role: %s", filter.Role)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.Search != "" {
		query["$or"] = []bson.M{
			{"username": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"email": bson.M{"$regex": filter.Search, "$options": "i"}},
			{"profile.full_name": bson.M{"$regex": filter.Search, "$options": "i"}},
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	total, err := shared.CountDocumentsWithTimeout(queryCtx, s.usersCol, query, 5*time.Second)
	if err != nil {
		return nil, nil, fmt.Errorf("counting users: %w", err)
	}

	cursor, err := s.usersCol.Find(queryCtx, query, shared.BuildPageOptions(page, limit, "created_at", -1))
	if err != nil {
		return nil, nil, fmt.Errorf("listing users: %w", err)
	}
	defer cursor.Close(queryCtx)

	users := []shared.User{}
	if err := cursor.All(queryCtx, &users); err != nil {
		return nil, nil, fmt.Errorf("decoding users: %w", err)
	}

	pagination := &shared.Pagination{
		Page:  page,
		Limit: limit,
		Total: total,
		Pages: shared.NumPages(total, limit),
	}
	return users, pagination, nil
}

// AdminUpdateInput is the allow-listed payload for admin user updates.
type AdminUpdateInput struct {
	Role      *string
	StudentID *string
	IsActive  *bool
	FullName  *string
}

// UpdateUser applies an admin-level update to a user account.
func (s *Service) UpdateUser(ctx context.Context, userID string, in AdminUpdateInput) (*shared.User, error) {
	fields := bson.M{"updated_at": time.Now()}
	if in.Role != nil {
		if !shared.IsValidRole(*in.Role) {
			return nil, shared.NewValidationError("invalid role: %s", *in.Role)
		}
		fields["role"] = *in.Role
	}
	if in.StudentID != nil {
		fields["student_id"] = *in.StudentID
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	if in.FullName != nil {
		fields["profile.full_name"] = *in.FullName
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	res, err := s.usersCol.UpdateOne(queryCtx, bson.M{"_id": userID}, bson.M{"$set": fields})
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, &shared.NotFoundError{Resource: "user", ID: userID}
	}

	// Deactivation revokes all sessions immediately.
	if in.IsActive != nil && !*in.IsActive {
		_, _ = s.sessionsCol.DeleteMany(queryCtx, bson.M{"user_id": userID})
	}

	var user shared.User
	if err := s.usersCol.FindOne(queryCtx, bson.M{"_id": userID}).Decode(&user); err != nil {
		return nil, fmt.Errorf("reloading user: %w", err)
	}
	return &user, nil
}

// DeactivateUser soft-deletes an account. Admins cannot deactivate
// themselves.
func (s *Service) DeactivateUser(ctx context.Context, userID, actorID string) error {
	if userID == actorID {
		return &shared.ConflictError{Message: "cannot deactivate your own account"}
	}

	inactive := false
	_, err := s.UpdateUser(ctx, userID, AdminUpdateInput{IsActive: &inactive})
	return err
}

// ============================================================================
// Stats
// ============================================================================

// Stats computes the admin dashboard counters.
func (s *Service) Stats(ctx context.Context) (*shared.UserStats, error) {
	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stats := &shared.UserStats{}

	var err error
	if stats.TotalUsers, err = s.usersCol.CountDocuments(queryCtx, bson.M{}); err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if stats.ActiveUsers, err = s.usersCol.CountDocuments(queryCtx, bson.M{"is_active": true}); err != nil {
		return nil, fmt.Errorf("counting active users: %w", err)
	}
	if stats.Students, err = s.usersCol.CountDocuments(queryCtx, bson.M{"role": shared.RoleStudent}); err != nil {
		return nil, fmt.Errorf("counting students: %w", err)
	}
	if stats.Teachers, err = s.usersCol.CountDocuments(queryCtx, bson.M{"role": shared.RoleTeacher}); err != nil {
		return nil, fmt.Errorf("counting teachers: %w", err)
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if stats.RecentSignups, err = s.usersCol.CountDocuments(queryCtx, bson.M{"created_at": bson.M{"$gte": weekAgo}}); err != nil {
		return nil, fmt.Errorf("counting recent signups: %w", err)
	}

	return stats, nil
}
