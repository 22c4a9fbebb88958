// ============================================================================
// internal/shared/models.go
// Shared data models and structs for MongoDB documents
// ============================================================================

package shared

import (
	"time"
)

// ============================================================================
// User Models
// ============================================================================

// Profile holds the editable profile sub-document of a user.
type Profile struct {
	FullName   string `bson:"full_name,omitempty" json:"full_name,omitempty"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	Department string `bson:"department,omitempty" json:"department,omitempty"`
	YearLevel  int32  `bson:"year_level,omitempty" json:"year_level,omitempty"`
	AvatarPath string `bson:"avatar_path,omitempty" json:"avatar_path,omitempty"`
	Bio        string `bson:"bio,omitempty" json:"bio,omitempty"`
}

// User represents a user account (student, teacher, or admin)
type User struct {
	ID           string    `bson:"_id" json:"id"`
	Username     string    `bson:"username" json:"username"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"` // Never expose in JSON
	Role         string    `bson:"role" json:"role"`       // student, teacher, admin
	StudentID    string    `bson:"student_id,omitempty" json:"student_id,omitempty"`
	Profile      Profile   `bson:"profile,omitempty" json:"profile"`
	IsActive     bool      `bson:"is_active" json:"is_active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Session represents an active user session (for JWT revocation)
type Session struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// IsExpired checks if a session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// ============================================================================
// Course Models
// ============================================================================

// Material represents a downloadable course resource
type Material struct {
	Title      string    `bson:"title" json:"title"`
	Type       string    `bson:"type,omitempty" json:"type,omitempty"`
	Path       string    `bson:"path" json:"path"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// Course represents a course offering.
// EnrolledStudents is a set of user IDs; membership is maintained with
// $addToSet so duplicates cannot appear even under concurrent enrollment.
type Course struct {
	ID               string     `bson:"_id" json:"id"`
	Code             string     `bson:"code" json:"code"`
	Title            string     `bson:"title" json:"title"`
	Description      string     `bson:"description,omitempty" json:"description,omitempty"`
	InstructorID     string     `bson:"instructor_id" json:"instructor_id"`
	Department       string     `bson:"department,omitempty" json:"department,omitempty"`
	Semester         int32      `bson:"semester" json:"semester"`
	Credits          int32      `bson:"credits" json:"credits"`
	Schedule         string     `bson:"schedule,omitempty" json:"schedule,omitempty"` // e.g., "MWF 9:00-10:00"
	Room             string     `bson:"room,omitempty" json:"room,omitempty"`
	Materials        []Material `bson:"materials,omitempty" json:"materials,omitempty"`
	EnrolledStudents []string   `bson:"enrolled_students" json:"enrolled_students"`
	IsActive         bool       `bson:"is_active" json:"is_active"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// HasStudent reports whether the user is already in the enrolled set.
func (c *Course) HasStudent(userID string) bool {
	for _, id := range c.EnrolledStudents {
		if id == userID {
			return true
		}
	}
	return false
}

// ============================================================================
// Grade Models
// ============================================================================

// GradeRecord represents a student's graded work for a course.
// MarksEarned/MarksPossible are pointers: absent means "not yet entered" and
// must never be coerced to zero. Percentage and LetterGrade are derived and
// recomputed on every write that touches the marks.
type GradeRecord struct {
	ID            string    `bson:"_id" json:"id"`
	StudentID     string    `bson:"student_id" json:"student_id"`
	CourseID      string    `bson:"course_id" json:"course_id"`
	AssignmentID  string    `bson:"assignment_id,omitempty" json:"assignment_id,omitempty"`
	MarksEarned   *float64  `bson:"marks_earned,omitempty" json:"marks_earned,omitempty"`
	MarksPossible *float64  `bson:"marks_possible,omitempty" json:"marks_possible,omitempty"`
	Percentage    *float64  `bson:"percentage,omitempty" json:"percentage,omitempty"`
	LetterGrade   string    `bson:"letter_grade,omitempty" json:"letter_grade,omitempty"`
	Remarks       string    `bson:"remarks,omitempty" json:"remarks,omitempty"`
	GradedBy      string    `bson:"graded_by,omitempty" json:"graded_by,omitempty"`
	IsFinal       bool      `bson:"is_final" json:"is_final"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ============================================================================
// Contact Models
// ============================================================================

// ContactMessage represents an inbound contact-form submission.
// Messages are never deleted; administrators archive them instead.
type ContactMessage struct {
	ID           string     `bson:"_id" json:"id"`
	Name         string     `bson:"name" json:"name"`
	Email        string     `bson:"email" json:"email"`
	Phone        string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Message      string     `bson:"message" json:"message"`
	Status       string     `bson:"status" json:"status"` // pending, read, replied, archived
	RepliedAt    *time.Time `bson:"replied_at,omitempty" json:"replied_at,omitempty"`
	ReplyMessage string     `bson:"reply_message,omitempty" json:"reply_message,omitempty"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// ============================================================================
// Admin / Response Models
// ============================================================================

// Pagination describes a page of a filtered listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// UserStats represents user statistics for the admin dashboard
type UserStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	Students      int64 `json:"students"`
	Teachers      int64 `json:"teachers"`
	RecentSignups int64 `json:"recent_signups"` // last 7 days
}

// CourseGradeStats summarizes the percentage distribution of a course's grades.
type CourseGradeStats struct {
	CourseID string         `json:"course_id"`
	Count    int            `json:"count"`
	Mean     float64        `json:"mean"`
	Median   float64        `json:"median"`
	StdDev   float64        `json:"std_dev"`
	Min      float64        `json:"min"`
	Max      float64        `json:"max"`
	ByLetter map[string]int `json:"by_letter"`
}

// ============================================================================
// Validation Constants
// ============================================================================

const (
	// User roles
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"

	// Letter grades (I is incomplete; only set by admin override)
	GradeAPlus  = "A+"
	GradeA      = "A"
	GradeAMinus = "A-"
	GradeBPlus  = "B+"
	GradeB      = "B"
	GradeBMinus = "B-"
	GradeCPlus  = "C+"
	GradeC      = "C"
	GradeCMinus = "C-"
	GradeD      = "D"
	GradeF      = "F"
	GradeI      = "I"

	// Contact message statuses
	ContactPending  = "pending"
	ContactRead     = "read"
	ContactReplied  = "replied"
	ContactArchived = "archived"
)

// IsValidRole checks if user role is valid
func IsValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// IsValidLetterGrade checks if a letter grade is valid according to schema
func IsValidLetterGrade(grade string) bool {
	switch grade {
	case GradeAPlus, GradeA, GradeAMinus,
		GradeBPlus, GradeB, GradeBMinus,
		GradeCPlus, GradeC, GradeCMinus,
		GradeD, GradeF, GradeI:
		return true
	}
	return false
}

// IsValidContactStatus checks if a contact message status is valid
func IsValidContactStatus(status string) bool {
	switch status {
	case ContactPending, ContactRead, ContactReplied, ContactArchived:
		return true
	}
	return false
}
