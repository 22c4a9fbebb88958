// Package auth implements authentication: registration, login, server-side
// session revocation, and token validation.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"studentportal/internal/shared"
)

// Service handles authentication against the users and sessions collections.
type Service struct {
	config      *shared.Config
	usersCol    *mongo.Collection
	sessionsCol *mongo.Collection
}

// NewService creates a new auth Service instance
func NewService(db *mongo.Database, config *shared.Config) *Service {
	return &Service{
		config:      config,
		usersCol:    db.Collection("users"),
		sessionsCol: db.Collection("sessions"),
	}
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	Role      string
	StudentID string
	FullName  string
}

// LoginResult bundles the issued token with the authenticated user.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *shared.User `json:"user"`
}

// Register creates a new user account. New accounts default to the student
// role unless the input names another valid one.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*shared.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, shared.NewValidationError("username, email and password are required")
	}
	if len(in.Password) < 8 {
		return nil, shared.NewValidationError("password must be at least 8 characters")
	}

	role := in.Role
	if role == "" {
		role = shared.RoleStudent
	}
	if !shared.IsValidRole(role) {
		return nil, shared.NewValidationError("invalid role: %s", role)
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(in.Email))

	// Reject duplicate username/email up front. The unique indexes on the
	// collection still back this up against races.
	count, err := s.usersCol.CountDocuments(queryCtx, bson.M{
		"$or": []bson.M{{"email": email}, {"username": in.Username}},
	})
	if err != nil {
		return nil, fmt.Errorf("checking existing users: %w", err)
	}
	if count > 0 {
		return nil, &shared.ConflictError{Message: "username or email already in use"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.config.Security.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := shared.User{
		ID:           shared.GenerateID("USR"),
		Username:     in.Username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		StudentID:    in.StudentID,
		Profile:      shared.Profile{FullName: in.FullName},
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if _, err := s.usersCol.InsertOne(queryCtx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &shared.ConflictError{Message: "username or email already in use"}
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return &user, nil
}

// Login authenticates a user and returns a JWT
func (s *Service) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, shared.NewValidationError("identifier and password are required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 1. Find User (by email, username, or student ID)
	var user shared.User
	filter := bson.M{
		"$or": []bson.M{
			{"email": strings.ToLower(identifier)},
			{"username": identifier},
			{"student_id": identifier},
		},
	}

	err := s.usersCol.FindOne(queryCtx, filter).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, &shared.AuthenticationError{Message: "invalid credentials"}
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	// 2. Check Password (BCrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &shared.AuthenticationError{Message: "invalid credentials"}
	}

	if !user.IsActive {
		return nil, &shared.AuthorizationError{Message: "account is inactive"}
	}

	// 3. Generate JWT
	tokenString, expiresAt, err := GenerateToken(s.config.Security, user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	// 4. Create Session in DB (allows for server-side logout/revocation)
	session := shared.Session{
		ID:        shared.GenerateID("sess"),
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}

	if _, err := s.sessionsCol.InsertOne(queryCtx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &LoginResult{Token: tokenString, ExpiresAt: expiresAt, User: &user}, nil
}

// Logout invalidates the user's session. Logging out an already revoked or
// unknown token is still a success.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return shared.NewValidationError("token is required")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// DeleteMany keeps logout idempotent even if duplicate sessions exist.
	if _, err := s.sessionsCol.DeleteMany(queryCtx, bson.M{"token": token}); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ValidateToken checks signature, revocation, and account status, and returns
// the authenticated user.
func (s *Service) ValidateToken(ctx context.Context, token string) (*shared.User, error) {
	if token == "" {
		return nil, &shared.AuthenticationError{Message: "token missing"}
	}

	// 1. Parse and verify signature locally
	claims, err := ParseToken(s.config.Security, token)
	if err != nil {
		return nil, &shared.AuthenticationError{Message: "invalid token"}
	}

	queryCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 2. Check database for an active session (revocation check)
	count, err := s.sessionsCol.CountDocuments(queryCtx, bson.M{"token": token})
	if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}
	if count == 0 {
		return nil, &shared.AuthenticationError{Message: "session expired or revoked"}
	}

	// 3. Fetch user details
	var user shared.User
	err = s.usersCol.FindOne(queryCtx, bson.M{"_id": claims.UserID}).Decode(&user)
	if err != nil {
		return nil, &shared.AuthenticationError{Message: "user not found"}
	}

	if !user.IsActive {
		return nil, &shared.AuthenticationError{Message: "account inactive"}
	}

	return &user, nil
}

// ChangePassword updates the user's password and force-logs-out all sessions.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if userID == "" || oldPassword == "" || newPassword == "" {
		return shared.NewValidationError("all fields required")
	}
	if len(newPassword) < 8 {
		return shared.NewValidationError("password must be at least 8 characters")
	}

	queryCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// 1. Fetch user
	var user shared.User
	err := s.usersCol.FindOne(queryCtx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		return &shared.NotFoundError{Resource: "user", ID: userID}
	}

	// 2. Verify old password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return &shared.AuthenticationError{Message: "incorrect old password"}
	}

	// 3. Hash new password
	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.Security.BCryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	// 4. Update DB
	_, err = s.usersCol.UpdateOne(queryCtx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{
			"password_hash": string(newHash),
			"updated_at":    time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	// 5. Invalidate existing sessions (force logout)
	_, _ = s.sessionsCol.DeleteMany(queryCtx, bson.M{"user_id": userID})

	return nil
}
