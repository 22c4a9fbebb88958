package handlers

import (
	"net/http"

	"studentportal/internal/auth"
	"studentportal/internal/server/util"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	Auth *auth.Service
}

// RegisterRequest mirrors the expected JSON input for /auth/register
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"omitempty,oneof=student teacher admin"`
	StudentID string `json:"student_id"`
	FullName  string `json:"full_name"`
}

// LoginRequest mirrors the expected JSON input for /auth/login
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// ChangePasswordRequest mirrors the expected JSON input for /auth/change-password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.Auth.Register(r.Context(), auth.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		StudentID: req.StudentID,
		FullName:  req.FullName,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.Auth.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, err := util.ExtractToken(r)
	if err != nil {
		// Logging out without a usable token is still a success; there is
		// nothing to revoke.
		util.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "logged out",
		})
		return
	}

	if err := h.Auth.Logout(r.Context(), token); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "logged out",
	})
}

// Validate handles GET /auth/validate
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	util.WriteJSON(w, http.StatusOK, user)
}

// ChangePassword handles POST /auth/change-password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)

	var req ChangePasswordRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if req.OldPassword == req.NewPassword {
		util.WriteJSONError(w, http.StatusBadRequest, "New password cannot be the same as the old password")
		return
	}

	if err := h.Auth.ChangePassword(r.Context(), user.ID, req.OldPassword, req.NewPassword); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "password changed, please log in again",
	})
}
