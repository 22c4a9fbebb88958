package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentportal/internal/server/util"
	"studentportal/internal/user"
)

// UserHandler exposes profile and admin user management endpoints.
type UserHandler struct {
	Users *user.Service
}

// UpdateProfileRequest mirrors the expected JSON input for PUT /users/me
type UpdateProfileRequest struct {
	FullName   *string `json:"full_name" validate:"omitempty,max=120"`
	Phone      *string `json:"phone" validate:"omitempty,max=32"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	YearLevel  *int32  `json:"year_level" validate:"omitempty,min=1,max=10"`
	Bio        *string `json:"bio" validate:"omitempty,max=2000"`
}

// AdminUpdateUserRequest mirrors the expected JSON input for PUT /admin/users/{id}
type AdminUpdateUserRequest struct {
	Role      *string `json:"role" validate:"omitempty,oneof=student teacher admin"`
	StudentID *string `json:"student_id"`
	IsActive  *bool   `json:"is_active"`
	FullName  *string `json:"full_name" validate:"omitempty,max=120"`
}

// Me handles GET /users/me
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	view, err := h.Users.GetProfile(r.Context(), util.CurrentUser(r).ID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, view)
}

// UpdateMe handles PUT /users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.Users.UpdateProfile(r.Context(), util.CurrentUser(r).ID, user.ProfileInput{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Department: req.Department,
		YearLevel:  req.YearLevel,
		Bio:        req.Bio,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, updated)
}

// List handles GET /admin/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	users, pagination, err := h.Users.ListUsers(r.Context(), user.ListFilter{
		Role:       q.Get("role"),
		Search:     q.Get("search"),
		ActiveOnly: q.Get("active_only") == "true",
	}, page, limit)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"users":      users,
		"pagination": pagination,
	})
}

// Update handles PUT /admin/users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req AdminUpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.Users.UpdateUser(r.Context(), chi.URLParam(r, "id"), user.AdminUpdateInput{
		Role:      req.Role,
		StudentID: req.StudentID,
		IsActive:  req.IsActive,
		FullName:  req.FullName,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, updated)
}

// Deactivate handles DELETE /admin/users/{id}
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor := util.CurrentUser(r)

	if err := h.Users.DeactivateUser(r.Context(), chi.URLParam(r, "id"), actor.ID); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "user deactivated",
	})
}

// Stats handles GET /admin/users/stats
func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Users.Stats(r.Context())
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, stats)
}

// RequireRole guards a route subtree behind a role.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := util.CurrentUser(r)
			if u == nil || u.Role != role {
				util.WriteJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
