package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"studentportal/internal/course"
	"studentportal/internal/server/util"
	"studentportal/internal/shared"
)

// CourseHandler exposes the course catalog and enrollment endpoints.
type CourseHandler struct {
	Courses *course.Service
}

// CreateCourseRequest mirrors the expected JSON input for POST /courses
type CreateCourseRequest struct {
	Code        string `json:"code" validate:"required,max=16"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Department  string `json:"department" validate:"max=100"`
	Semester    int32  `json:"semester" validate:"min=0,max=12"`
	Credits     int32  `json:"credits" validate:"required,min=1,max=10"`
	Schedule    string `json:"schedule" validate:"max=100"`
	Room        string `json:"room" validate:"max=50"`
}

// UpdateCourseRequest mirrors the expected JSON input for PUT /courses/{id}
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Department  *string `json:"department" validate:"omitempty,max=100"`
	Semester    *int32  `json:"semester" validate:"omitempty,min=0,max=12"`
	Credits     *int32  `json:"credits" validate:"omitempty,min=1,max=10"`
	Schedule    *string `json:"schedule" validate:"omitempty,max=100"`
	Room        *string `json:"room" validate:"omitempty,max=50"`
	IsActive    *bool   `json:"is_active"`
}

// List handles GET /courses
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	semester, _ := strconv.Atoi(q.Get("semester"))

	user := util.CurrentUser(r)
	filter := course.Filter{
		Department:      q.Get("department"),
		Semester:        int32(semester),
		Search:          q.Get("search"),
		IncludeInactive: user != nil && user.Role == shared.RoleAdmin && q.Get("include_inactive") == "true",
	}

	courses, err := h.Courses.List(r.Context(), filter)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, courses)
}

// Get handles GET /courses/{id}
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Courses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, c)
}

// Enroll handles POST /courses/{id}/enroll
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	if user.Role != shared.RoleStudent {
		util.WriteJSONError(w, http.StatusForbidden, "only students can enroll")
		return
	}

	if err := h.Courses.Enroll(r.Context(), chi.URLParam(r, "id"), user.ID); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "enrolled",
	})
}

// Materials handles GET /courses/{id}/materials
func (h *CourseHandler) Materials(w http.ResponseWriter, r *http.Request) {
	mats, err := h.Courses.Materials(r.Context(), chi.URLParam(r, "id"), util.CurrentUser(r))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, mats)
}

// Create handles POST /courses
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	if user.Role != shared.RoleTeacher && user.Role != shared.RoleAdmin {
		util.WriteJSONError(w, http.StatusForbidden, "only teachers and admins can create courses")
		return
	}

	var req CreateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.Courses.Create(r.Context(), course.CreateInput{
		Code:        req.Code,
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Semester:    req.Semester,
		Credits:     req.Credits,
		Schedule:    req.Schedule,
		Room:        req.Room,
	}, user.ID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, c)
}

// Update handles PUT /courses/{id}
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	id := chi.URLParam(r, "id")

	existing, err := h.Courses.Get(r.Context(), id)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	if user.Role != shared.RoleAdmin && existing.InstructorID != user.ID {
		util.WriteJSONError(w, http.StatusForbidden, "only the instructor or an admin can update a course")
		return
	}

	var req UpdateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	c, err := h.Courses.Update(r.Context(), id, course.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Department:  req.Department,
		Semester:    req.Semester,
		Credits:     req.Credits,
		Schedule:    req.Schedule,
		Room:        req.Room,
		IsActive:    req.IsActive,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, c)
}
