package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentportal/internal/grade"
	"studentportal/internal/server/util"
	"studentportal/internal/shared"
)

// GradeHandler exposes grade entry and reporting endpoints.
type GradeHandler struct {
	Grades *grade.Service
}

// CreateGradeRequest mirrors the expected JSON input for POST /grades
type CreateGradeRequest struct {
	StudentID     string   `json:"student_id" validate:"required"`
	CourseID      string   `json:"course_id" validate:"required"`
	AssignmentID  string   `json:"assignment_id"`
	MarksEarned   *float64 `json:"marks_earned" validate:"omitempty,gte=0"`
	MarksPossible *float64 `json:"marks_possible" validate:"omitempty,gt=0"`
	Remarks       string   `json:"remarks" validate:"max=1000"`
}

// UpdateGradeRequest mirrors the expected JSON input for PUT /grades/{id}
type UpdateGradeRequest struct {
	MarksEarned   *float64 `json:"marks_earned" validate:"omitempty,gte=0"`
	MarksPossible *float64 `json:"marks_possible" validate:"omitempty,gt=0"`
	Remarks       *string  `json:"remarks" validate:"omitempty,max=1000"`
	IsFinal       *bool    `json:"is_final"`
}

func requireGrader(w http.ResponseWriter, user *shared.User) bool {
	if user.Role != shared.RoleTeacher && user.Role != shared.RoleAdmin {
		util.WriteJSONError(w, http.StatusForbidden, "only teachers and admins can manage grades")
		return false
	}
	return true
}

// Create handles POST /grades
func (h *GradeHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	if !requireGrader(w, user) {
		return
	}

	var req CreateGradeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.Grades.Create(r.Context(), grade.CreateInput{
		StudentID:     req.StudentID,
		CourseID:      req.CourseID,
		AssignmentID:  req.AssignmentID,
		MarksEarned:   req.MarksEarned,
		MarksPossible: req.MarksPossible,
		Remarks:       req.Remarks,
	}, user.ID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, rec)
}

// Update handles PUT /grades/{id}
func (h *GradeHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	if !requireGrader(w, user) {
		return
	}

	var req UpdateGradeRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	rec, err := h.Grades.Update(r.Context(), chi.URLParam(r, "id"), grade.UpdateInput{
		MarksEarned:   req.MarksEarned,
		MarksPossible: req.MarksPossible,
		Remarks:       req.Remarks,
		IsFinal:       req.IsFinal,
	}, user.ID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, rec)
}

// MarkIncomplete handles POST /grades/{id}/incomplete
func (h *GradeHandler) MarkIncomplete(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Grades.MarkIncomplete(r.Context(), chi.URLParam(r, "id"), util.CurrentUser(r))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, rec)
}

// MyGrades handles GET /grades
func (h *GradeHandler) MyGrades(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	page, limit := pageParams(r)

	records, pagination, err := h.Grades.StudentGrades(r.Context(), user.ID, page, limit)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"grades":     records,
		"pagination": pagination,
	})
}

// StudentGrades handles GET /grades/student/{id}
func (h *GradeHandler) StudentGrades(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	if !requireGrader(w, user) {
		return
	}
	page, limit := pageParams(r)

	records, pagination, err := h.Grades.StudentGrades(r.Context(), chi.URLParam(r, "id"), page, limit)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"grades":     records,
		"pagination": pagination,
	})
}

// CourseGrades handles GET /grades/course/{id}
func (h *GradeHandler) CourseGrades(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	if !requireGrader(w, user) {
		return
	}

	records, err := h.Grades.CourseGrades(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, records)
}

// CourseStats handles GET /grades/course/{id}/stats
func (h *GradeHandler) CourseStats(w http.ResponseWriter, r *http.Request) {
	user := util.CurrentUser(r)
	if !requireGrader(w, user) {
		return
	}

	result, err := h.Grades.CourseStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, result)
}
