package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"studentportal/internal/contact"
	"studentportal/internal/server/util"
)

// ContactHandler exposes the contact form and its admin inbox.
type ContactHandler struct {
	Contact *contact.Service
}

// ContactRequest mirrors the expected JSON input for /contact
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=32"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// ReplyRequest mirrors the expected JSON input for /admin/contact/{id}/reply
type ReplyRequest struct {
	Message string `json:"message" validate:"required,max=5000"`
}

// Submit handles POST /contact
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.Contact.Submit(r.Context(), contact.SubmitInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	})
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, msg)
}

// List handles GET /admin/contact
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	status := r.URL.Query().Get("status")

	msgs, pagination, err := h.Contact.List(r.Context(), status, page, limit)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"messages":   msgs,
		"pagination": pagination,
	})
}

// MarkRead handles PATCH /admin/contact/{id}/read
func (h *ContactHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Contact.MarkRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, msg)
}

// Reply handles POST /admin/contact/{id}/reply
func (h *ContactHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.Contact.Reply(r.Context(), chi.URLParam(r, "id"), req.Message)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, msg)
}

// Archive handles PATCH /admin/contact/{id}/archive
func (h *ContactHandler) Archive(w http.ResponseWriter, r *http.Request) {
	msg, err := h.Contact.Archive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, msg)
}
