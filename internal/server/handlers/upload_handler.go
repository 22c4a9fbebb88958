package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"studentportal/internal/course"
	"studentportal/internal/server/util"
	"studentportal/internal/shared"
	"studentportal/internal/upload"
	"studentportal/internal/user"
)

// UploadHandler exposes file upload and download endpoints.
type UploadHandler struct {
	Saver   *upload.Saver
	Users   *user.Service
	Courses *course.Service
}

// openUploadedFile pulls the first file out of the multipart form.
func openUploadedFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (io.ReadCloser, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+4096)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return nil, "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		util.WriteJSONError(w, http.StatusBadRequest, "Missing file field: "+field)
		return nil, "", false
	}
	return file, header.Filename, true
}

// Avatar handles POST /users/me/avatar
func (h *UploadHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	actor := util.CurrentUser(r)

	file, name, ok := openUploadedFile(w, r, "avatar", 10<<20)
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.Saver.Save(r.Context(), file, name, "avatars")
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	if err := h.Users.SetAvatar(r.Context(), actor.ID, res.Path); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, res)
}

// Material handles POST /courses/{id}/materials
func (h *UploadHandler) Material(w http.ResponseWriter, r *http.Request) {
	actor := util.CurrentUser(r)
	courseID := chi.URLParam(r, "id")

	c, err := h.Courses.Get(r.Context(), courseID)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	if actor.Role != shared.RoleAdmin && c.InstructorID != actor.ID {
		util.WriteJSONError(w, http.StatusForbidden, "only the instructor or an admin can upload materials")
		return
	}

	file, name, ok := openUploadedFile(w, r, "file", 10<<20)
	if !ok {
		return
	}
	defer file.Close()

	res, err := h.Saver.Save(r.Context(), file, name, "materials")
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = name
	}
	if err := h.Courses.AttachMaterial(r.Context(), courseID, shared.Material{
		Title:      title,
		Type:       res.MIME,
		Path:       res.Path,
		UploadedAt: time.Now(),
	}); err != nil {
		util.HandleServiceError(w, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, res)
}

// Download handles GET /files/* for stored uploads.
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	relPath := chi.URLParam(r, "*")

	f, err := h.Saver.Open(relPath)
	if err != nil {
		util.HandleServiceError(w, err)
		return
	}
	defer f.Close()

	http.ServeContent(w, r, relPath, time.Time{}, f)
}
