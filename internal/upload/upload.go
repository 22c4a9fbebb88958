// Package upload stores user-submitted files on disk with content sniffing.
package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"studentportal/internal/shared"
)

// Saver writes validated uploads beneath a root directory.
type Saver struct {
	cfg shared.UploadConfig
}

// NewSaver creates a new upload Saver instance
func NewSaver(cfg shared.UploadConfig) *Saver {
	return &Saver{cfg: cfg}
}

// Result describes a stored file.
type Result struct {
	Path     string `json:"path"` // relative to the upload root
	MIME     string `json:"mime"`
	Size     int64  `json:"size"`
	Original string `json:"original_name"`
}

// Save validates and stores the upload under <root>/<category>/. The MIME
// type comes from sniffing the content, never from the client-supplied
// filename or header. Files over the size limit or outside the MIME
// allow-list are rejected.
func (s *Saver) Save(ctx context.Context, r io.Reader, originalName, category string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if category == "" {
		return nil, shared.NewValidationError("upload category is required")
	}

	// Cap the read one byte past the limit so oversize detection is exact
	// without buffering an unbounded body.
	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, shared.NewValidationError("file exceeds the %d byte limit", s.cfg.MaxBytes)
	}
	if len(data) == 0 {
		return nil, shared.NewValidationError("uploaded file is empty")
	}

	mtype := mimetype.Detect(data)
	if !s.allowed(mtype) {
		return nil, shared.NewValidationError("file type %s is not allowed", mtype.String())
	}

	dir := filepath.Join(s.cfg.RootDir, category)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	return &Result{
		Path:     filepath.Join(category, name),
		MIME:     mtype.String(),
		Size:     int64(len(data)),
		Original: originalName,
	}, nil
}

// allowed checks the sniffed type against the allow-list, walking parents so
// "text/plain; charset=utf-8" style variants still match.
func (s *Saver) allowed(mtype *mimetype.MIME) bool {
	for _, want := range s.cfg.AllowedMIME {
		for m := mtype; m != nil; m = m.Parent() {
			if m.Is(want) {
				return true
			}
		}
	}
	return false
}

// Open returns a reader for a previously stored file. The relative path is
// resolved under the root and must not escape it.
func (s *Saver) Open(relPath string) (*os.File, error) {
	full := filepath.Join(s.cfg.RootDir, filepath.Clean("/"+relPath))
	f, err := os.Open(full)
	if os.IsNotExist(err) {
		return nil, &shared.NotFoundError{Resource: "file", ID: relPath}
	}
	return f, err
}
