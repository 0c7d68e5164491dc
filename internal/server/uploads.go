// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/pdiddy/engagement-letters/internal/rollover"
)

// upload is one file of a multipart request.
type upload struct {
	// Name is the sanitized base filename.
	Name   string
	header *multipart.FileHeader
}

// workspace is a per-request scratch directory under paths.processing_dir.
type workspace struct {
	dir string
}

func (s *Server) newWorkspace() (*workspace, error) {
	dir := filepath.Join(s.Config.Paths.ProcessingDir, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating processing directory: %w", err)
	}
	return &workspace{dir: dir}, nil
}

// path returns where the index-th upload is saved. Each upload gets its own
// subdirectory so two uploads with the same name do not collide.
func (ws *workspace) path(index int, name string) string {
	return filepath.Join(ws.dir, strconv.Itoa(index), name)
}

// save copies u into the workspace and returns the saved path.
func (ws *workspace) save(index int, u upload) (string, error) {
	dst := ws.path(index, u.Name)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("saving %s: %w", u.Name, err)
	}
	src, err := u.header.Open()
	if err != nil {
		return "", fmt.Errorf("opening upload %s: %w", u.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("saving %s: %w", u.Name, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return "", fmt.Errorf("saving %s: %w", u.Name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("saving %s: %w", u.Name, err)
	}
	return dst, nil
}

func (ws *workspace) remove() error {
	return os.RemoveAll(ws.dir)
}

// readUploads parses the multipart body and returns the files posted under
// field, with sanitized names.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request, field string) ([]upload, error) {
	limit := s.Config.Server.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUpload
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, fmt.Errorf("no files were uploaded in %q", field)
	}
	out := make([]upload, len(headers))
	for i, h := range headers {
		name := rollover.SanitizeFilename(filepath.Base(h.Filename))
		if name == "" {
			name = fmt.Sprintf("upload-%d", i+1)
		}
		out[i] = upload{Name: name, header: h}
	}
	return out, nil
}
