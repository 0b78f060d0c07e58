package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxUploadBytes = 5 << 20

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

type UploadResponse struct {
	URL string `json:"url"`
}

// handleUpload stores a checkpoint image under the data directory and
// returns the public URL it will be served from.
func handleUpload(dataDir string) http.HandlerFunc {
	uploadsDir := filepath.Join(dataDir, "uploads")

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		if !allowedImageExts[ext] {
			writeError(w, http.StatusBadRequest, "unsupported file type")
			return
		}

		if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		name := uuid.NewString() + ext
		dst, err := os.Create(filepath.Join(uploadsDir, name))
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		defer dst.Close()

		if _, err := io.Copy(dst, file); err != nil {
			os.Remove(dst.Name())
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, "file too large")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, UploadResponse{URL: "/uploads/" + name})
	}
}

func handleDeleteUpload(dataDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
			writeError(w, http.StatusBadRequest, "invalid file name")
			return
		}

		err := os.Remove(filepath.Join(dataDir, "uploads", name))
		if errors.Is(err, os.ErrNotExist) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
