package media

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"fmasite/internal/metrics"
	"fmasite/pkg/logger"
)

// MaxUploadSize bounds a multipart image upload.
const MaxUploadSize = 10 << 20

type Handler struct {
	Resolver *Resolver
}

func NewHandler(r *Resolver) *Handler {
	return &Handler{Resolver: r}
}

// ServeHTTP serves /api/media: GET lists the library, POST uploads the
// "file" form field and DELETE removes ?name=.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		files, err := h.Resolver.List(r.Context())
		if err != nil {
			logger.Sugar.Errorf("Handler: Failed to list media: %v", err)
			http.Error(w, "Failed to list media", http.StatusBadGateway)
			return
		}
		if files == nil {
			files = []File{}
		}
		writeJSON(w, http.StatusOK, files)
	case http.MethodPost:
		h.upload(w, r)
	case http.MethodDelete:
		err := h.Resolver.Delete(r.Context(), r.URL.Query().Get("name"))
		switch {
		case errors.Is(err, ErrInvalidName):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case err != nil:
			logger.Sugar.Errorf("Handler: Failed to delete media: %v", err)
			http.Error(w, "Failed to delete file", http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	url, err := h.Resolver.Upload(r.Context(), data)
	metrics.Uploads.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		var uerr *UploadError
		if errors.As(err, &uerr) && uerr.Op == "optimize" {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		logger.Sugar.Errorf("Handler: Upload failed: %v", err)
		http.Error(w, "Upload failed", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
