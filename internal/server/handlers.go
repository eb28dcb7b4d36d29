package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/jpfielding/dicometa/internal/repository"
	"github.com/jpfielding/dicometa/internal/service"
	"github.com/jpfielding/dicometa/pkg/dicom"
)

const (
	// multipart parts beyond this spill to temp files
	formMemory = 32 << 20

	defaultPageSize = 50
	maxPageSize     = 500
)

type handler struct {
	x         Extractor
	maxUpload int64
}

type errorResponse struct {
	Error string `json:"error"`
}

// ExtractFile handles POST /api/v1/files with one multipart "file" part
func (h *handler) ExtractFile(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.RemoveAll()

	parts := form.File["file"]
	if len(parts) != 1 {
		writeError(w, http.StatusBadRequest, "expected exactly one multipart field named file")
		return
	}
	data, err := readPart(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.x.ExtractFile(r.Context(), parts[0].Filename, data)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ExtractPackage handles POST /api/v1/packages with repeated "files" parts
func (h *handler) ExtractPackage(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}
	defer form.RemoveAll()

	parts := form.File["files"]
	if len(parts) == 0 {
		writeError(w, http.StatusBadRequest, "expected one or more multipart fields named files")
		return
	}
	files := make([]dicom.File, 0, len(parts))
	for _, p := range parts {
		data, err := readPart(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		files = append(files, dicom.File{Name: p.Filename, Data: data})
	}

	res, err := h.x.ExtractPackage(r.Context(), files)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	status := http.StatusCreated
	if res.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// GetPackage handles GET /api/v1/packages/{id}
func (h *handler) GetPackage(w http.ResponseWriter, r *http.Request) {
	res, err := h.x.GetPackage(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListPackages handles GET /api/v1/packages?limit=&offset=
func (h *handler) ListPackages(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil || limit <= 0 || limit > maxPageSize {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxPageSize))
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
		return
	}

	res, err := h.x.ListPackages(r.Context(), limit, offset)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) parseForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, bool) {
	if h.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}
	if err := r.ParseMultipartForm(formMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart upload: "+err.Error())
		return nil, false
	}
	return r.MultipartForm, true
}

func (h *handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "package not found")
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStoreDisabled):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	return data, nil
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
