package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"placement/internal/document"
)

// maxUploadBytes caps multipart uploads held in memory.
const maxUploadBytes = 32 << 20

// DocumentHandler exposes document metadata plus the raw binary payload.
// Uploads arrive as multipart form data under the "file" field.
type DocumentHandler struct {
	Svc *document.Service
}

type documentDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

func toDocumentDTO(m *document.Metadata) documentDTO {
	return documentDTO{
		ID:          m.ID,
		Name:        m.Name,
		Size:        m.Size,
		ContentType: m.ContentType,
		CreatedAt:   m.CreatedAt,
	}
}

func (h *DocumentHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, document.ErrValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, document.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, document.ErrNameTaken):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

var documentSortFields = map[string]string{
	"name":         "name",
	"size":         "size",
	"content_type": "content_type",
	"created_at":   "created_at",
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, limit, err := pageParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	sort, err := parseSort(r, documentSortFields, "name")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	items, total, err := h.Svc.List(r.Context(), document.Query{
		Page:  page,
		Limit: limit,
		Sort:  sort.Field,
		Desc:  sort.Desc,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	dtos := make([]documentDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toDocumentDTO(&items[i]))
	}
	writePage(w, dtos, page, limit, total)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "documentID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(m))
}

// GetData streams the stored payload as an attachment.
func (h *DocumentHandler) GetData(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "documentID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, content, err := h.Svc.GetData(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", m.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// readUpload pulls the "file" part out of a multipart request. Returns the
// bytes, the client-supplied filename and content type.
func readUpload(r *http.Request) ([]byte, string, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", "", fmt.Errorf("invalid multipart body: %w", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", "", errors.New("missing file part")
	}
	defer file.Close()
	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("reading upload: %w", err)
	}
	ct := header.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return content, header.Filename, ct, nil
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	content, name, contentType, err := readUpload(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if n := r.FormValue("name"); n != "" {
		name = n
	}
	m, err := h.Svc.Create(r.Context(), name, contentType, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentDTO(m))
}

// Update modifies metadata and optionally replaces the payload. All parts are
// optional: a "file" part swaps the content, "name" and "content_type" form
// fields rename and retype.
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "documentID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid multipart body")
		return
	}
	var content []byte
	var uploadType string
	if file, header, err := r.FormFile("file"); err == nil {
		content, err = io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "reading upload")
			return
		}
		uploadType = header.Header.Get("Content-Type")
	}
	var name, contentType *string
	if n := r.FormValue("name"); n != "" {
		name = &n
	}
	if ct := r.FormValue("content_type"); ct != "" {
		contentType = &ct
	} else if uploadType != "" {
		contentType = &uploadType
	}
	m, err := h.Svc.Modify(r.Context(), id, name, contentType, content)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDocumentDTO(m))
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "documentID")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
