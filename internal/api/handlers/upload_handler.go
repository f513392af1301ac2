package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	middleware "github.com/markdave123-py/parley/internal/api/middlewares"
	"github.com/markdave123-py/parley/internal/core"
	"github.com/markdave123-py/parley/internal/core/conversation"
	"github.com/markdave123-py/parley/internal/models"
)

const contentPreviewLen = 500

type UploadHandler struct {
	store     *conversation.Store
	extractor core.Extractor
	maxBytes  int64
}

func NewUploadHandler(store *conversation.Store, extractor core.Extractor, maxBytes int64) *UploadHandler {
	return &UploadHandler{store: store, extractor: extractor, maxBytes: maxBytes}
}

type uploadResponse struct {
	Success        bool   `json:"success"`
	Filename       string `json:"filename"`
	ContentPreview string `json:"content_preview"`
	Size           int    `json:"size"`
}

// Upload extracts text from a multipart upload and attaches it to the
// conversation as both a file record and a file-type user message. The
// binary itself is gone by the time this returns.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := middleware.SessionID(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No file selected")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("File processing error: %v", err))
		return
	}

	record := h.extractor.Process(header.Filename, data)

	h.store.AppendFile(sessionID, record)
	h.store.AppendMessage(sessionID, models.RoleUser,
		fmt.Sprintf("Uploaded file: %s", record.Filename),
		models.MessageTypeFile,
		map[string]any{
			"filename":     record.Filename,
			"file_content": record.Content,
			"mime_type":    record.MimeType,
			"size":         record.Size,
		})

	preview := record.Content
	if len(preview) > contentPreviewLen {
		preview = preview[:contentPreviewLen] + "..."
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:        true,
		Filename:       record.Filename,
		ContentPreview: preview,
		Size:           record.Size,
	})
}
