package handlers

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/eshaffer321/reconcile-backend/internal/api/dto"
	"github.com/eshaffer321/reconcile-backend/internal/api/middleware"
	"github.com/eshaffer321/reconcile-backend/internal/application/ingest"
	"github.com/eshaffer321/reconcile-backend/internal/domain/transaction"
	"github.com/eshaffer321/reconcile-backend/internal/infrastructure/storage"
)

// MaxUploadBytes caps the size of one CSV upload.
const MaxUploadBytes = 10 << 20

// BatchesHandler handles CSV uploads.
type BatchesHandler struct {
	*Base
	repo     storage.BatchRepository
	importer *ingest.Importer
}

// NewBatchesHandler creates a new batches handler.
func NewBatchesHandler(repo storage.BatchRepository, importer *ingest.Importer, logger *slog.Logger) *BatchesHandler {
	return &BatchesHandler{
		Base:     NewBase(logger),
		repo:     repo,
		importer: importer,
	}
}

// Upload handles POST /api/batches?kind=expense|sale.
// The CSV is either the "file" part of a multipart form or the raw body.
func (h *BatchesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	var (
		body     io.Reader
		filename = r.URL.Query().Get("filename")
		kindStr  = r.URL.Query().Get("kind")
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("invalid multipart upload"))
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, dto.BadRequestError("file is required"))
			return
		}
		defer func() { _ = file.Close() }()

		body = file
		if filename == "" {
			filename = header.Filename
		}
		if kindStr == "" {
			kindStr = r.FormValue("kind")
		}
	} else {
		body = r.Body
	}

	kind, err := transaction.ParseKind(kindStr)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}
	if filename == "" {
		filename = "upload.csv"
	}

	owner := middleware.OwnerFromContext(r.Context())
	batch, err := h.importer.Import(r.Context(), owner, filename, kind, body)
	switch {
	case err == nil:
		h.WriteJSON(w, http.StatusCreated, toBatchResponse(batch))
	case batch != nil && batch.Status == transaction.BatchFailed:
		h.WriteJSON(w, http.StatusUnprocessableEntity, toBatchResponse(batch))
	default:
		h.logger.Warn("batch upload failed", "owner_id", owner, "filename", filename, "error", err)
		h.WriteError(w, http.StatusServiceUnavailable, dto.UnavailableError())
	}
}

// List handles GET /api/batches - returns recent uploads.
func (h *BatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := ParseIntParam(r, "limit", 50)
	owner := middleware.OwnerFromContext(r.Context())

	batches, err := h.repo.ListBatches(r.Context(), owner, limit)
	if err != nil {
		h.logger.Warn("failed to list batches", "owner_id", owner, "error", err)
		h.WriteError(w, http.StatusServiceUnavailable, dto.UnavailableError())
		return
	}

	response := dto.BatchListResponse{
		Batches: make([]dto.BatchResponse, 0, len(batches)),
		Count:   len(batches),
	}
	for _, b := range batches {
		response.Batches = append(response.Batches, toBatchResponse(b))
	}

	h.WriteJSON(w, http.StatusOK, response)
}

func toBatchResponse(b *transaction.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:            b.ID,
		Filename:      b.Filename,
		Kind:          string(b.Kind),
		TotalRows:     b.TotalRows,
		ProcessedRows: b.ProcessedRows,
		Status:        string(b.Status),
		ErrorMessage:  b.ErrorMessage,
		UploadedAt:    b.UploadedAt.UTC().Format(time.RFC3339),
	}
}
