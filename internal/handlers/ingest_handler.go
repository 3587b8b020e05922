package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

// maxUploadBytes caps multipart memory use; larger files spill to disk.
const maxUploadBytes = 32 << 20

// IngestHandler serves document uploads.
type IngestHandler struct {
	service interfaces.IngestionService
	logger  arbor.ILogger
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(service interfaces.IngestionService, logger arbor.ILogger) *IngestHandler {
	return &IngestHandler{
		service: service,
		logger:  logger,
	}
}

// IngestHandler handles POST /ingest. The request is multipart form data
// with a "file" part and a "document_type" field. A successful ingest
// replaces all previously indexed content.
func (h *IngestHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		WriteDetail(w, http.StatusBadRequest, "Request must be multipart form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteDetail(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	docType := models.DocumentType(r.FormValue("document_type"))
	if !docType.Valid() {
		WriteDetail(w, http.StatusBadRequest, fmt.Sprintf("Unsupported document type: %s", docType))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		WriteDetail(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	chunksCreated, err := h.service.Ingest(r.Context(), content, header.Filename, docType)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("filename", header.Filename).
			Str("document_type", string(docType)).
			Msg("Ingestion failed")
		WriteDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error processing file: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "success",
		"message":        fmt.Sprintf("Successfully ingested %s", header.Filename),
		"chunks_created": chunksCreated,
	})
}
