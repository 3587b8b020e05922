package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

// QueryRequest is the POST /query request body.
type QueryRequest struct {
	Question string `json:"question" validate:"required"`
}

// QueryResponse is the POST /query success body. Sources are in
// retrieval order, best match first.
type QueryResponse struct {
	Answer  string          `json:"answer"`
	Sources []models.Source `json:"sources"`
}

// QueryHandler serves question answering over the indexed content.
type QueryHandler struct {
	pipeline interfaces.RagPipeline
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(pipeline interfaces.RagPipeline, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		pipeline: pipeline,
		validate: validator.New(),
		logger:   logger,
	}
}

// QueryHandler handles POST /query. An empty index is not an error; the
// model answers from an empty context.
func (h *QueryHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteDetail(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		WriteDetail(w, http.StatusBadRequest, "Field 'question' is required")
		return
	}

	answer, err := h.pipeline.Answer(r.Context(), req.Question)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("question", req.Question).
			Msg("Query failed")
		WriteDetail(w, http.StatusInternalServerError, fmt.Sprintf("Error processing query: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, QueryResponse{
		Answer:  answer.Text,
		Sources: answer.SourcesForResponse(),
	})
}
