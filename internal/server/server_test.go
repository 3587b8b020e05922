package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/responsa/internal/app"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/handlers"
	"github.com/ternarybob/responsa/internal/models"
)

type stubPipeline struct{}

func (stubPipeline) Answer(ctx context.Context, question string) (*models.Answer, error) {
	return &models.Answer{Text: "stub answer", Sources: nil}, nil
}

type stubIngestion struct{}

func (stubIngestion) Ingest(ctx context.Context, content []byte, filename string, docType models.DocumentType) (int, error) {
	return 1, nil
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := common.GetLogger()
	application := &app.App{
		Config:        common.NewDefaultConfig(),
		Logger:        logger,
		APIHandler:    handlers.NewAPIHandler(logger),
		IngestHandler: handlers.NewIngestHandler(stubIngestion{}, logger),
		QueryHandler:  handlers.NewQueryHandler(stubPipeline{}, logger),
	}

	s := New(application)
	return s.withMiddleware(s.router)
}

func TestRouting_Health(t *testing.T) {
	handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouting_Query(t *testing.T) {
	handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"question":"q"}`)))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "stub answer")
}

func TestRouting_UnknownPathIsJSON404(t *testing.T) {
	handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["detail"])
}

func TestMiddleware_CORSPreflight(t *testing.T) {
	handler := newTestServer(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/query", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_RecoversFromPanic(t *testing.T) {
	logger := common.GetLogger()
	s := &Server{app: &app.App{Config: common.NewDefaultConfig(), Logger: logger}}

	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	s.withMiddleware(panicking).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
