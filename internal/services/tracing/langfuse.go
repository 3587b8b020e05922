package tracing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/common"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

const (
	ingestionPath = "/api/public/ingestion"
	maxBatchSize  = 100
)

// ingestionEvent is one entry of a Langfuse batch ingestion request.
type ingestionEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Body      any    `json:"body"`
}

type traceBody struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Input     any    `json:"input,omitempty"`
	Output    any    `json:"output,omitempty"`
}

type observationBody struct {
	ID                  string         `json:"id"`
	TraceID             string         `json:"traceId"`
	ParentObservationID string         `json:"parentObservationId,omitempty"`
	Name                string         `json:"name,omitempty"`
	StartTime           string         `json:"startTime,omitempty"`
	EndTime             string         `json:"endTime,omitempty"`
	Input               any            `json:"input,omitempty"`
	Output              any            `json:"output,omitempty"`
	Level               string         `json:"level,omitempty"`
	StatusMessage       string         `json:"statusMessage,omitempty"`
	Model               string         `json:"model,omitempty"`
	ModelParameters     map[string]any `json:"modelParameters,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
}

// LangfuseRecorder ships span trees to a Langfuse backend through its batch
// ingestion API. Events are buffered and flushed by a background worker;
// delivery failures are logged and swallowed so observability problems
// never surface as request errors.
type LangfuseRecorder struct {
	config   *common.LangfuseConfig
	logger   arbor.ILogger
	client   *http.Client
	endpoint string

	events    chan ingestionEvent
	flushReqs chan chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Compile-time interface assertion
var _ interfaces.TraceRecorder = (*LangfuseRecorder)(nil)

// NewLangfuseRecorder creates a recorder and starts its flush worker.
func NewLangfuseRecorder(config *common.LangfuseConfig, logger arbor.ILogger) (*LangfuseRecorder, error) {
	if config.Host == "" || config.PublicKey == "" || config.SecretKey == "" {
		return nil, fmt.Errorf("langfuse host, public_key, and secret_key are required")
	}

	flushInterval, err := time.ParseDuration(config.FlushInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid flush interval '%s': %w", config.FlushInterval, err)
	}

	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = 512
	}

	r := &LangfuseRecorder{
		config:    config,
		logger:    logger,
		client:    &http.Client{Timeout: 10 * time.Second},
		endpoint:  config.Host + ingestionPath,
		events:    make(chan ingestionEvent, bufferSize),
		flushReqs: make(chan chan struct{}),
		done:      make(chan struct{}),
	}

	r.wg.Add(1)
	go r.run(flushInterval)

	logger.Info().
		Str("host", config.Host).
		Dur("flush_interval", flushInterval).
		Msg("Langfuse trace recorder initialized")

	return r, nil
}

// StartTrace opens a new trace whose root span shares the trace ID.
func (r *LangfuseRecorder) StartTrace(ctx context.Context, name string, input any) (context.Context, interfaces.SpanHandle) {
	traceID := common.NewTraceID()

	span := &models.Span{
		ID:        traceID,
		TraceID:   traceID,
		Name:      name,
		Type:      models.ObservationSpan,
		Input:     input,
		StartTime: time.Now().UTC(),
	}

	handle := &langfuseSpan{recorder: r, span: span}
	return withSpan(ctx, traceID, span.ID), handle
}

// StartSpan opens a span nested under the span held by ctx. A context with
// no open span starts a fresh trace instead.
func (r *LangfuseRecorder) StartSpan(ctx context.Context, name string, input any) (context.Context, interfaces.SpanHandle) {
	parent, ok := spanFromContext(ctx)
	if !ok {
		return r.StartTrace(ctx, name, input)
	}

	span := &models.Span{
		ID:        common.NewSpanID(),
		TraceID:   parent.TraceID,
		ParentID:  parent.SpanID,
		Name:      name,
		Type:      models.ObservationSpan,
		Input:     input,
		StartTime: time.Now().UTC(),
	}

	handle := &langfuseSpan{recorder: r, span: span}
	return withSpan(ctx, parent.TraceID, span.ID), handle
}

// Flush hands all buffered events to the backend. Used on shutdown so
// short-lived processes do not lose trailing spans.
func (r *LangfuseRecorder) Flush(ctx context.Context) error {
	ack := make(chan struct{})
	select {
	case r.flushReqs <- ack:
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the flush worker after draining pending events.
func (r *LangfuseRecorder) Close() error {
	r.closeOnce.Do(func() {
		close(r.done)
	})
	r.wg.Wait()
	return nil
}

// emit queues one event, dropping it with a warning when the buffer is
// full. Tracing must never block the request path.
func (r *LangfuseRecorder) emit(eventType string, body any) {
	event := ingestionEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Body:      body,
	}

	select {
	case r.events <- event:
	default:
		r.logger.Warn().Str("event_type", eventType).Msg("Trace event buffer full, dropping event")
	}
}

// emitSpan converts a closed span into its ingestion events. Root spans
// additionally produce the trace record itself.
func (r *LangfuseRecorder) emitSpan(span *models.Span) {
	if span.ParentID == "" && span.ID == span.TraceID {
		r.emit("trace-create", traceBody{
			ID:        span.TraceID,
			Name:      span.Name,
			Timestamp: span.StartTime.Format(time.RFC3339Nano),
			Input:     span.Input,
			Output:    span.Output,
		})
	}

	body := observationBody{
		ID:        span.ID,
		TraceID:   span.TraceID,
		Name:      span.Name,
		StartTime: span.StartTime.Format(time.RFC3339Nano),
		EndTime:   span.EndTime.Format(time.RFC3339Nano),
		Input:     span.Input,
		Output:    span.Output,
		Metadata:  span.Metadata,
	}
	if span.ParentID != span.ID {
		body.ParentObservationID = span.ParentID
	}
	if span.Error {
		body.Level = "ERROR"
		body.StatusMessage = span.StatusMessage
	}

	eventType := "span-create"
	if span.Type == models.ObservationGeneration {
		eventType = "generation-create"
		if model, ok := span.Metadata["model"].(string); ok {
			body.Model = model
		}
		if temperature, ok := span.Metadata["temperature"]; ok {
			body.ModelParameters = map[string]any{"temperature": temperature}
		}
	}

	r.emit(eventType, body)
}

func (r *LangfuseRecorder) run(flushInterval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	var pending []ingestionEvent
	for {
		select {
		case event := <-r.events:
			pending = append(pending, event)
			if len(pending) >= maxBatchSize {
				r.send(pending)
				pending = nil
			}
		case <-ticker.C:
			if len(pending) > 0 {
				r.send(pending)
				pending = nil
			}
		case ack := <-r.flushReqs:
			pending = append(pending, drain(r.events)...)
			if len(pending) > 0 {
				r.send(pending)
				pending = nil
			}
			close(ack)
		case <-r.done:
			pending = append(pending, drain(r.events)...)
			if len(pending) > 0 {
				r.send(pending)
			}
			return
		}
	}
}

func drain(ch chan ingestionEvent) []ingestionEvent {
	var events []ingestionEvent
	for {
		select {
		case event := <-ch:
			events = append(events, event)
		default:
			return events
		}
	}
}

// send posts one batch. Failures are logged and swallowed.
func (r *LangfuseRecorder) send(events []ingestionEvent) {
	payload, err := json.Marshal(map[string]any{"batch": events})
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to encode trace batch")
		return
	}

	req, err := http.NewRequest(http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		r.logger.Warn().Err(err).Msg("Failed to build trace batch request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.config.PublicKey, r.config.SecretKey)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn().Err(err).Int("events", len(events)).Msg("Failed to deliver trace batch")
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	// 207 means partial success; individual event errors are not retried
	if resp.StatusCode >= 300 {
		r.logger.Warn().
			Int("status", resp.StatusCode).
			Int("events", len(events)).
			Msg("Trace backend rejected batch")
		return
	}

	r.logger.Debug().Int("events", len(events)).Msg("Trace batch delivered")
}

// langfuseSpan is an open span handle. The first End/EndGeneration/Fail
// call closes it; later calls are no-ops.
type langfuseSpan struct {
	recorder *LangfuseRecorder
	span     *models.Span
	once     sync.Once
}

// Compile-time interface assertion
var _ interfaces.SpanHandle = (*langfuseSpan)(nil)

func (h *langfuseSpan) End(output any) {
	h.finish(func(s *models.Span) {
		s.Output = output
	})
}

func (h *langfuseSpan) EndGeneration(output any, model string, temperature float32) {
	h.finish(func(s *models.Span) {
		s.Type = models.ObservationGeneration
		s.Output = output
		if s.Metadata == nil {
			s.Metadata = make(map[string]any)
		}
		s.Metadata["model"] = model
		s.Metadata["temperature"] = temperature
	})
}

func (h *langfuseSpan) Fail(err error) {
	h.finish(func(s *models.Span) {
		s.Error = true
		if err != nil {
			s.StatusMessage = err.Error()
		}
	})
}

func (h *langfuseSpan) finish(mutate func(*models.Span)) {
	h.once.Do(func() {
		h.span.EndTime = time.Now().UTC()
		mutate(h.span)
		h.recorder.emitSpan(h.span)
	})
}
