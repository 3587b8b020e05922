package common

import "fmt"

// IngestionError wraps a failure during document ingestion with the step
// that produced it (load, chunk, embed, index).
type IngestionError struct {
	Step string
	Err  error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed at %s: %v", e.Step, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// NewIngestionError wraps err with the failing ingestion step name.
func NewIngestionError(step string, err error) *IngestionError {
	return &IngestionError{Step: step, Err: err}
}

// PipelineError wraps a failure during query answering with the pipeline
// stage that produced it (retrieval, generation). Failures are never retried;
// the handler converts them to a 500 response.
type PipelineError struct {
	Stage string
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err with the failing pipeline stage name.
func NewPipelineError(stage string, err error) *PipelineError {
	return &PipelineError{Stage: stage, Err: err}
}
