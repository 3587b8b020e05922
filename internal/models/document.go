package models

// DocumentType identifies the loader strategy used for an uploaded document.
type DocumentType string

const (
	DocumentTypePDF      DocumentType = "pdf"
	DocumentTypeText     DocumentType = "text"
	DocumentTypeHTML     DocumentType = "html"
	DocumentTypeMarkdown DocumentType = "markdown"
)

// Valid reports whether the document type is one of the supported values.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentTypePDF, DocumentTypeText, DocumentTypeHTML, DocumentTypeMarkdown:
		return true
	}
	return false
}

// Segment is a unit of raw text produced by a document loader.
// Page is 1-indexed for PDF sources; 0 is a sentinel meaning the source has
// no page concept (text, html, markdown).
type Segment struct {
	Text string
	Page int
}

// Chunk is a bounded-length text fragment produced by splitting a Segment.
// It inherits the Segment's page and is immutable once created.
type Chunk struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Page    int    `json:"page"`
	Ordinal int    `json:"ordinal"` // insertion order within the collection
}

// RetrievedChunk is a chunk returned by the vector index, paired with its
// similarity score to the query vector. Rank is implicit in slice order.
type RetrievedChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// Source is the user-facing citation for a retrieved chunk.
type Source struct {
	Page int    `json:"page"`
	Text string `json:"text"`
}

// Answer is the result of one RAG query: the synthesized text plus the
// retrieved chunks it was grounded in, in retrieval order.
type Answer struct {
	Text    string
	Sources []RetrievedChunk
}

// SourcesForResponse converts the answer's retrieved chunks into the wire
// representation used by the query endpoint.
func (a *Answer) SourcesForResponse() []Source {
	sources := make([]Source, 0, len(a.Sources))
	for _, rc := range a.Sources {
		sources = append(sources, Source{Page: rc.Page, Text: rc.Text})
	}
	return sources
}
