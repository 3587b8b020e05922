package models

import "time"

// ChunkRecord is the stored form of an embedded chunk. Records are grouped
// by versioned collection name; only records of the active collection
// version serve queries.
type ChunkRecord struct {
	Key        string `badgerhold:"key"` // "<collection>/<ordinal>"
	Collection string `badgerholdIndex:"Collection"`
	Ordinal    int
	Page       int
	Text       string
	Embedding  []float32
	CreatedAt  time.Time
}

// ToChunk converts the stored record back into its chunk form.
func (r *ChunkRecord) ToChunk() Chunk {
	return Chunk{
		ID:      r.Key,
		Text:    r.Text,
		Page:    r.Page,
		Ordinal: r.Ordinal,
	}
}
