package chunker

import (
	"strings"

	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// FixedSizeChunker splits segment text into chunks of at most size
// characters, with overlap characters shared between consecutive chunks.
// Offsets are rune-based so multi-byte text never splits mid-character.
//
// Concatenating the chunks of one segment, dropping the overlap from every
// chunk after the first, reconstructs the segment text exactly.
type FixedSizeChunker struct {
	size    int
	overlap int
}

// Compile-time interface assertion
var _ interfaces.Chunker = (*FixedSizeChunker)(nil)

// New creates a chunker with the given size and overlap. Out-of-range
// values fall back to the defaults (1000/200).
func New(size, overlap int) *FixedSizeChunker {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = defaultChunkOverlap
		if overlap >= size {
			overlap = size / 5
		}
	}
	return &FixedSizeChunker{
		size:    size,
		overlap: overlap,
	}
}

// Split chunks a segment, preserving its page metadata on every chunk.
// Whitespace-only segments yield no chunks. Chunk IDs and ordinals are
// assigned later by the ingestion service.
func (c *FixedSizeChunker) Split(segment models.Segment) []models.Chunk {
	if strings.TrimSpace(segment.Text) == "" {
		return nil
	}

	runes := []rune(segment.Text)
	step := c.size - c.overlap

	chunks := make([]models.Chunk, 0, (len(runes)+step-1)/step)
	for start := 0; ; start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}

		chunks = append(chunks, models.Chunk{
			Text: string(runes[start:end]),
			Page: segment.Page,
		})

		if end == len(runes) {
			break
		}
	}

	return chunks
}

// Size returns the configured maximum chunk length.
func (c *FixedSizeChunker) Size() int {
	return c.size
}

// Overlap returns the configured overlap between consecutive chunks.
func (c *FixedSizeChunker) Overlap() int {
	return c.overlap
}
