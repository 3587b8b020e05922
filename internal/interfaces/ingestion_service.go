package interfaces

import (
	"context"

	"github.com/ternarybob/responsa/internal/models"
)

// IngestionService loads, chunks, embeds, and indexes an uploaded document,
// replacing the active collection. Returns the number of chunks created.
type IngestionService interface {
	Ingest(ctx context.Context, content []byte, filename string, docType models.DocumentType) (int, error)
}
