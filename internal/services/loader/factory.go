package loader

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/responsa/internal/interfaces"
	"github.com/ternarybob/responsa/internal/models"
)

// Registry selects a document loader strategy by declared document type.
type Registry struct {
	loaders map[models.DocumentType]interfaces.DocumentLoader
}

// NewRegistry creates a registry with the standard loader set: a PDF-aware
// loader that yields one segment per page, and generic loaders for
// text/html/markdown that yield segments with page 0.
func NewRegistry(logger arbor.ILogger) *Registry {
	r := &Registry{
		loaders: make(map[models.DocumentType]interfaces.DocumentLoader),
	}
	r.register(NewPDFLoader(logger))
	r.register(NewTextLoader(logger))
	r.register(NewHTMLLoader(logger))
	r.register(NewMarkdownLoader(logger))
	return r
}

func (r *Registry) register(l interfaces.DocumentLoader) {
	r.loaders[l.Type()] = l
}

// ForType returns the loader for the given document type.
func (r *Registry) ForType(docType models.DocumentType) (interfaces.DocumentLoader, error) {
	l, ok := r.loaders[docType]
	if !ok {
		return nil, fmt.Errorf("unsupported document type: %s", docType)
	}
	return l, nil
}
