package server

import "net/http"

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/version", s.app.APIHandler.VersionHandler)

	mux.HandleFunc("/ingest", s.app.IngestHandler.IngestHandler)
	mux.HandleFunc("/query", s.app.QueryHandler.QueryHandler)

	// Everything else stays on the JSON error contract
	mux.HandleFunc("/", s.app.APIHandler.NotFoundHandler)

	return mux
}
