// Package api implements the hosted Ecoscope REST API.
// It provides catalog, component and evaluation endpoints backed by Postgres
// and blob storage.
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/ecoscope/ecoscope/internal/evaluation"
	"github.com/ecoscope/ecoscope/internal/registry"
)

// Handler is the top-level API handler for the hosted Ecoscope service.
type Handler struct {
	db            *sql.DB
	registrySvc   *registry.Service
	evaluationSvc *evaluation.Service
	cache         *TreeCache
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, registrySvc *registry.Service, evaluationSvc *evaluation.Service, cache *TreeCache) *Handler {
	if cache == nil {
		cache = NewTreeCacheFromEnv()
	}
	return &Handler{
		db:            db,
		registrySvc:   registrySvc,
		evaluationSvc: evaluationSvc,
		cache:         cache,
	}
}

// RegisterRoutes registers all API routes on the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Write endpoints (auth-protected)
	mux.HandleFunc("POST /api/v1/projects", h.handleCreateProject)
	mux.HandleFunc("POST /api/v1/projects/{projectID}/components", h.handleCreateComponent)
	mux.HandleFunc("PATCH /api/v1/components/{componentID}", h.handleUpdateComponent)
	mux.HandleFunc("DELETE /api/v1/components/{componentID}", h.handleDeleteComponent)
	mux.HandleFunc("POST /api/v1/materials", h.handleUpsertMaterial)
	mux.HandleFunc("PUT /api/v1/compat", h.handleUpsertCompat)
	mux.HandleFunc("POST /api/v1/projects/{projectID}/evaluate", h.handleEvaluate)

	// Read endpoints
	mux.HandleFunc("GET /api/projects", h.handleListProjects)
	mux.HandleFunc("GET /api/projects/{projectID}", h.handleGetProject)
	mux.HandleFunc("GET /api/projects/{projectID}/components", h.handleListComponents)
	mux.HandleFunc("GET /api/projects/{projectID}/subtree", h.handleSubtree)
	mux.HandleFunc("GET /api/projects/{projectID}/components/{componentID}/path", h.handleAncestorPath)
	mux.HandleFunc("GET /api/projects/{projectID}/breakdown", h.handleFamilyBreakdown)
	mux.HandleFunc("GET /api/projects/{projectID}/evaluations", h.handleListEvaluations)
	mux.HandleFunc("GET /api/projects/{projectID}/evaluations/{evaluationID}", h.handleGetEvaluation)
	mux.HandleFunc("GET /api/projects/{projectID}/evaluations/{evaluationID}/report", h.handleGetReport)
	mux.HandleFunc("GET /api/projects/{projectID}/evaluations/{evaluationID}/tree", h.handleGetEvaluationTree)
	mux.HandleFunc("GET /api/materials", h.handleListMaterials)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
