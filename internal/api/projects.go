package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecoscope/ecoscope/internal/registry"
	"github.com/ecoscope/ecoscope/pkg/bom"
)

type projectResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

func projectToResponse(p *registry.Project) projectResponse {
	return projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func pathInt64(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return v, err == nil
}

func (h *Handler) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	p, err := h.registrySvc.CreateProject(r.Context(), req.Name, req.Description)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
			writeError(w, http.StatusConflict, "project name already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create project")
		return
	}
	writeJSON(w, http.StatusCreated, projectToResponse(p))
}

func (h *Handler) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.registrySvc.ListProjects(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, []projectResponse{})
		return
	}

	var result []projectResponse
	for i := range projects {
		result = append(result, projectToResponse(&projects[i]))
	}

	if result == nil {
		result = []projectResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	p, err := h.registrySvc.GetProject(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, projectToResponse(p))
}

func (h *Handler) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.registrySvc.ListMaterials(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, []bom.Material{})
		return
	}
	if materials == nil {
		materials = []bom.Material{}
	}
	writeJSON(w, http.StatusOK, materials)
}

func (h *Handler) handleUpsertMaterial(w http.ResponseWriter, r *http.Request) {
	var m bom.Material
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(m.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	out, err := h.registrySvc.UpsertMaterial(r.Context(), &m)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to upsert material")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpsertCompat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MaterialA int64   `json:"material_a"`
		MaterialB int64   `json:"material_b"`
		Bonus     float64 `json:"bonus"`
		Malus     float64 `json:"malus"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.registrySvc.UpsertCompat(r.Context(), req.MaterialA, req.MaterialB, req.Bonus, req.Malus); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to upsert compat entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
