package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ecoscope/ecoscope/pkg/bom"
	"github.com/ecoscope/ecoscope/pkg/bomquery"
)

// componentPayload is the wire form for component writes. The connection is
// carried by name so API clients never see raw enum integers.
type componentPayload struct {
	Name          string   `json:"name"`
	ParentID      *int64   `json:"parent_id"`
	IsAtomic      bool     `json:"is_atomic"`
	MaterialID    *int64   `json:"material_id"`
	Volume        *float64 `json:"volume"`
	Weight        *float64 `json:"weight"`
	Reusable      bool     `json:"reusable"`
	Connection    string   `json:"connection"`
	SystemAbility float64  `json:"system_ability"`
	RFactor       float64  `json:"r_factor"`
	SeparationEff float64  `json:"separation_eff"`
	SortingEff    float64  `json:"sorting_eff"`
	CompatBonus   float64  `json:"compat_bonus"`
	CompatMalus   float64  `json:"compat_malus"`
}

func (p *componentPayload) toComponent() *bom.Component {
	return &bom.Component{
		Name:          p.Name,
		ParentID:      p.ParentID,
		IsAtomic:      p.IsAtomic,
		MaterialID:    p.MaterialID,
		Volume:        p.Volume,
		Weight:        p.Weight,
		Reusable:      p.Reusable,
		Connection:    bom.ParseConnectionType(p.Connection),
		SystemAbility: p.SystemAbility,
		RFactor:       p.RFactor,
		SeparationEff: p.SeparationEff,
		SortingEff:    p.SortingEff,
		CompatBonus:   p.CompatBonus,
		CompatMalus:   p.CompatMalus,
	}
}

func (h *Handler) handleCreateComponent(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req componentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.IsAtomic && req.MaterialID == nil {
		writeError(w, http.StatusBadRequest, "atomic components require a material")
		return
	}

	c := req.toComponent()
	c.ProjectID = projectID
	out, err := h.registrySvc.CreateComponent(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create component")
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleUpdateComponent(w http.ResponseWriter, r *http.Request) {
	componentID, ok := pathInt64(r, "componentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid component id")
		return
	}

	existing, err := h.registrySvc.GetComponent(r.Context(), componentID)
	if err != nil {
		writeError(w, http.StatusNotFound, "component not found")
		return
	}

	var req componentPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		req.Name = existing.Name
	}
	if existing.IsAtomic && req.MaterialID == nil {
		writeError(w, http.StatusBadRequest, "atomic components require a material")
		return
	}

	c := req.toComponent()
	c.ID = componentID
	out, err := h.registrySvc.UpdateComponent(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update component")
		return
	}

	// Derived weights along the ancestor chain are stale now.
	if err := h.evaluationSvc.RecalcComponent(r.Context(), existing.ProjectID, componentID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to recalc weights")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDeleteComponent(w http.ResponseWriter, r *http.Request) {
	componentID, ok := pathInt64(r, "componentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid component id")
		return
	}

	if err := h.registrySvc.DeleteComponent(r.Context(), componentID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete component")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) handleListComponents(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	components, err := h.registrySvc.ListComponents(r.Context(), projectID)
	if err != nil {
		writeJSON(w, http.StatusOK, []*bom.Component{})
		return
	}
	if components == nil {
		components = []*bom.Component{}
	}
	writeJSON(w, http.StatusOK, components)
}

func (h *Handler) handleSubtree(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	tree, err := h.registrySvc.LoadTree(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "project tree not found")
		return
	}

	rootID := queryInt64(r, "root", 0)
	if rootID == 0 {
		roots := tree.Roots()
		if len(roots) == 0 {
			writeError(w, http.StatusNotFound, "tree has no roots")
			return
		}
		rootID = roots[0].ID
	}
	depth := int(queryInt64(r, "depth", 3))
	maxNodes := int(queryInt64(r, "max_nodes", 500))

	writeJSON(w, http.StatusOK, bomquery.Subtree(tree, rootID, depth, maxNodes))
}

func (h *Handler) handleAncestorPath(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	componentID, ok := pathInt64(r, "componentID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid component id")
		return
	}

	tree, err := h.registrySvc.LoadTree(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "project tree not found")
		return
	}

	path, err := bomquery.AncestorPath(tree, componentID)
	if err != nil {
		if bom.IsStructural(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to resolve path")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path})
}

func (h *Handler) handleFamilyBreakdown(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	tree, err := h.registrySvc.LoadTree(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "project tree not found")
		return
	}

	writeJSON(w, http.StatusOK, bomquery.FamilyBreakdown(tree))
}

func queryInt64(r *http.Request, name string, fallback int64) int64 {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
