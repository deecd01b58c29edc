package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ecoscope/ecoscope/internal/registry"
	"github.com/ecoscope/ecoscope/pkg/bom"
)

type evaluationResponse struct {
	ID           string  `json:"id"`
	ProjectID    int64   `json:"project_id"`
	RootID       int64   `json:"root_id"`
	Weight       float64 `json:"weight"`
	Score        float64 `json:"score"`
	RecycleValue float64 `json:"recycle_value"`
	RecycleGrade string  `json:"recycle_grade"`
	Gate         *string `json:"gate,omitempty"`
	ImpactGWP    float64 `json:"impact_gwp"`
	ImpactGrade  string  `json:"impact_grade"`
	CreatedAt    string  `json:"created_at"`
}

func evaluationToResponse(e *registry.EvaluationRow) evaluationResponse {
	return evaluationResponse{
		ID:           e.ID,
		ProjectID:    e.ProjectID,
		RootID:       e.RootID,
		Weight:       e.Weight,
		Score:        e.Score,
		RecycleValue: e.RecycleValue,
		RecycleGrade: e.RecycleGrade,
		Gate:         e.Gate,
		ImpactGWP:    e.ImpactGWP,
		ImpactGrade:  e.ImpactGrade,
		CreatedAt:    e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	result, err := h.evaluationSvc.Run(r.Context(), projectID)
	if err != nil {
		if bom.IsStructural(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		if strings.Contains(err.Error(), "no components") {
			writeError(w, http.StatusUnprocessableEntity, "project has no components")
			return
		}
		writeError(w, http.StatusInternalServerError, "evaluation failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"evaluation": evaluationToResponse(result.Evaluation),
		"report":     result.Report,
	})
}

func (h *Handler) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	evals, err := h.registrySvc.ListEvaluations(r.Context(), projectID)
	if err != nil {
		writeJSON(w, http.StatusOK, []evaluationResponse{})
		return
	}

	var result []evaluationResponse
	for i := range evals {
		result = append(result, evaluationToResponse(&evals[i]))
	}

	if result == nil {
		result = []evaluationResponse{}
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	evaluationID := r.PathValue("evaluationID")

	e, err := h.registrySvc.GetEvaluation(r.Context(), evaluationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "evaluation not found")
		return
	}
	writeJSON(w, http.StatusOK, evaluationToResponse(e))
}

func (h *Handler) handleGetReport(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	evaluationID := r.PathValue("evaluationID")

	report, err := h.evaluationSvc.GetReport(r.Context(), projectID, evaluationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "report not found")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleGetEvaluationTree serves the archived tree snapshot an evaluation ran
// against. Snapshots are immutable so they sit behind the LRU cache.
func (h *Handler) handleGetEvaluationTree(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathInt64(r, "projectID")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	evaluationID := r.PathValue("evaluationID")

	if tree := h.cache.Get(evaluationID); tree != nil {
		writeJSON(w, http.StatusOK, tree)
		return
	}

	data, err := h.evaluationSvc.GetTree(r.Context(), projectID, evaluationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "tree snapshot not found")
		return
	}
	tree, err := bom.DecodeTree(data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "corrupt tree snapshot "+strconv.Quote(evaluationID))
		return
	}

	h.cache.Put(evaluationID, tree)
	writeJSON(w, http.StatusOK, tree)
}
