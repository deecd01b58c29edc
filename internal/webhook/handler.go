package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ecoscope/ecoscope/internal/evaluation"
	"github.com/ecoscope/ecoscope/internal/registry"
)

// Handler processes incoming store-change notifications.
type Handler struct {
	webhookSecret []byte
	registry      *registry.Service
	evaluations   *evaluation.Service
}

// NewHandler creates a new webhook Handler.
func NewHandler(webhookSecret []byte, reg *registry.Service, evaluations *evaluation.Service) *Handler {
	return &Handler{
		webhookSecret: webhookSecret,
		registry:      reg,
		evaluations:   evaluations,
	}
}

// ServeHTTP handles incoming webhook requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20)) // 10 MB limit
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get("X-Ecoscope-Signature-256")
	if err := VerifySignature(body, signature, h.webhookSecret); err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	eventType := r.Header.Get("X-Ecoscope-Event")
	if eventType == "" {
		http.Error(w, "missing X-Ecoscope-Event header", http.StatusBadRequest)
		return
	}

	event, err := ParseEvent(eventType, body)
	if err != nil {
		log.Printf("webhook parse error for %s: %v", eventType, err)
		http.Error(w, "unsupported event", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	switch e := event.(type) {
	case *ComponentEvent:
		if err := h.handleComponent(ctx, e); err != nil {
			log.Printf("handle component event: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

	case *MaterialEvent:
		if err := h.handleMaterial(ctx, e); err != nil {
			log.Printf("handle material event: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

	case *EvaluateEvent:
		if err := h.handleEvaluate(ctx, e); err != nil {
			log.Printf("handle evaluate event: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

func (h *Handler) handleComponent(ctx context.Context, e *ComponentEvent) error {
	switch e.Action {
	case "created", "updated":
		if err := h.evaluations.RecalcComponent(ctx, e.ProjectID, e.ComponentID); err != nil {
			return fmt.Errorf("recalc component %d: %w", e.ComponentID, err)
		}
		log.Printf("recalculated weights for component %d in project %d", e.ComponentID, e.ProjectID)
	case "deleted":
		// The component is gone from the store, so sweep the whole project.
		if err := h.evaluations.ResolveProject(ctx, e.ProjectID); err != nil {
			return fmt.Errorf("resolve project %d: %w", e.ProjectID, err)
		}
		log.Printf("re-resolved project %d after component %d deletion", e.ProjectID, e.ComponentID)
	}
	return nil
}

func (h *Handler) handleMaterial(ctx context.Context, e *MaterialEvent) error {
	// Density changes invalidate every volume-derived weight of the material.
	// Explicit overrides keep their value; composites resolve from children.
	n, err := h.registry.ClearDerivedWeights(ctx, e.MaterialID)
	if err != nil {
		return fmt.Errorf("clear derived weights for material %d: %w", e.MaterialID, err)
	}
	log.Printf("material %d changed, cleared %d derived weights", e.MaterialID, n)
	return nil
}

func (h *Handler) handleEvaluate(ctx context.Context, e *EvaluateEvent) error {
	result, err := h.evaluations.Run(ctx, e.ProjectID)
	if err != nil {
		return fmt.Errorf("run evaluation for project %d: %w", e.ProjectID, err)
	}
	log.Printf("webhook-triggered evaluation %s for project %d: recycle=%s",
		result.Evaluation.ID, e.ProjectID, result.Evaluation.RecycleGrade)
	return nil
}
