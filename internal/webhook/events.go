// Package webhook handles incoming store-change notifications from external
// product data systems (PLM/PDM connectors).
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// VerifySignature validates the X-Ecoscope-Signature-256 header against the payload.
func VerifySignature(payload []byte, signature string, secret []byte) error {
	if !strings.HasPrefix(signature, "sha256=") {
		return fmt.Errorf("invalid signature format")
	}
	sig, err := hex.DecodeString(signature[7:])
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	if !hmac.Equal(sig, expected) {
		return fmt.Errorf("signature mismatch")
	}
	return nil
}

// ComponentEvent signals that a component changed in the upstream store.
type ComponentEvent struct {
	Action      string `json:"action"` // created, updated, deleted
	ProjectID   int64  `json:"project_id"`
	ComponentID int64  `json:"component_id"`
	Source      string `json:"source,omitempty"` // connector identifier
}

// MaterialEvent signals that a material catalog entry changed.
type MaterialEvent struct {
	Action     string `json:"action"` // updated
	MaterialID int64  `json:"material_id"`
	Source     string `json:"source,omitempty"`
}

// EvaluateEvent requests a full evaluation run for a project.
type EvaluateEvent struct {
	ProjectID int64  `json:"project_id"`
	Source    string `json:"source,omitempty"`
}

// ParseEvent parses a notification payload based on the event type.
func ParseEvent(eventType string, payload []byte) (interface{}, error) {
	switch eventType {
	case "component":
		var e ComponentEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse component event: %w", err)
		}
		return &e, nil
	case "material":
		var e MaterialEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse material event: %w", err)
		}
		return &e, nil
	case "evaluate":
		var e EvaluateEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("parse evaluate event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unsupported event type: %s", eventType)
	}
}
