package evaluation

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoragePutGetReport(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"score":75}`)
	if err := s.PutReport(ctx, "7", "eval1", data); err != nil {
		t.Fatalf("PutReport: %v", err)
	}

	got, err := s.GetReport(ctx, "7", "eval1")
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetReport = %q, want %q", got, data)
	}

	// Verify file path layout
	expectedPath := filepath.Join(dir, "7", "reports", "eval1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStoragePutGetTree(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	data := []byte(`{"components":{}}`)
	if err := s.PutTree(ctx, "7", "eval1", data); err != nil {
		t.Fatalf("PutTree: %v", err)
	}

	got, err := s.GetTree(ctx, "7", "eval1")
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("GetTree = %q, want %q", got, data)
	}

	expectedPath := filepath.Join(dir, "7", "trees", "eval1.json")
	if _, err := os.Stat(expectedPath); err != nil {
		t.Errorf("expected file at %s: %v", expectedPath, err)
	}
}

func TestLocalStorageGetNotFound(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir)
	ctx := context.Background()

	_, err := s.GetReport(ctx, "7", "nonexistent")
	if err == nil {
		t.Error("expected error for nonexistent report")
	}
}

func TestGateRef(t *testing.T) {
	if gateRef("") != nil {
		t.Error("empty gate should map to nil")
	}
	got := gateRef("dangerous_material")
	if got == nil || *got != "dangerous_material" {
		t.Errorf("gateRef = %v, want dangerous_material", got)
	}
}
