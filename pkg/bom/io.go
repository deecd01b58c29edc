package bom

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveTree writes a tree snapshot to disk as JSON.
func SaveTree(path string, tree *Tree) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for tree: %w", err)
	}

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tree: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing tree: %w", err)
	}

	return nil
}

// LoadTree reads a tree snapshot from disk and rebuilds its indexes.
func LoadTree(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tree: %w", err)
	}

	tree, err := DecodeTree(data)
	if err != nil {
		return nil, fmt.Errorf("decoding tree %s: %w", path, err)
	}

	return tree, nil
}

// DecodeTree unmarshals a tree snapshot from JSON and rebuilds its indexes.
func DecodeTree(data []byte) (*Tree, error) {
	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("unmarshaling tree: %w", err)
	}
	if tree.Components == nil {
		tree.Components = make(map[int64]*Component)
	}
	if tree.Materials == nil {
		tree.Materials = make(map[int64]*Material)
	}
	if err := tree.Reindex(); err != nil {
		return nil, err
	}
	return &tree, nil
}

// EncodeTree marshals a tree snapshot to indented JSON.
func EncodeTree(tree *Tree) ([]byte, error) {
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling tree: %w", err)
	}
	return data, nil
}
