// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes matching entries to path as YAML. f.Limit is ignored.
func (s *Store) ExportYAML(ctx context.Context, f Filter, path string) error {
	entries, err := s.exportEntries(ctx, f)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes matching entries to path as indented JSON. f.Limit is
// ignored.
func (s *Store) ExportJSON(ctx context.Context, f Filter, path string) error {
	entries, err := s.exportEntries(ctx, f)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportEntries(ctx context.Context, f Filter) ([]Entry, error) {
	f.Limit = exportLimit
	entries, err := s.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
