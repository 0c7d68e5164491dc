// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// Export writes the history to dir/history.yaml and dir/history.json. It
// supports the same filters as Query and returns the number of records
// written.
func (s *Store) Export(ctx context.Context, dir string, opts QueryOptions) (int, error) {
	if opts.Limit <= 0 {
		opts.Limit = exportLimit
	}
	records, err := s.Query(ctx, opts)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("creating export directory: %w", err)
	}

	yamlData, err := yaml.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "history.yaml"), yamlData, 0o644); err != nil {
		return 0, fmt.Errorf("writing history.yaml: %w", err)
	}

	jsonData, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "history.json"), append(jsonData, '\n'), 0o644); err != nil {
		return 0, fmt.Errorf("writing history.json: %w", err)
	}
	return len(records), nil
}
