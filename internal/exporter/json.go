package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"offgascli/pkg/contracts/domain"
)

// WriteSummaryJSON writes the summary as indented JSON.
func WriteSummaryJSON(filePath string, s *domain.Summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(filePath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
