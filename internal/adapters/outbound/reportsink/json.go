// Package reportsink persists finished run reports.
package reportsink

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/openkraft/kraftlint/internal/domain"
)

// JSONSink implements domain.ReportSink by writing indented JSON.
type JSONSink struct{}

func New() *JSONSink { return &JSONSink{} }

// Write replaces the file at path atomically. Missing parent directories
// are created.
func (s *JSONSink) Write(path string, report *domain.RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.json")
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := Encode(tmp, report); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Encode writes report as indented JSON to w.
func Encode(w io.Writer, report *domain.RunReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}
