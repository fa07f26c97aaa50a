package reportsink_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/reportsink"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *domain.RunReport {
	r := domain.NewRunReport("run-42", time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	r.State = domain.StateCompleted
	r.Diagnostics = append(r.Diagnostics, domain.Diagnostic{
		Message: "line too long", File: "a.go", Line: 3,
		Severity: domain.SeverityWarning, Category: domain.CategoryStyle, RuleID: "style.LineLength",
	})
	r.AddWarning(domain.LogEntry{Category: domain.LogFileScanning, Message: "skipped"})
	r.Summarize()
	return r
}

func TestJSONSink_WritesReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "report.json")

	require.NoError(t, reportsink.New().Write(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	for _, key := range []string{"run_id", "summary", "performance", "statistics", "errors", "warnings", "info", "diagnostics"} {
		assert.Contains(t, got, key)
	}
	assert.Equal(t, "run-42", got["run_id"])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestJSONSink_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	require.NoError(t, reportsink.New().Write(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestEncode_EmptyCollectionsAreArrays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reportsink.Encode(&buf, domain.NewRunReport("r", time.Time{})))
	assert.Contains(t, buf.String(), `"errors": []`)
	assert.Contains(t, buf.String(), `"diagnostics": []`)
}
