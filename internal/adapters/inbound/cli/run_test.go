package cli_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/cli"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCmd_JSON(t *testing.T) {
	dir := fixture(t)

	out, err := execute(t, "run", dir, "--rule", "style.LineLength", "--no-cache", "--json")
	require.NoError(t, err)

	var report domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.StateCompleted, report.State)
	assert.Equal(t, 1, report.Statistics.FilesScanned)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, "style.LineLength", report.Diagnostics[0].RuleID)
	assert.Equal(t, 4, report.Diagnostics[0].Line)
	assert.NotEmpty(t, report.RunID)
}

func TestRunCmd_DefaultRulesText(t *testing.T) {
	dir := fixture(t)

	out, err := execute(t, "run", dir, "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "kraftlint")
	assert.Contains(t, out, "style.LineLength")
	assert.Contains(t, out, "1 files")
}

func TestRunCmd_UnknownRuleIsFatal(t *testing.T) {
	dir := fixture(t)

	_, err := execute(t, "run", dir, "--rule", "style.NoSuchRule", "--no-cache")
	require.Error(t, err)

	var fatal *domain.FatalError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, domain.LogConfiguration, fatal.Category)
}

func TestRunCmd_MissingRootIsFatal(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "run", dir, "--root", filepath.Join(dir, "missing"), "--no-cache")
	var fatal *domain.FatalError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, domain.LogConfiguration, fatal.Category)
}

func TestRunCmd_CIFailsOnViolations(t *testing.T) {
	dir := fixture(t)

	_, err := execute(t, "run", dir, "--rule", "style.LineLength", "--no-cache", "--ci")
	assert.ErrorIs(t, err, cli.ErrViolations)
}

func TestRunCmd_ZeroFiles(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "run", dir, "--no-cache")
	assert.NoError(t, err, "an empty project completes")

	_, err = execute(t, "run", dir, "--no-cache", "--fail-on-empty")
	assert.ErrorIs(t, err, cli.ErrNoFiles)
}

func TestRunCmd_WritesReportAndHistory(t *testing.T) {
	dir := fixture(t)
	report := filepath.Join(t.TempDir(), "report.json")

	_, err := execute(t, "run", dir, "--rule", "style.LineLength", "--output", report)
	require.NoError(t, err)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var got domain.RunReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 1, got.Statistics.TotalViolations)

	out, err := execute(t, "run", dir, "--rule", "style.LineLength", "--history")
	require.NoError(t, err)
	assert.Contains(t, out, "Run History")
	assert.Contains(t, out, "1 violations")
}

func TestRunCmd_ConfigFile(t *testing.T) {
	dir := fixture(t)
	cfg := filepath.Join(t.TempDir(), "lint.yaml")
	content := "roots: [" + dir + "]\nrules: [best-practice.TodoComment]\ndiscovery:\n  no_cache: true\n"
	require.NoError(t, os.WriteFile(cfg, []byte(content), 0644))

	out, err := execute(t, "run", dir, "--config", cfg, "--json")
	require.NoError(t, err)

	var report domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, domain.StateCompleted, report.State)
	assert.Empty(t, report.Diagnostics)
	assert.Contains(t, report.Performance.RuleTimes, "best-practice.TodoComment")
}

func TestRunCmd_WorkersFlag(t *testing.T) {
	dir := fixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.go"), []byte("package demo\n"), 0644))

	_, err := execute(t, "run", dir, "--workers", "4", "--rule-timeout", "5s", "--no-cache")
	assert.NoError(t, err)

	_, err = execute(t, "run", dir, "--workers=-1", "--no-cache")
	var fatal *domain.FatalError
	require.True(t, errors.As(err, &fatal))
	assert.Equal(t, domain.LogConfiguration, fatal.Category)
}
