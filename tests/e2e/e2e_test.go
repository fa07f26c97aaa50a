package e2e_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "kraftlint-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "kraftlint")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/kraftlint")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func fixturePath(name string) string {
	abs, _ := filepath.Abs(filepath.Join("../../testdata/projects", name))
	return abs
}

// cleanup removes the state directory a run leaves in a fixture.
func cleanup(t *testing.T, dir string) {
	t.Cleanup(func() { os.RemoveAll(filepath.Join(dir, ".kraftlint")) })
}

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return stdout.String(), stderr.String(), exitCode
}

func runReport(t *testing.T, args ...string) *domain.RunReport {
	t.Helper()
	out, _, _ := run(t, append(args, "--json")...)
	var report domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &report), out)
	return &report
}

// --- Run Tests ---

func TestE2E_Run(t *testing.T) {
	dir := fixturePath("clean")
	cleanup(t, dir)

	out, _, code := run(t, "run", dir)
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "kraftlint")
	assert.Contains(t, out, "No violations found.")
}

func TestE2E_RunJSON(t *testing.T) {
	dir := fixturePath("messy")
	cleanup(t, dir)

	report := runReport(t, "run", dir, "--no-cache")
	assert.Equal(t, domain.StateCompleted, report.State)
	assert.Equal(t, 2, report.Statistics.FilesScanned)
	assert.Equal(t, 6, report.Statistics.RulesProcessed)

	byRule := map[string]domain.Diagnostic{}
	for _, d := range report.Diagnostics {
		assert.NotEmpty(t, d.File)
		assert.NotEmpty(t, d.Severity)
		byRule[d.RuleID] = d
	}
	assert.Len(t, report.Diagnostics, 4)
	assert.Contains(t, byRule, "style.LineLength")
	assert.Contains(t, byRule, "documentation.PackageComment")
	assert.Contains(t, byRule, "style.IdentifierNaming")
	secret, ok := byRule["security.HardcodedSecret"]
	require.True(t, ok)
	assert.Equal(t, domain.SeverityError, secret.Severity)
	assert.NotContains(t, secret.Bad, "sk_live", "the literal is masked")
}

func TestE2E_OptInRules(t *testing.T) {
	dir := fixturePath("messy")
	cleanup(t, dir)

	report := runReport(t, "run", dir, "--no-cache",
		"--rule", "architecture.LayerDependency", "--rule", "best-practice.TodoComment")
	require.Len(t, report.Diagnostics, 2)
	ids := []string{report.Diagnostics[0].RuleID, report.Diagnostics[1].RuleID}
	assert.ElementsMatch(t, []string{"architecture.LayerDependency", "best-practice.TodoComment"}, ids)

	clean := fixturePath("clean")
	cleanup(t, clean)
	report = runReport(t, "run", clean, "--no-cache", "--rule", "architecture.LayerDependency")
	assert.Empty(t, report.Diagnostics)
}

func TestE2E_CacheHitOnSecondRun(t *testing.T) {
	dir := fixturePath("clean")
	cleanup(t, dir)

	first := runReport(t, "run", dir)
	second := runReport(t, "run", dir)
	assert.Equal(t, 1, first.Performance.Discovery.Misses)
	assert.Equal(t, 1, second.Performance.Discovery.Hits)
	assert.ElementsMatch(t, first.Diagnostics, second.Diagnostics)
}

func TestE2E_WorkersMatchSequential(t *testing.T) {
	dir := fixturePath("messy")
	cleanup(t, dir)

	seq := runReport(t, "run", dir, "--no-cache")
	par := runReport(t, "run", dir, "--no-cache", "--workers", "8")
	assert.ElementsMatch(t, seq.Diagnostics, par.Diagnostics)
}

func TestE2E_EmptyProject(t *testing.T) {
	dir := fixturePath("empty")
	cleanup(t, dir)

	_, _, code := run(t, "run", dir, "--no-cache")
	assert.Equal(t, 0, code)

	_, _, code = run(t, "run", dir, "--no-cache", "--fail-on-empty")
	assert.Equal(t, 1, code)
}

func TestE2E_UnknownRule(t *testing.T) {
	dir := fixturePath("clean")
	cleanup(t, dir)

	_, stderr, code := run(t, "run", dir, "--no-cache", "--rule", "style.LineLenght")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "CONFIGURATION")
}

func TestE2E_CI(t *testing.T) {
	dir := fixturePath("messy")
	cleanup(t, dir)

	_, stderr, code := run(t, "run", dir, "--no-cache", "--ci")
	assert.Equal(t, 1, code, "fixture has violations")
	assert.Contains(t, stderr, "violations found")
}

// --- Rules Tests ---

func TestE2E_RulesList(t *testing.T) {
	out, _, code := run(t, "rules", "list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "security.HardcodedSecret")
}

func TestE2E_RulesValidate(t *testing.T) {
	_, _, code := run(t, "rules", "validate")
	assert.Equal(t, 0, code)

	_, _, code = run(t, "rules", "validate", "nope.Rule")
	assert.Equal(t, 1, code)
}

func TestE2E_Version(t *testing.T) {
	out, _, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "kraftlint")
}
