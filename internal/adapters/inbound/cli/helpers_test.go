package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openkraft/kraftlint/internal/adapters/inbound/cli"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := cli.NewRootCmdForTest()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// fixture writes a one-package project with a single overlong line.
func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	src := "// Package demo is a fixture.\npackage demo\n\nvar s = \"" + strings.Repeat("x", 150) + "\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "demo.go"), []byte(src), 0644))
	return dir
}
