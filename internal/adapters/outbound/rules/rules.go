// Package rules holds the built-in checks kraftlint ships with. They are
// ordinary plugins: the orchestrator only sees them through the registry.
package rules

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/parsecache"
	"github.com/openkraft/kraftlint/internal/adapters/outbound/parser"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/contract"
)

const author = "kraftlint"

// Source returns the parsed form of a Go file. *parsecache.Cache satisfies
// it, so AST rules share one parse per file and mtime.
type Source interface {
	GetOrParse(path string) (*domain.AnalyzedFile, error)
}

// NewParseCache returns the shared cache AST rules read through.
func NewParseCache(capacity int) *parsecache.Cache[*domain.AnalyzedFile] {
	return parsecache.New[*domain.AnalyzedFile](capacity, parser.New().AnalyzeFile)
}

// Register adds every built-in rule to reg. AST rules read through src.
func Register(reg *contract.Registry, src Source) error {
	regs := []contract.Registration{
		{ID: LineLengthID, Constructor: NewLineLength},
		{ID: FileLengthID, Constructor: NewFileLength},
		{ID: TodoCommentID, Constructor: NewTodoComment},
		{ID: HardcodedSecretID, Constructor: NewHardcodedSecret},
		{ID: FunctionLengthID, Constructor: func() *FunctionLength { return NewFunctionLength(src) }},
		{ID: PackageCommentID, Constructor: func() *PackageComment { return NewPackageComment(src) }},
		{ID: IdentifierNamingID, Constructor: func() *IdentifierNaming { return NewIdentifierNaming(src) }},
		{ID: LayerDependencyID, Constructor: func() *LayerDependency { return NewLayerDependency(src) }},
	}
	for _, r := range regs {
		if err := reg.Register(r); err != nil {
			return fmt.Errorf("registering built-in rules: %w", err)
		}
	}
	return nil
}

// maxLineBytes bounds bufio.Scanner tokens; discovery already caps file
// size, so a single line cannot exceed it in practice.
const maxLineBytes = 4 << 20

// scanLines calls fn for each line with its 1-based number. Returning false
// stops the scan.
func scanLines(path string, fn func(n int, line string) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	n := 0
	for sc.Scan() {
		n++
		if !fn(n, sc.Text()) {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}

func isGoFile(path string) bool { return filepath.Ext(path) == ".go" }

func isTestFile(path string) bool { return strings.HasSuffix(path, "_test.go") }

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
