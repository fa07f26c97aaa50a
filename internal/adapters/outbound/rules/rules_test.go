package rules_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openkraft/kraftlint/internal/adapters/outbound/rules"
	"github.com/openkraft/kraftlint/internal/domain"
	"github.com/openkraft/kraftlint/internal/domain/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegister_AllBuiltinsValidate(t *testing.T) {
	reg := contract.NewRegistry()
	require.NoError(t, rules.Register(reg, rules.NewParseCache(16)))

	ids := reg.IDs()
	assert.Len(t, ids, 8)
	for _, res := range contract.NewValidator(reg).ValidateAll(ids) {
		assert.True(t, res.Valid, "%s: %+v", res.RuleID, res.Errors)
		assert.Empty(t, res.Warnings, res.RuleID)
	}
	assert.NotContains(t, reg.Defaults(), rules.TodoCommentID)
	assert.Contains(t, reg.Defaults(), rules.LineLengthID)
}

func TestRegister_Twice(t *testing.T) {
	reg := contract.NewRegistry()
	require.NoError(t, rules.Register(reg, rules.NewParseCache(0)))
	assert.ErrorIs(t, rules.Register(reg, rules.NewParseCache(0)), contract.ErrDuplicateRule)
}

func TestLineLength(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n"+strings.Repeat("x", 30)+"\n// ok\n")

	diags, err := rules.NewLineLength(rules.WithMaxLineLength(20)).Check(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Line)
	assert.Contains(t, diags[0].Message, "30 characters")

	diags, err = rules.NewLineLength().Check(path)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestLineLength_MissingFileIsError(t *testing.T) {
	_, err := rules.NewLineLength().Check(filepath.Join(t.TempDir(), "gone.go"))
	assert.Error(t, err)
}

func TestFileLength(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", strings.Repeat("// line\n", 12))

	diags, err := rules.NewFileLength(rules.WithMaxFileLines(10)).Check(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 11, diags[0].Line)

	diags, err = rules.NewFileLength(rules.WithMaxFileLines(12)).Check(path)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestTodoComment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n\n// TODO: remove after v2\nvar x = 1 // FIXME\n")

	diags, err := rules.NewTodoComment().Check(path)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, "TODO marker: remove after v2", diags[0].Message)
	assert.Equal(t, 3, diags[0].Line)
	assert.Equal(t, "FIXME marker", diags[1].Message)
}

func TestHardcodedSecret(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", `package a

var dbPassword = "hunter2hunter2"
var apiKey = "changeme"
var name = "not-a-secret-value"
`)

	diags, err := rules.NewHardcodedSecret().Check(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
	assert.NotContains(t, diags[0].Bad, "hunter2")
	assert.Contains(t, diags[0].Good, "os.Getenv")
}

func TestFunctionLength(t *testing.T) {
	dir := t.TempDir()
	body := strings.Repeat("\t_ = 1\n", 85)
	path := writeFile(t, dir, "a.go", "package a\n\nfunc Long() {\n"+body+"}\n\nfunc Short() {}\n")

	diags, err := rules.NewFunctionLength(rules.NewParseCache(4)).Check(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Line)
	assert.Contains(t, diags[0].Message, "Long")
}

func TestFunctionLength_SyntaxErrorIsError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\nfunc {")

	_, err := rules.NewFunctionLength(rules.NewParseCache(4)).Check(path)
	assert.Error(t, err)
}

func TestASTRules_IgnoreNonGoFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "not go")
	cache := rules.NewParseCache(4)

	for _, r := range []domain.Rule{
		rules.NewFunctionLength(cache),
		rules.NewPackageComment(cache),
		rules.NewIdentifierNaming(cache),
	} {
		diags, err := r.Check(path)
		assert.NoError(t, err)
		assert.Empty(t, diags)
	}
}

func TestPackageComment_ReportedOncePerPackage(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "pkg/a.go", "package pkg\n")
	b := writeFile(t, dir, "pkg/b.go", "package pkg\n")
	cache := rules.NewParseCache(8)
	rule := rules.NewPackageComment(cache)

	diags, err := rule.Check(a)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "package pkg")

	diags, err = rule.Check(b)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestPackageComment_FirstFileOutsideRun(t *testing.T) {
	dir := t.TempDir()
	gen := writeFile(t, dir, "p/a_gen.go", "package p\n")
	b := writeFile(t, dir, "p/b.go", "package p\n")
	rule := rules.NewPackageComment(rules.NewParseCache(8))
	rule.SetFiles([]string{b})

	diags, err := rule.Check(b)
	require.NoError(t, err)
	require.Len(t, diags, 1, "reported on the first file the run checks")
	assert.Contains(t, diags[0].Message, "package p")

	diags, err = rule.Check(gen)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestPackageComment_DocInFileOutsideRunSatisfies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "p/a_doc.go", "// Package p does things.\npackage p\n")
	b := writeFile(t, dir, "p/b.go", "package p\n")
	rule := rules.NewPackageComment(rules.NewParseCache(8))
	rule.SetFiles([]string{b})

	diags, err := rule.Check(b)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestPackageComment_DocInSiblingSatisfies(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "pkg/a.go", "package pkg\n")
	writeFile(t, dir, "pkg/doc.go", "// Package pkg does things.\npackage pkg\n")

	diags, err := rules.NewPackageComment(rules.NewParseCache(8)).Check(a)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestPackageComment_SkipsMain(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cmd/main.go", "package main\n\nfunc main() {}\n")

	diags, err := rules.NewPackageComment(rules.NewParseCache(8)).Check(path)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestIdentifierNaming(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", `package a

const MAX_RETRIES = 3

func Process() {}

func NewVeryLongAndOverlyDescriptiveServiceName() {}

func FindOrder() {}

func helper_fn() {}
`)

	diags, err := rules.NewIdentifierNaming(rules.NewParseCache(4)).Check(path)
	require.NoError(t, err)
	require.Len(t, diags, 3)
	assert.Equal(t, "MaxRetries", diags[0].Good)
	assert.Contains(t, diags[1].Message, "too vague")
	assert.Contains(t, diags[2].Message, "words")
}

func TestIdentifierNaming_NonASCIISuggestion(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package a\n\nconst ÄRGER_COUNT = 1\n")

	diags, err := rules.NewIdentifierNaming(rules.NewParseCache(4)).Check(path)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.True(t, utf8.ValidString(diags[0].Good))
	assert.Equal(t, "ÄrgerCount", diags[0].Good)
}

func TestIdentifierNaming_TestFunctionsExempt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a_test.go", "package a\n\nimport \"testing\"\n\nfunc Test_Thing(t *testing.T) {}\n")

	diags, err := rules.NewIdentifierNaming(rules.NewParseCache(4)).Check(path)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestParseCache_SharedAcrossRules(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "// Package a is small.\npackage a\n\nfunc A() {}\n")
	cache := rules.NewParseCache(4)

	_, err := rules.NewFunctionLength(cache).Check(path)
	require.NoError(t, err)
	_, err = rules.NewIdentifierNaming(cache).Check(path)
	require.NoError(t, err)

	stats := cache.Snapshot()
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Hits)
}

func TestLayerDependency(t *testing.T) {
	dir := t.TempDir()
	domainFile := writeFile(t, dir, "internal/orders/domain/order.go", `package domain

import (
	"fmt"

	"example.com/shop/internal/orders/adapters/repository"
	"example.com/shop/internal/orders/application"
)

var _ = fmt.Sprint
var _ = repository.X
var _ = application.Y
`)
	appFile := writeFile(t, dir, "internal/orders/application/service.go", `package application

import "example.com/shop/internal/orders/domain"

var Y = domain.Z
`)
	adapterFile := writeFile(t, dir, "internal/adapters/http/handler.go", `package http

import "example.com/shop/internal/application"

var _ = application.Y
`)
	rule := rules.NewLayerDependency(rules.NewParseCache(8))

	diags, err := rule.Check(domainFile)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "domain layer imports adapters layer")
	assert.Contains(t, diags[1].Message, "domain layer imports application layer")

	diags, err = rule.Check(appFile)
	require.NoError(t, err)
	assert.Empty(t, diags, "application may import domain")

	diags, err = rule.Check(adapterFile)
	require.NoError(t, err)
	assert.Empty(t, diags, "adapters may import anything")
}

func TestLayerDependency_OutsideInternal(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "pkg/domain/x.go", "package domain\n\nimport _ \"example.com/shop/internal/adapters\"\n")

	diags, err := rules.NewLayerDependency(rules.NewParseCache(8)).Check(path)
	require.NoError(t, err)
	assert.Empty(t, diags)
}
