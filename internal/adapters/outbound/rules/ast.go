package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/camelcase"

	"github.com/openkraft/kraftlint/internal/domain"
)

const (
	FunctionLengthID   = "maintainability.FunctionLength"
	PackageCommentID   = "documentation.PackageComment"
	IdentifierNamingID = "style.IdentifierNaming"

	DefaultMaxFunctionLines = 80
	DefaultMaxNameWords     = 5
)

// FunctionLength flags functions and methods spanning too many lines.
type FunctionLength struct {
	src Source
	max int
}

func NewFunctionLength(src Source) *FunctionLength {
	return &FunctionLength{src: src, max: DefaultMaxFunctionLines}
}

func (r *FunctionLength) Descriptor() domain.RuleDescriptor {
	return domain.RuleDescriptor{
		Category:         domain.CategoryMaintainability,
		Name:             "Function length",
		Description:      fmt.Sprintf("Functions longer than %d lines are hard to read and test.", r.max),
		Severity:         domain.SeverityWarning,
		Tags:             []string{"size", "complexity"},
		EnabledByDefault: true,
		Options: []domain.OptionSpec{
			{Name: "max", Type: "int", Default: DefaultMaxFunctionLines, Description: "maximum lines per function"},
		},
		Version: "1.0.0",
		Author:  author,
	}
}

func (r *FunctionLength) Check(path string) ([]domain.Diagnostic, error) {
	if !isGoFile(path) {
		return nil, nil
	}
	af, err := r.src.GetOrParse(path)
	if err != nil {
		return nil, err
	}
	var out []domain.Diagnostic
	for _, fn := range af.Functions {
		if n := fn.Length(); n > r.max {
			out = append(out, domain.Diagnostic{
				Message: fmt.Sprintf("%s is %d lines long, limit is %d", qualified(fn), n, r.max),
				Line:    fn.LineStart,
				Good:    "extract cohesive steps into helper functions",
			})
		}
	}
	return out, nil
}

func qualified(fn domain.Function) string {
	if fn.Receiver == "" {
		return fn.Name
	}
	return fn.Receiver + "." + fn.Name
}

// PackageComment requires each package to carry a doc comment in at least
// one of its files. The finding is reported once per package, on the
// alphabetically first non-test file of the directory that the run checks.
type PackageComment struct {
	src     Source
	checked map[string]bool // nil until SetFiles; then every sibling counts
}

func NewPackageComment(src Source) *PackageComment { return &PackageComment{src: src} }

func (r *PackageComment) Descriptor() domain.RuleDescriptor {
	return domain.RuleDescriptor{
		Category:         domain.CategoryDocumentation,
		Name:             "Package comment",
		Description:      "Every package should have a package comment describing its purpose.",
		Severity:         domain.SeveritySuggestion,
		Tags:             []string{"godoc"},
		EnabledByDefault: true,
		Version:          "1.0.0",
		Author:           author,
	}
}

// SetFiles restricts the files the finding may be reported on to those the
// run checks, so a package whose first file is excluded is still reported.
func (r *PackageComment) SetFiles(files []string) {
	r.checked = make(map[string]bool, len(files))
	for _, f := range files {
		r.checked[f] = true
	}
}

func (r *PackageComment) Check(path string) ([]domain.Diagnostic, error) {
	if !isGoFile(path) || isTestFile(path) {
		return nil, nil
	}
	af, err := r.src.GetOrParse(path)
	if err != nil {
		return nil, err
	}
	if af.Package == "main" || af.PackageDoc != "" {
		return nil, nil
	}

	dir := filepath.Dir(path)
	siblings, err := packageFiles(dir)
	if err != nil {
		return nil, err
	}
	if first := r.firstChecked(dir, siblings); first != filepath.Base(path) {
		return nil, nil
	}
	for _, name := range siblings {
		if name == filepath.Base(path) {
			continue
		}
		sib, err := r.src.GetOrParse(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if sib.Package == af.Package && sib.PackageDoc != "" {
			return nil, nil
		}
	}
	return []domain.Diagnostic{{
		Message: fmt.Sprintf("package %s has no package comment", af.Package),
		Line:    1,
		Good:    fmt.Sprintf("// Package %s ...\npackage %s", af.Package, af.Package),
	}}, nil
}

// firstChecked returns the first sibling the run checks. Doc comments are
// still looked for in every sibling.
func (r *PackageComment) firstChecked(dir string, siblings []string) string {
	for _, name := range siblings {
		if r.checked == nil || r.checked[filepath.Join(dir, name)] {
			return name
		}
	}
	return ""
}

// packageFiles lists the non-test Go files of dir in sorted order.
func packageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isGoFile(e.Name()) || isTestFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// vagueWords make a single-word exported function name uninformative.
var vagueWords = map[string]bool{
	"Handle": true, "Process": true, "Data": true, "Do": true,
	"Execute": true, "Manage": true, "Util": true, "Helper": true,
	"Stuff": true, "Thing": true, "Temp": true,
}

// IdentifierNaming checks exported identifiers for MixedCaps, overly long
// names and vague single-word function names.
type IdentifierNaming struct {
	src      Source
	maxWords int
}

func NewIdentifierNaming(src Source) *IdentifierNaming {
	return &IdentifierNaming{src: src, maxWords: DefaultMaxNameWords}
}

func (r *IdentifierNaming) Descriptor() domain.RuleDescriptor {
	return domain.RuleDescriptor{
		Category:         domain.CategoryStyle,
		Name:             "Identifier naming",
		Description:      "Exported names use MixedCaps, stay short and say what they do.",
		Severity:         domain.SeveritySuggestion,
		Tags:             []string{"naming", "readability"},
		EnabledByDefault: true,
		Options: []domain.OptionSpec{
			{Name: "max_words", Type: "int", Default: DefaultMaxNameWords, Description: "maximum CamelCase words in an exported name"},
		},
		Version: "1.0.0",
		Author:  author,
	}
}

func (r *IdentifierNaming) Check(path string) ([]domain.Diagnostic, error) {
	if !isGoFile(path) {
		return nil, nil
	}
	af, err := r.src.GetOrParse(path)
	if err != nil {
		return nil, err
	}
	testFile := isTestFile(path)

	var out []domain.Diagnostic
	for _, id := range af.Identifiers {
		if !id.Exported {
			continue
		}
		if testFile && (id.Kind == "func" || id.Kind == "method") {
			continue // Test_Foo and friends are conventional
		}
		if strings.Contains(id.Name, "_") {
			out = append(out, domain.Diagnostic{
				Message: fmt.Sprintf("%s %s uses underscores", id.Kind, id.Name),
				Line:    id.Line,
				Bad:     id.Name,
				Good:    mixedCaps(id.Name),
			})
			continue
		}
		words := camelcase.Split(id.Name)
		switch {
		case len(words) > r.maxWords:
			out = append(out, domain.Diagnostic{
				Message: fmt.Sprintf("%s %s has %d words, limit is %d", id.Kind, id.Name, len(words), r.maxWords),
				Line:    id.Line,
				Bad:     id.Name,
			})
		case len(words) == 1 && id.Kind == "func" && vagueWords[id.Name]:
			out = append(out, domain.Diagnostic{
				Message: fmt.Sprintf("function name %s is too vague", id.Name),
				Line:    id.Line,
				Bad:     id.Name,
				Good:    id.Name + "Order, " + id.Name + "Request",
			})
		}
	}
	return out, nil
}

// mixedCaps turns SOME_NAME or Some_name into SomeName.
func mixedCaps(name string) string {
	var b strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)
		r, size := utf8.DecodeRuneInString(lower)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(lower[size:])
	}
	return b.String()
}
