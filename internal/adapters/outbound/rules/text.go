package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/openkraft/kraftlint/internal/domain"
)

const (
	LineLengthID      = "style.LineLength"
	FileLengthID      = "maintainability.FileLength"
	TodoCommentID     = "best-practice.TodoComment"
	HardcodedSecretID = "security.HardcodedSecret"

	DefaultMaxLineLength = 120
	DefaultMaxFileLines  = 800
)

// LineLength flags lines longer than a character limit.
type LineLength struct {
	max int
}

type LineLengthOption func(*LineLength)

// WithMaxLineLength sets the limit; values below 1 keep the default.
func WithMaxLineLength(n int) LineLengthOption {
	return func(r *LineLength) {
		if n > 0 {
			r.max = n
		}
	}
}

func NewLineLength(opts ...LineLengthOption) *LineLength {
	r := &LineLength{max: DefaultMaxLineLength}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *LineLength) Descriptor() domain.RuleDescriptor {
	return domain.RuleDescriptor{
		Category:         domain.CategoryStyle,
		Name:             "Line length",
		Description:      fmt.Sprintf("Lines should not exceed %d characters.", r.max),
		Severity:         domain.SeverityWarning,
		Tags:             []string{"readability"},
		EnabledByDefault: true,
		Options: []domain.OptionSpec{
			{Name: "max", Type: "int", Default: DefaultMaxLineLength, Description: "maximum characters per line"},
		},
		Version: "1.0.0",
		Author:  author,
	}
}

func (r *LineLength) Check(path string) ([]domain.Diagnostic, error) {
	var out []domain.Diagnostic
	err := scanLines(path, func(n int, line string) bool {
		if l := utf8.RuneCountInString(strings.TrimRight(line, "\r")); l > r.max {
			out = append(out, domain.Diagnostic{
				Message: fmt.Sprintf("line is %d characters long, limit is %d", l, r.max),
				Line:    n,
				Bad:     truncate(line, 80),
				Good:    "wrap the expression or extract a variable",
			})
		}
		return true
	})
	return out, err
}

// FileLength flags files with more lines than a limit.
type FileLength struct {
	max int
}

type FileLengthOption func(*FileLength)

// WithMaxFileLines sets the limit; values below 1 keep the default.
func WithMaxFileLines(n int) FileLengthOption {
	return func(r *FileLength) {
		if n > 0 {
			r.max = n
		}
	}
}

func NewFileLength(opts ...FileLengthOption) *FileLength {
	r := &FileLength{max: DefaultMaxFileLines}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *FileLength) Descriptor() domain.RuleDescriptor {
	return domain.RuleDescriptor{
		Category:         domain.CategoryMaintainability,
		Name:             "File length",
		Description:      fmt.Sprintf("Files should stay under %d lines; split large files by responsibility.", r.max),
		Severity:         domain.SeverityWarning,
		Tags:             []string{"size"},
		EnabledByDefault: true,
		Options: []domain.OptionSpec{
			{Name: "max", Type: "int", Default: DefaultMaxFileLines, Description: "maximum lines per file"},
		},
		Version: "1.0.0",
		Author:  author,
	}
}

func (r *FileLength) Check(path string) ([]domain.Diagnostic, error) {
	lines := 0
	if err := scanLines(path, func(n int, _ string) bool { lines = n; return true }); err != nil {
		return nil, err
	}
	if lines <= r.max {
		return nil, nil
	}
	return []domain.Diagnostic{{
		Message: fmt.Sprintf("file has %d lines, limit is %d", lines, r.max),
		Line:    r.max + 1,
		Good:    "move cohesive groups of declarations into their own files",
	}}, nil
}

var todoPattern = regexp.MustCompile(`(?://|/\*|#)\s*(TODO|FIXME|XXX|HACK)\b[:\s]*(.*)`)

// TodoComment reports unresolved TODO-style markers.
type TodoComment struct{}

func NewTodoComment() *TodoComment { return &TodoComment{} }

func (r *TodoComment) Descriptor() domain.RuleDescriptor {
	return domain.RuleDescriptor{
		Category:    domain.CategoryBestPractice,
		Name:        "TODO comments",
		Description: "Lists TODO, FIXME, XXX and HACK markers so they can be tracked.",
		Severity:    domain.SeverityInfo,
		Tags:        []string{"housekeeping"},
		Version:     "1.0.0",
		Author:      author,
	}
}

func (r *TodoComment) Check(path string) ([]domain.Diagnostic, error) {
	var out []domain.Diagnostic
	err := scanLines(path, func(n int, line string) bool {
		m := todoPattern.FindStringSubmatch(line)
		if m == nil {
			return true
		}
		msg := fmt.Sprintf("%s marker", m[1])
		if note := strings.TrimSpace(m[2]); note != "" {
			msg += ": " + truncate(note, 60)
		}
		out = append(out, domain.Diagnostic{Message: msg, Line: n})
		return true
	})
	return out, err
}

var (
	secretPattern = regexp.MustCompile(
		`(?i)\b([a-z0-9_]*(?:password|passwd|secret|api_?key|apikey|access_?token|auth_?token|private_?key)[a-z0-9_]*)\s*(?::=|=|:)\s*["'` + "`" + `]([^"'` + "`" + `]{6,})["'` + "`" + `]`)
	placeholderPattern = regexp.MustCompile(`(?i)^(?:x+|\*+|changeme|change-me|example|placeholder|your[-_a-z]*|<[^>]*>|\$\{[^}]*\})$`)
)

// HardcodedSecret flags string literals assigned to credential-like names.
type HardcodedSecret struct{}

func NewHardcodedSecret() *HardcodedSecret { return &HardcodedSecret{} }

func (r *HardcodedSecret) Descriptor() domain.RuleDescriptor {
	return domain.RuleDescriptor{
		Category:         domain.CategorySecurity,
		Name:             "Hardcoded secret",
		Description:      "Credentials must not be committed as literals; load them from the environment or a secret store.",
		Severity:         domain.SeverityError,
		Tags:             []string{"credentials"},
		EnabledByDefault: true,
		Version:          "1.0.0",
		Author:           author,
	}
}

func (r *HardcodedSecret) Check(path string) ([]domain.Diagnostic, error) {
	var out []domain.Diagnostic
	err := scanLines(path, func(n int, line string) bool {
		m := secretPattern.FindStringSubmatch(line)
		if m == nil || placeholderPattern.MatchString(m[2]) {
			return true
		}
		out = append(out, domain.Diagnostic{
			Message: fmt.Sprintf("%s is assigned a literal credential", m[1]),
			Line:    n,
			Bad:     truncate(strings.Replace(line, m[2], "****", 1), 80),
			Good:    fmt.Sprintf("%s := os.Getenv(%q)", m[1], strings.ToUpper(m[1])),
		})
		return true
	})
	return out, err
}
