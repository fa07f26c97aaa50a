package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyMessage is returned by Diagnostic.Validate when Message is blank.
var ErrEmptyMessage = errors.New("diagnostic message is required")

// Diagnostic is one finding produced by a rule for one file.
type Diagnostic struct {
	Message  string   `json:"message"`
	File     string   `json:"file"`
	Line     int      `json:"line,omitempty"`
	Bad      string   `json:"bad,omitempty"`
	Good     string   `json:"good,omitempty"`
	Severity string   `json:"severity"`
	Category Category `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	RuleID   string   `json:"rule_id"`
}

// Validate checks the diagnostic invariants. Only Message is mandatory;
// every other field is filled from the rule when empty.
func (d Diagnostic) Validate() error {
	if strings.TrimSpace(d.Message) == "" {
		return ErrEmptyMessage
	}
	if d.Line < 0 {
		return fmt.Errorf("diagnostic line %d is negative", d.Line)
	}
	return nil
}

// key identifies a diagnostic for deduplication.
func (d Diagnostic) key() string {
	return fmt.Sprintf("%s\x00%s\x00%d\x00%s", d.RuleID, d.File, d.Line, d.Message)
}

// DedupDiagnostics drops repeats of the same rule/file/line/message,
// keeping the first occurrence and the original order.
func DedupDiagnostics(in []Diagnostic) []Diagnostic {
	seen := make(map[string]bool, len(in))
	out := make([]Diagnostic, 0, len(in))
	for _, d := range in {
		k := d.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}
