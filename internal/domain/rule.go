package domain

import "time"

// Category groups rules by the concern they check.
type Category string

const (
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryStyle           Category = "style"
	CategoryBestPractice    Category = "best-practice"
	CategoryMaintainability Category = "maintainability"
	CategoryCompatibility   Category = "compatibility"
	CategoryDocumentation   Category = "documentation"
	CategoryTesting         Category = "testing"
	CategoryArchitecture    Category = "architecture"
	CategoryGeneral         Category = "general"
)

// ValidRuleCategories enumerates all recognized rule categories.
var ValidRuleCategories = []Category{
	CategorySecurity, CategoryPerformance, CategoryStyle, CategoryBestPractice,
	CategoryMaintainability, CategoryCompatibility, CategoryDocumentation,
	CategoryTesting, CategoryArchitecture, CategoryGeneral,
}

// IsValid reports whether c is one of ValidRuleCategories.
func (c Category) IsValid() bool {
	for _, v := range ValidRuleCategories {
		if c == v {
			return true
		}
	}
	return false
}

const (
	SeverityError      = "error"
	SeverityWarning    = "warning"
	SeverityInfo       = "info"
	SeveritySuggestion = "suggestion"
)

// ValidSeverities enumerates the severities a rule or diagnostic may carry.
var ValidSeverities = []string{SeverityError, SeverityWarning, SeverityInfo, SeveritySuggestion}

// IsValidSeverity reports whether s is one of ValidSeverities.
func IsValidSeverity(s string) bool {
	for _, v := range ValidSeverities {
		if s == v {
			return true
		}
	}
	return false
}

// RequirementKind says how a declared runtime dependency is probed.
type RequirementKind string

const (
	// RequirePackage is an external executable that must be on PATH.
	RequirePackage RequirementKind = "package"
	// RequireExtension is a named capability the host advertises.
	RequireExtension RequirementKind = "extension"
)

// Requirement is a runtime capability a rule needs to function fully.
type Requirement struct {
	Kind RequirementKind `json:"kind" yaml:"kind"`
	Name string          `json:"name" yaml:"name"`
}

// Trait flags implementation patterns the validator warns about.
type Trait string

const (
	TraitFullFileRead   Trait = "full_file_read"
	TraitUncachedParser Trait = "uncached_parser"
)

// OptionSpec describes one configuration option a rule accepts.
type OptionSpec struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// RuleDescriptor is the identity and metadata of a rule.
type RuleDescriptor struct {
	Category         Category      `json:"category"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Severity         string        `json:"severity"`
	Tags             []string      `json:"tags,omitempty"`
	EnabledByDefault bool          `json:"enabled_by_default"`
	Options          []OptionSpec  `json:"options,omitempty"`
	Requires         []Requirement `json:"requires,omitempty"`
	Traits           []Trait       `json:"traits,omitempty"`
	Version          string        `json:"version,omitempty"`
	Author           string        `json:"author,omitempty"`
	CreatedAt        time.Time     `json:"created_at,omitzero"`
	UpdatedAt        time.Time     `json:"updated_at,omitzero"`
}

// HasTrait reports whether the descriptor declares t.
func (d RuleDescriptor) HasTrait(t Trait) bool {
	for _, tr := range d.Traits {
		if tr == t {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate a validated descriptor.
func (d RuleDescriptor) Clone() RuleDescriptor {
	out := d
	out.Tags = append([]string(nil), d.Tags...)
	out.Options = append([]OptionSpec(nil), d.Options...)
	out.Requires = append([]Requirement(nil), d.Requires...)
	out.Traits = append([]Trait(nil), d.Traits...)
	return out
}

// Rule is the capability every check must satisfy.
// Check may return an error or panic; both are treated as a fault for
// that one file.
type Rule interface {
	Descriptor() RuleDescriptor
	Check(path string) ([]Diagnostic, error)
}

// FileSetAware rules are handed the complete list of files a run checks,
// once per instance and before the first Check call.
type FileSetAware interface {
	SetFiles(files []string)
}
