package domain

// Validation issue types reported by the rule validator.
const (
	IssueClassNotFound                 = "class_not_found"
	IssueClassNotInstantiable          = "class_not_instantiable"
	IssueInterfaceNotImplemented       = "interface_not_implemented"
	IssueMissingCheckMethod            = "missing_check_method"
	IssueCheckMethodNotPublic          = "check_method_not_public"
	IssueInvalidCheckMethodParameters  = "invalid_check_method_parameters"
	IssueInvalidCheckMethodReturnType  = "invalid_check_method_return_type"
	IssueConstructorRequiresParameters = "constructor_requires_parameters"
	IssueMissingPackage                = "missing_package"
	IssueMissingExtension              = "missing_extension"
	IssueMissingDescription            = "missing_description"
	IssueMissingName                   = "missing_name"
	IssueInvalidMetadata               = "invalid_metadata"
	IssueFullFileRead                  = "full_file_read"
	IssueUncachedParser                = "uncached_parser"
)

// ValidationIssue is one error, warning or note about a rule identifier.
type ValidationIssue struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
	Severity   string `json:"severity"`
}

// ValidationResult is the outcome of checking one rule identifier.
type ValidationResult struct {
	RuleID     string            `json:"rule_id"`
	Valid      bool              `json:"is_valid"`
	Errors     []ValidationIssue `json:"errors"`
	Warnings   []ValidationIssue `json:"warnings"`
	Info       []string          `json:"info"`
	Descriptor *RuleDescriptor   `json:"descriptor,omitempty"`
}

// HasError reports whether an error of the given type was recorded.
func (v ValidationResult) HasError(issueType string) bool {
	for _, e := range v.Errors {
		if e.Type == issueType {
			return true
		}
	}
	return false
}

// HasWarning reports whether a warning of the given type was recorded.
func (v ValidationResult) HasWarning(issueType string) bool {
	for _, w := range v.Warnings {
		if w.Type == issueType {
			return true
		}
	}
	return false
}
