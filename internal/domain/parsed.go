package domain

// AnalyzedFile is the parsed representation of one source file that
// rules share through the diagnostic cache.
type AnalyzedFile struct {
	Path        string       `json:"path"`
	Package     string       `json:"package"`
	PackageDoc  string       `json:"package_doc,omitempty"`
	Lines       int          `json:"lines"`
	Imports     []string     `json:"imports,omitempty"`
	Functions   []Function   `json:"functions,omitempty"`
	Identifiers []Identifier `json:"identifiers,omitempty"`
}

// Function is a function or method declaration.
type Function struct {
	Name      string `json:"name"`
	Receiver  string `json:"receiver,omitempty"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
	Exported  bool   `json:"exported"`
}

// Length returns the number of source lines the function spans.
func (f Function) Length() int {
	if f.LineEnd < f.LineStart {
		return 0
	}
	return f.LineEnd - f.LineStart + 1
}

// Identifier is a named top-level declaration.
type Identifier struct {
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Line     int    `json:"line"`
	Exported bool   `json:"exported"`
}

// CodeAnalyzer parses a source file into an AnalyzedFile.
type CodeAnalyzer interface {
	AnalyzeFile(filePath string) (*AnalyzedFile, error)
}
