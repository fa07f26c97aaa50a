package rules

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
)

const LayerDependencyID = "architecture.LayerDependency"

// layer ranks: an inner layer may not import an outer one.
const (
	layerNone = iota
	layerDomain
	layerApplication
	layerAdapters
)

// layerNames maps directory names to hexagonal layers.
var layerNames = map[string]int{
	"domain":         layerDomain,
	"ports":          layerDomain,
	"application":    layerApplication,
	"app":            layerApplication,
	"core":           layerApplication,
	"adapters":       layerAdapters,
	"adapter":        layerAdapters,
	"infrastructure": layerAdapters,
	"infra":          layerAdapters,
}

var layerLabels = map[int]string{
	layerDomain:      "domain",
	layerApplication: "application",
	layerAdapters:    "adapters",
}

// LayerDependency enforces the hexagonal dependency direction inside
// internal/: domain imports neither application nor adapters, and
// application does not import adapters. Both per-feature
// (internal/{feature}/{layer}) and cross-cutting (internal/{layer}/...)
// layouts are recognized.
type LayerDependency struct {
	src Source
}

func NewLayerDependency(src Source) *LayerDependency { return &LayerDependency{src: src} }

func (r *LayerDependency) Descriptor() domain.RuleDescriptor {
	return domain.RuleDescriptor{
		Category:    domain.CategoryArchitecture,
		Name:        "Layer dependency",
		Description: "Inner hexagonal layers must not import outer ones (domain <- application <- adapters).",
		Severity:    domain.SeverityError,
		Tags:        []string{"hexagonal", "imports"},
		Version:     "1.0.0",
		Author:      author,
	}
}

func (r *LayerDependency) Check(path string) ([]domain.Diagnostic, error) {
	if !isGoFile(path) || isTestFile(path) {
		return nil, nil
	}
	own := layerOf(filepath.ToSlash(filepath.Dir(path)))
	if own == layerNone || own == layerAdapters {
		return nil, nil
	}
	af, err := r.src.GetOrParse(path)
	if err != nil {
		return nil, err
	}

	var out []domain.Diagnostic
	for _, imp := range af.Imports {
		if !strings.Contains(imp, "/internal/") {
			continue
		}
		if dep := layerOf(imp); dep > own {
			out = append(out, domain.Diagnostic{
				Message: fmt.Sprintf("%s layer imports %s layer package %q", layerLabels[own], layerLabels[dep], imp),
				Bad:     fmt.Sprintf("import %q", imp),
				Good:    "depend on a port interface declared in an inner layer",
			})
		}
	}
	return out, nil
}

// layerOf classifies a slash-separated path by the first layer directory
// below its last "internal" segment.
func layerOf(p string) int {
	parts := strings.Split(p, "/")
	idx := -1
	for i, s := range parts {
		if s == "internal" {
			idx = i
		}
	}
	if idx == -1 {
		return layerNone
	}
	for _, s := range parts[idx+1:] {
		if l, ok := layerNames[s]; ok {
			return l
		}
	}
	return layerNone
}
