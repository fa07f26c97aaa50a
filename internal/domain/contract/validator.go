package contract

import (
	"errors"
	"fmt"
	"os/exec"
	"reflect"
	"sort"
	"strings"

	"github.com/openkraft/kraftlint/internal/domain"
)

// Option configures a Validator.
type Option func(*Validator)

// WithCapabilities advertises host capabilities that satisfy
// RequireExtension declarations.
func WithCapabilities(names ...string) Option {
	return func(v *Validator) {
		for _, n := range names {
			v.capabilities[n] = true
		}
	}
}

// WithLookPath replaces exec.LookPath for RequirePackage probes.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(v *Validator) { v.lookPath = fn }
}

// Validator checks rule identifiers against a Registry without running
// any rule.
type Validator struct {
	registry     *Registry
	lookPath     func(string) (string, error)
	capabilities map[string]bool
}

func NewValidator(registry *Registry, opts ...Option) *Validator {
	v := &Validator{
		registry:     registry,
		lookPath:     exec.LookPath,
		capabilities: make(map[string]bool),
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// ValidateAll validates each identifier in order.
func (v *Validator) ValidateAll(ids []string) []domain.ValidationResult {
	results := make([]domain.ValidationResult, 0, len(ids))
	for _, id := range ids {
		results = append(results, v.Validate(id))
	}
	return results
}

// Validate checks one identifier: existence, instantiability, contract
// conformance, Check signature, zero-argument construction, declared
// dependencies and metadata advisories. It never panics.
func (v *Validator) Validate(id string) domain.ValidationResult {
	res := &result{r: domain.ValidationResult{
		RuleID:   id,
		Errors:   []domain.ValidationIssue{},
		Warnings: []domain.ValidationIssue{},
		Info:     []string{},
	}}

	reg, ok := v.registry.Lookup(id)
	if !ok {
		res.fail(domain.IssueClassNotFound,
			fmt.Sprintf("rule %q is not registered", id),
			v.suggestFor(id))
		return res.done()
	}

	inst, err := instantiate(reg)
	if err != nil {
		switch {
		case errors.Is(err, ErrRequiresArgs):
			res.fail(domain.IssueConstructorRequiresParameters, err.Error(),
				"make every constructor parameter optional, e.g. func(opts ...Option) *Rule, and read settings from options")
		default:
			res.fail(domain.IssueClassNotInstantiable, err.Error(),
				"register a concrete rule type with a constructor returning a non-nil value")
		}
		return res.done()
	}
	res.note(fmt.Sprintf("constructed %T", inst))

	rule, ok := inst.(domain.Rule)
	if !ok {
		res.fail(domain.IssueInterfaceNotImplemented,
			fmt.Sprintf("%T does not implement domain.Rule", inst),
			"implement Descriptor() domain.RuleDescriptor and Check(path string) ([]domain.Diagnostic, error)")
		checkSignature(res, reflect.TypeOf(inst))
		return res.done()
	}

	desc, err := safeDescriptor(rule)
	if err != nil {
		res.fail(domain.IssueClassNotInstantiable, err.Error(), "Descriptor must not panic")
		return res.done()
	}

	v.checkRequirements(res, desc)
	checkMetadata(res, desc)
	checkTraits(res, desc)

	d := desc.Clone()
	res.r.Descriptor = &d
	res.note(fmt.Sprintf("category %s, severity %s, enabled by default: %t", desc.Category, desc.Severity, desc.EnabledByDefault))
	return res.done()
}

type result struct {
	r domain.ValidationResult
}

func (r *result) fail(kind, msg, suggestion string) {
	r.r.Errors = append(r.r.Errors, domain.ValidationIssue{
		Type: kind, Message: msg, Suggestion: suggestion, Severity: domain.SeverityError,
	})
}

func (r *result) warn(kind, msg, suggestion string) {
	r.r.Warnings = append(r.r.Warnings, domain.ValidationIssue{
		Type: kind, Message: msg, Suggestion: suggestion, Severity: domain.SeverityWarning,
	})
}

func (r *result) note(msg string) { r.r.Info = append(r.r.Info, msg) }

func (r *result) done() domain.ValidationResult {
	r.r.Valid = len(r.r.Errors) == 0
	return r.r
}

var (
	diagnosticSliceType = reflect.TypeOf([]domain.Diagnostic(nil))
	stringType          = reflect.TypeOf("")
)

// checkSignature explains why a type failed the Rule contract by looking at
// its Check method.
func checkSignature(res *result, t reflect.Type) {
	m, ok := t.MethodByName("Check")
	if !ok {
		if t.Kind() != reflect.Pointer {
			if _, onPtr := reflect.PointerTo(t).MethodByName("Check"); onPtr {
				res.fail(domain.IssueCheckMethodNotPublic,
					fmt.Sprintf("Check is declared on *%s but the constructor returns %s", t, t),
					"return a pointer from the constructor")
				return
			}
		}
		res.fail(domain.IssueMissingCheckMethod,
			fmt.Sprintf("%s has no exported Check method", t),
			"add Check(path string) ([]domain.Diagnostic, error)")
		return
	}

	mt := m.Type // In(0) is the receiver
	if mt.NumIn() != 2 || mt.In(1) != stringType {
		res.fail(domain.IssueInvalidCheckMethodParameters,
			fmt.Sprintf("%s.Check has signature %s; it must take exactly one string", t, mt),
			"declare Check(path string)")
	}
	if mt.NumOut() == 0 || mt.Out(0).Kind() != reflect.Slice {
		res.fail(domain.IssueInvalidCheckMethodReturnType,
			fmt.Sprintf("%s.Check must return a slice of diagnostics", t),
			"return ([]domain.Diagnostic, error)")
		return
	}
	if mt.Out(0) != diagnosticSliceType || mt.NumOut() != 2 || mt.Out(1) != errorType {
		res.fail(domain.IssueInvalidCheckMethodReturnType,
			fmt.Sprintf("%s.Check returns %s; want ([]domain.Diagnostic, error)", t, outTypes(mt)),
			"return ([]domain.Diagnostic, error)")
	}
}

func outTypes(mt reflect.Type) string {
	parts := make([]string, 0, mt.NumOut())
	for i := 0; i < mt.NumOut(); i++ {
		parts = append(parts, mt.Out(i).String())
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func safeDescriptor(rule domain.Rule) (desc domain.RuleDescriptor, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%T.Descriptor panicked: %v", rule, p)
		}
	}()
	return rule.Descriptor(), nil
}

func (v *Validator) checkRequirements(res *result, desc domain.RuleDescriptor) {
	for _, req := range desc.Requires {
		switch req.Kind {
		case domain.RequirePackage:
			if _, err := v.lookPath(req.Name); err != nil {
				res.warn(domain.IssueMissingPackage,
					fmt.Sprintf("required package %q was not found on PATH", req.Name),
					fmt.Sprintf("install %s; the rule may only partially work without it", req.Name))
			}
		case domain.RequireExtension:
			if !v.capabilities[req.Name] {
				res.warn(domain.IssueMissingExtension,
					fmt.Sprintf("required capability %q is not available", req.Name),
					fmt.Sprintf("enable %s in the host or drop the rule", req.Name))
			}
		default:
			res.warn(domain.IssueInvalidMetadata,
				fmt.Sprintf("requirement %q has unknown kind %q", req.Name, req.Kind),
				"use kind \"package\" or \"extension\"")
		}
	}
}

func checkMetadata(res *result, desc domain.RuleDescriptor) {
	if strings.TrimSpace(desc.Name) == "" {
		res.warn(domain.IssueMissingName, "rule descriptor has no name", "set RuleDescriptor.Name")
	}
	if strings.TrimSpace(desc.Description) == "" {
		res.warn(domain.IssueMissingDescription, "rule descriptor has no description",
			"describe what the rule detects and how to fix it")
	}
	if !desc.Category.IsValid() {
		res.warn(domain.IssueInvalidMetadata,
			fmt.Sprintf("unknown category %q", desc.Category),
			"use one of the domain.Category constants; diagnostics fall back to general")
	}
	if !domain.IsValidSeverity(desc.Severity) {
		res.warn(domain.IssueInvalidMetadata,
			fmt.Sprintf("unknown severity %q", desc.Severity),
			"use error, warning, info or suggestion; diagnostics fall back to warning")
	}
}

func checkTraits(res *result, desc domain.RuleDescriptor) {
	if desc.HasTrait(domain.TraitFullFileRead) {
		res.warn(domain.IssueFullFileRead, "rule reads whole files into memory",
			"stream the file with bufio.Scanner or respect discovery.max_file_size")
	}
	if desc.HasTrait(domain.TraitUncachedParser) {
		res.warn(domain.IssueUncachedParser, "rule builds a parser per file without caching",
			"share parsed files through the parse cache")
	}
}

// suggestFor names the closest registered identifiers. The result is never
// empty.
func (v *Validator) suggestFor(id string) string {
	ids := v.registry.IDs()
	if len(ids) == 0 {
		return "no rules are registered; register one with contract.Registry.Register"
	}

	type candidate struct {
		id   string
		dist int
	}
	lowered := strings.ToLower(id)
	var cands []candidate
	for _, known := range ids {
		lk := strings.ToLower(known)
		d := levenshtein(lowered, lk)
		if strings.HasSuffix(lk, "."+lowered) || strings.HasSuffix(lowered, "."+lastSegment(lk)) {
			d = 0
		}
		if d <= max(2, len(id)/3) {
			cands = append(cands, candidate{known, d})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	if len(cands) > 0 {
		names := make([]string, 0, 3)
		for i := 0; i < len(cands) && i < 3; i++ {
			names = append(names, cands[i].id)
		}
		return "did you mean " + strings.Join(names, ", ") + "?"
	}

	shown := ids
	if len(shown) > 5 {
		shown = shown[:5]
	}
	return fmt.Sprintf("check the spelling; registered rules include %s", strings.Join(shown, ", "))
}

func lastSegment(id string) string {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return id[i+1:]
	}
	return id
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
