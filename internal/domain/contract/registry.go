// Package contract resolves rule identifiers to rule instances and checks,
// before any file is scanned, that each registered rule can be built and
// honors the domain.Rule contract.
package contract

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/openkraft/kraftlint/internal/domain"
)

var (
	ErrUnknownRule      = errors.New("unknown rule")
	ErrDuplicateRule    = errors.New("rule already registered")
	ErrNotInstantiable  = errors.New("rule is not instantiable")
	ErrRequiresArgs     = errors.New("rule constructor requires parameters")
	ErrNotImplementRule = errors.New("value does not implement domain.Rule")
)

// Registration binds a rule identifier to its constructor.
//
// Constructor must be a function with no required parameters returning the
// rule, optionally followed by an error: func() T, func() (T, error), or
// func(opts ...Option) T. Abstract marks a base registration that exists
// only to be embedded and must never be run.
type Registration struct {
	ID          string
	Constructor any
	Abstract    bool
}

// Registry maps rule identifiers to registrations. It is safe for
// concurrent use.
type Registry struct {
	mu   sync.RWMutex
	regs map[string]Registration
}

func NewRegistry() *Registry {
	return &Registry{regs: make(map[string]Registration)}
}

// Register adds a registration. The identifier must be unique and non-empty.
func (r *Registry) Register(reg Registration) error {
	if reg.ID == "" {
		return errors.New("rule identifier must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[reg.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, reg.ID)
	}
	r.regs[reg.ID] = reg
	return nil
}

// MustRegister is Register for init-time wiring; it panics on error.
func (r *Registry) MustRegister(reg Registration) {
	if err := r.Register(reg); err != nil {
		panic(err)
	}
}

// Lookup returns the registration for id.
func (r *Registry) Lookup(id string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[id]
	return reg, ok
}

// IDs returns every registered identifier in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.regs))
	for id := range r.regs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// New builds a fresh rule instance for id.
func (r *Registry) New(id string) (domain.Rule, error) {
	reg, ok := r.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, id)
	}
	v, err := instantiate(reg)
	if err != nil {
		return nil, err
	}
	rule, ok := v.(domain.Rule)
	if !ok {
		return nil, fmt.Errorf("%w: %s (%T)", ErrNotImplementRule, id, v)
	}
	return rule, nil
}

// Factory returns a constructor closure bound to id, for callers that need
// one instance per worker.
func (r *Registry) Factory(id string) func() (domain.Rule, error) {
	return func() (domain.Rule, error) { return r.New(id) }
}

// Defaults returns, in sorted order, the identifiers whose rules declare
// EnabledByDefault. Registrations that cannot be built are skipped.
func (r *Registry) Defaults() []string {
	var ids []string
	for _, id := range r.IDs() {
		rule, err := r.New(id)
		if err != nil {
			continue
		}
		desc, err := safeDescriptor(rule)
		if err == nil && desc.EnabledByDefault {
			ids = append(ids, id)
		}
	}
	return ids
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// requiredParams counts the constructor parameters a caller must supply.
// A trailing variadic parameter is optional.
func requiredParams(ct reflect.Type) int {
	n := ct.NumIn()
	if ct.IsVariadic() {
		n--
	}
	return n
}

// instantiate calls the registration's constructor with no arguments.
// Panics raised by the constructor are returned as errors.
func instantiate(reg Registration) (v any, err error) {
	if reg.Abstract {
		return nil, fmt.Errorf("%w: %s is registered as abstract", ErrNotInstantiable, reg.ID)
	}
	if reg.Constructor == nil {
		return nil, fmt.Errorf("%w: %s has no constructor", ErrNotInstantiable, reg.ID)
	}

	cv := reflect.ValueOf(reg.Constructor)
	ct := cv.Type()
	if ct.Kind() != reflect.Func {
		return nil, fmt.Errorf("%w: %s constructor is a %s, not a function", ErrNotInstantiable, reg.ID, ct.Kind())
	}
	if n := requiredParams(ct); n > 0 {
		return nil, fmt.Errorf("%w: %s constructor takes %d required parameter(s)", ErrRequiresArgs, reg.ID, n)
	}
	switch {
	case ct.NumOut() == 1:
	case ct.NumOut() == 2 && ct.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("%w: %s constructor must return (T) or (T, error)", ErrNotInstantiable, reg.ID)
	}

	defer func() {
		if p := recover(); p != nil {
			v = nil
			err = fmt.Errorf("%w: %s constructor panicked: %v", ErrNotInstantiable, reg.ID, p)
		}
	}()

	out := cv.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("%w: %s constructor failed: %v", ErrNotInstantiable, reg.ID, out[1].Interface())
	}
	if isNilValue(out[0]) {
		return nil, fmt.Errorf("%w: %s constructor returned nil", ErrNotInstantiable, reg.ID)
	}
	return out[0].Interface(), nil
}

func isNilValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	default:
		return false
	}
}
