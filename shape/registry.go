package shape

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrDuplicateName = errors.New("shape: duplicate name")
	ErrDangling      = errors.New("shape: dangling reference")
	ErrResolved      = errors.New("shape: registry already resolved")
)

// Registry is the arena of named shapes. Define every Enum and Record, then
// call Resolve once to bind all references reachable from them. After Resolve
// the registry and its shapes are read-only.
type Registry struct {
	mu       sync.RWMutex
	named    map[string]Named
	order    []string
	resolved bool
}

func NewRegistry() *Registry {
	return &Registry{named: make(map[string]Named)}
}

// Define adds a named shape.
func (r *Registry) Define(n Named) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return ErrResolved
	}
	if n.Name() == "" {
		return ErrEmptyName
	}
	if _, dup := r.named[n.Name()]; dup {
		return fmt.Errorf("%w: %s", ErrDuplicateName, n.Name())
	}
	r.named[n.Name()] = n
	r.order = append(r.order, n.Name())
	return nil
}

// Lookup returns the named shape.
func (r *Registry) Lookup(name string) (Named, bool) {
	r.mu.RLock()
	n, ok := r.named[name]
	r.mu.RUnlock()
	return n, ok
}

// Names lists the defined names in definition order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Resolved reports whether Resolve has completed successfully.
func (r *Registry) Resolved() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved
}

// Resolve binds every reference reachable from the defined shapes, plus any
// extra roots (e.g. a top-level SequenceOf(Ref("X")) built outside the
// registry). All dangling names are reported together.
func (r *Registry) Resolve(roots ...Shape) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	missing := map[string]struct{}{}
	var conflict error
	bind := func(ref *RefShape) {
		target, ok := r.named[ref.name]
		if !ok {
			missing[ref.name] = struct{}{}
			return
		}
		if ref.target != nil && ref.target != target {
			conflict = fmt.Errorf("shape: reference %q already bound to a different shape", ref.name)
			return
		}
		ref.target = target
	}

	for _, name := range r.order {
		walkRefs(r.named[name], bind)
	}
	for _, s := range roots {
		walkRefs(s, bind)
	}
	if conflict != nil {
		return conflict
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for n := range missing {
			names = append(names, n)
		}
		sort.Strings(names)
		return fmt.Errorf("%w: %s", ErrDangling, strings.Join(names, ", "))
	}
	r.resolved = true
	return nil
}

// walkRefs visits every RefShape below s without following references, so it
// terminates on recursive schemas.
func walkRefs(s Shape, visit func(*RefShape)) {
	switch v := s.(type) {
	case *RefShape:
		visit(v)
	case *Record:
		for _, f := range v.fields {
			walkRefs(f.Shape, visit)
		}
	case *Sequence:
		walkRefs(v.Elem, visit)
	case *Mapping:
		walkRefs(v.Elem, visit)
	case *Optional:
		walkRefs(v.Elem, visit)
	}
}
