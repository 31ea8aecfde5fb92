// Package classify provides the concrete arcir.Classifier implementation:
// a small registry of known types, distinguishing scalars (never
// reference-counted) from heap types that do need RC bookkeeping.
package classify

// Registry answers arcir.Classifier's two questions from a fixed table of
// scalar types plus a caller-extensible set of RC-managed types.
type Registry struct {
	scalars map[string]bool
	rcTypes map[string]bool
}

// scalarTypes are built-in value types with no heap representation.
var scalarTypes = map[string]bool{
	"Int":     true,
	"Bool":    true,
	"Float":   true,
	"Address": true,
	"Unit":    true,
}

// NewRegistry creates a Registry seeded with the built-in scalar types.
func NewRegistry() *Registry {
	return &Registry{
		scalars: cloneSet(scalarTypes),
		rcTypes: map[string]bool{},
	}
}

// RegisterScalar marks typ as carrying no refcount (e.g. a newtype wrapper
// over a built-in scalar).
func (r *Registry) RegisterScalar(typ string) {
	r.scalars[typ] = true
	delete(r.rcTypes, typ)
}

// RegisterRC marks typ as a heap type managed by reference counting
// (structs, arrays, strings, closures, and similar).
func (r *Registry) RegisterRC(typ string) {
	r.rcTypes[typ] = true
}

// RegisterObservedTypes registers every type name in types that isn't
// already known as a scalar as an RC type. Callers that read type
// annotations from untyped input (a .oir file, an LSP buffer) use this to
// seed a Registry without requiring an explicit type declaration section.
func (r *Registry) RegisterObservedTypes(types []string) {
	for _, t := range types {
		if t == "" || r.scalars[t] {
			continue
		}
		r.RegisterRC(t)
	}
}

// IsScalar implements arcir.Classifier.
func (r *Registry) IsScalar(typ string) bool {
	return r.scalars[typ]
}

// NeedsRC implements arcir.Classifier.
func (r *Registry) NeedsRC(typ string) bool {
	if r.scalars[typ] {
		return false
	}
	return r.rcTypes[typ]
}

func cloneSet(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
