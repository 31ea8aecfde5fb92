package arcir

// Classifier answers the two questions borrow inference and RC peephole
// need about a type and cannot derive from the IR alone. It is supplied by
// the caller (see internal/classify for a concrete implementation) and
// never implemented inside this package.
type Classifier interface {
	// IsScalar reports whether a value of this type carries no refcount at
	// all (integers, booleans, addresses, ...). Scalars are never subject
	// to RcInc/RcDec/IsShared and are exempt from ownership promotion.
	IsScalar(typ string) bool

	// NeedsRC reports whether a value of this type is a heap object
	// managed by reference counting. A type can be non-scalar without
	// needing RC (e.g. an unboxed tuple of scalars); NeedsRC is the
	// narrower question RcInc/RcDec insertion actually depends on.
	NeedsRC(typ string) bool
}
