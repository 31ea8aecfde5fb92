// Package runtime holds the table of external functions the IR's Apply
// instruction may call without a module-local definition: allocator and
// primitive-library entry points whose bodies borrow inference never sees
// and must therefore treat conservatively.
package runtime

// Signature describes one external function's parameter ownership
// contract. arcir.InferBorrows does not read this table: it treats every
// call to a name outside the analyzed module as requiring ownership of all
// its arguments.
type Signature struct {
	Name   string
	Params []string // parameter types, by position
	Owned  []bool   // true where the external takes ownership of that argument
}

// Intrinsics is the fixed table of known external functions, analogous to
// the teacher's builtin/stdlib module tables but scoped to what an ARC
// runtime actually exports: allocation, string and collection primitives.
var Intrinsics = map[string]Signature{
	"rt::panic": {
		Name:   "rt::panic",
		Params: []string{"Str"},
		Owned:  []bool{true},
	},
	"rt::str_concat": {
		Name:   "rt::str_concat",
		Params: []string{"Str", "Str"},
		Owned:  []bool{true, true},
	},
	"rt::str_len": {
		Name:   "rt::str_len",
		Params: []string{"Str"},
		Owned:  []bool{false},
	},
	"rt::array_len": {
		Name:   "rt::array_len",
		Params: []string{"Array"},
		Owned:  []bool{false},
	},
	"rt::array_get": {
		Name:   "rt::array_get",
		Params: []string{"Array", "Int"},
		Owned:  []bool{false, false},
	},
	"rt::print": {
		Name:   "rt::print",
		Params: []string{"Str"},
		Owned:  []bool{false},
	},
}

// Lookup returns the intrinsic named name, if any.
func Lookup(name string) (Signature, bool) {
	sig, ok := Intrinsics[name]
	return sig, ok
}

// IsKnown reports whether name names a registered external.
func IsKnown(name string) bool {
	_, ok := Intrinsics[name]
	return ok
}

// OwnedAt reports whether the intrinsic named name requires ownership of
// its argument at position pos. An unregistered name conservatively
// requires ownership everywhere, matching arcir's unknown-callee rule.
func OwnedAt(name string, pos int) bool {
	sig, ok := Intrinsics[name]
	if !ok {
		return true
	}
	if pos >= len(sig.Owned) {
		return true
	}
	return sig.Owned[pos]
}
