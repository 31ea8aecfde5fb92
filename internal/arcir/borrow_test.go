package arcir

import "testing"

type stubClassifier struct {
	scalars map[string]bool
	rc      map[string]bool
}

func (s *stubClassifier) IsScalar(typ string) bool { return s.scalars[typ] }
func (s *stubClassifier) NeedsRC(typ string) bool  { return s.rc[typ] }

func newStubClassifier() *stubClassifier {
	return &stubClassifier{
		scalars: map[string]bool{"Int": true, "Bool": true},
		rc:      map[string]bool{"Str": true, "Box": true, "Pair": true},
	}
}

// Scenario 1: a function that reads a field out of its parameter (via
// Project) and returns the projection forces the parameter Owned, since
// the projected field's dst is a local (owned by definition) and the
// caller mustn't free the parent while the projection is still live.
func TestInferBorrows_ProjectionPropagatesOwnership(t *testing.T) {
	fn := &Function{
		Name:     "get_first",
		Params:   []Param{{Var: 1, Type: "Pair"}},
		RetType:  "Int",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Pair", 2: "Int"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID: 0,
				Instrs: []Instruction{
					&Project{InstID: 1, Result: 2, Base: 1, Field: 0},
				},
				Term: &Return{InstID: 2, Values: []VarID{2}},
			},
		},
	}
	prog := &Program{Functions: map[string]*Function{"get_first": fn}}
	cls := newStubClassifier()

	sig := InferBorrows(prog, cls)
	if sig["get_first"].Params[0] != Owned {
		t.Fatalf("expected param to promote to Owned via projection, got %s", sig["get_first"].Params[0])
	}
}

// A parameter returned directly (not through a projection or a call) must
// also be promoted to Owned: the caller will dec it after the call returns.
func TestInferBorrows_ReturnedParamBecomesOwned(t *testing.T) {
	fn := &Function{
		Name:     "identity",
		Params:   []Param{{Var: 1, Type: "Str"}},
		RetType:  "Str",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Str"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID:   0,
				Term: &Return{InstID: 1, Values: []VarID{1}},
			},
		},
	}
	prog := &Program{Functions: map[string]*Function{"identity": fn}}
	sig := InferBorrows(prog, newStubClassifier())
	if sig["identity"].Params[0] != Owned {
		t.Fatalf("expected returned param to be Owned, got %s", sig["identity"].Params[0])
	}
}

// Scenario 2: a function that embeds its parameter into a freshly
// constructed object forces the parameter to Owned.
func TestInferBorrows_StorePromotesToOwned(t *testing.T) {
	fn := &Function{
		Name:     "wrap",
		Params:   []Param{{Var: 1, Type: "Str"}},
		RetType:  "Box",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Str", 2: "Box"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID: 0,
				Instrs: []Instruction{
					&Construct{InstID: 1, Result: 2, Tag: "Box", Fields: []VarID{1}},
				},
				Term: &Return{InstID: 2, Values: []VarID{2}},
			},
		},
	}
	prog := &Program{Functions: map[string]*Function{"wrap": fn}}
	cls := newStubClassifier()

	sig := InferBorrows(prog, cls)
	if sig["wrap"].Params[0] != Owned {
		t.Fatalf("expected param to promote to Owned, got %s", sig["wrap"].Params[0])
	}
}

// Scenario 3: g tail-calls f, threading its own parameter straight
// through. f only reads its parameter, so f's parameter stays Borrowed,
// and that keeps g's parameter Borrowed too instead of forcing Owned
// merely because it crosses a call boundary.
func TestInferBorrows_TailCallPreservesBorrowed(t *testing.T) {
	f := &Function{
		Name:     "f",
		Params:   []Param{{Var: 1, Type: "Str"}},
		RetType:  "Int",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Str", 2: "Int"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID: 0,
				Instrs: []Instruction{
					&Let{InstID: 1, Result: 2, Op: "str_len", Args: []VarID{1}},
				},
				Term: &Return{InstID: 2, Values: []VarID{2}},
			},
		},
	}
	g := &Function{
		Name:     "g",
		Params:   []Param{{Var: 1, Type: "Str"}},
		RetType:  "Int",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Str", 2: "Int"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID: 0,
				Instrs: []Instruction{
					&Apply{InstID: 1, Result: 2, Callee: "f", Args: []VarID{1}, Tail: true},
				},
				Term: &Return{InstID: 2, Values: []VarID{2}},
			},
		},
	}
	prog := &Program{Functions: map[string]*Function{"f": f, "g": g}}
	cls := newStubClassifier()

	sig := InferBorrows(prog, cls)
	if sig["f"].Params[0] != Borrowed {
		t.Fatalf("expected f's param to stay Borrowed, got %s", sig["f"].Params[0])
	}
	if sig["g"].Params[0] != Borrowed {
		t.Fatalf("expected g's param to stay Borrowed since f borrows it, got %s", sig["g"].Params[0])
	}
}

// A parameter decremented directly (ownership released) must be Owned.
func TestInferBorrows_DirectDecForcesOwned(t *testing.T) {
	fn := &Function{
		Name:     "drop_it",
		Params:   []Param{{Var: 1, Type: "Str"}},
		RetType:  "Int",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Str", 2: "Int"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID: 0,
				Instrs: []Instruction{
					&RcDec{InstID: 1, Var: 1},
					&Let{InstID: 2, Result: 2, Op: "const_zero"},
				},
				Term: &Return{InstID: 3, Values: []VarID{2}},
			},
		},
	}
	prog := &Program{Functions: map[string]*Function{"drop_it": fn}}
	sig := InferBorrows(prog, newStubClassifier())
	if sig["drop_it"].Params[0] != Owned {
		t.Fatalf("expected param decremented directly to be Owned, got %s", sig["drop_it"].Params[0])
	}
}

// A call to an unrecognized (not module-local) callee conservatively
// requires ownership of every non-scalar argument it receives.
func TestInferBorrows_UnknownCalleeForcesOwned(t *testing.T) {
	fn := &Function{
		Name:     "caller",
		Params:   []Param{{Var: 1, Type: "Str"}},
		RetType:  "Int",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Str", 2: "Int"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID: 0,
				Instrs: []Instruction{
					&Apply{InstID: 1, Result: 2, Callee: "rt::str_len_unregistered", Args: []VarID{1}},
				},
				Term: &Return{InstID: 2, Values: []VarID{2}},
			},
		},
	}
	prog := &Program{Functions: map[string]*Function{"caller": fn}}
	sig := InferBorrows(prog, newStubClassifier())
	if sig["caller"].Params[0] != Owned {
		t.Fatalf("expected param passed to unknown callee to be Owned, got %s", sig["caller"].Params[0])
	}
}

func TestApplyBorrows_WritesBackOwnership(t *testing.T) {
	fn := &Function{
		Name:     "wrap",
		Params:   []Param{{Var: 1, Type: "Str"}},
		VarTypes: map[VarID]string{1: "Str", 2: "Box"},
		Entry:    0,
		Blocks: map[BlockID]*BasicBlock{
			0: {ID: 0, Instrs: []Instruction{&Construct{InstID: 1, Result: 2, Tag: "Box", Fields: []VarID{1}}}, Term: &Return{InstID: 2, Values: []VarID{2}}},
		},
	}
	prog := &Program{Functions: map[string]*Function{"wrap": fn}}
	sig := InferBorrows(prog, newStubClassifier())
	ApplyBorrows(prog, sig)
	if fn.Params[0].Ownership != Owned {
		t.Fatalf("expected ApplyBorrows to write Owned back onto the function, got %s", fn.Params[0].Ownership)
	}
}
