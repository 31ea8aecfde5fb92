package arcir

import "testing"

// Running the whole pipeline end to end on a small two-function program,
// with Debug assertions on, must not panic.
func TestPipeline_EndToEnd(t *testing.T) {
	Debug = true
	defer func() { Debug = false }()

	f := &Function{
		Name:     "make_pair",
		Params:   []Param{{Var: 1, Type: "Int"}, {Var: 2, Type: "Int"}},
		RetType:  "Pair",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Int", 2: "Int", 3: "Pair"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID:     0,
				Instrs: []Instruction{&Construct{InstID: 1, Result: 3, Tag: "Pair", Fields: []VarID{1, 2}}},
				Term:   &Return{InstID: 2, Values: []VarID{3}},
			},
		},
	}
	g := &Function{
		Name:     "forward",
		Params:   []Param{{Var: 1, Type: "Int"}, {Var: 2, Type: "Int"}},
		RetType:  "Pair",
		Entry:    0,
		VarTypes: map[VarID]string{1: "Int", 2: "Int", 3: "Pair"},
		Blocks: map[BlockID]*BasicBlock{
			0: {
				ID:     0,
				Instrs: []Instruction{&Apply{InstID: 1, Result: 3, Callee: "make_pair", Args: []VarID{1, 2}, Tail: true}},
				Term:   &Return{InstID: 2, Values: []VarID{3}},
			},
		},
	}
	prog := &Program{Functions: map[string]*Function{"make_pair": f, "forward": g}}
	cls := newStubClassifier()
	cls.rc["Pair"] = true

	sig := InferBorrows(prog, cls)
	ApplyBorrows(prog, sig)

	// Both Int parameters are scalar and never appear in the ownership
	// lattice in the first place; nothing here should panic or crash
	// regardless of their zero-value Ownership.
	for _, name := range prog.FunctionNames() {
		fn := prog.Functions[name]
		ExpandResetReuse(fn, cls)
		EliminateRC(fn)
		_ = PrintFunction(fn)
	}
}
