package arcir

// freshInstID hands out a monotonically increasing instruction ID, used by
// passes that synthesize new instructions (expand_reuse's branch
// structure, borrow inference never needs one since it only rewrites
// ownership in place).
func (f *Function) freshInstID() int {
	f.nextInst++
	return f.nextInst
}

// NewFunction builds an empty function with a single empty entry block,
// ready for a caller (typically internal/irtext) to populate.
func NewFunction(name string, params []Param, retType string) *Function {
	fn := &Function{
		Name:     name,
		Params:   params,
		RetType:  retType,
		Blocks:   map[BlockID]*BasicBlock{},
		VarTypes: map[VarID]string{},
		Spans:    map[BlockID][]*Span{},
	}
	for _, p := range params {
		fn.VarTypes[p.Var] = p.Type
		if uint32(p.Var) > uint32(fn.nextVar) {
			fn.nextVar = p.Var
		}
	}
	entry := fn.FreshBlock()
	fn.Entry = entry
	fn.Blocks[entry] = &BasicBlock{ID: entry}
	return fn
}

// AddBlock registers a new empty block and returns its ID.
func (f *Function) AddBlock() BlockID {
	id := f.FreshBlock()
	f.Blocks[id] = &BasicBlock{ID: id}
	return id
}

// Emit appends inst to block bid as given. It does not assign an
// instruction ID and does not touch the block's span slice.
func (f *Function) Emit(bid BlockID, inst Instruction) {
	b := f.Blocks[bid]
	assertf(b != nil, "emit into unknown block %d", bid)
	b.Instrs = append(b.Instrs, inst)
}
