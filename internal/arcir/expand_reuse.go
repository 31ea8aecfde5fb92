package arcir

// ExpandResetReuse rewrites every Reset/Reuse instruction pair in fn into
// an explicit uniqueness check: a fast path that mutates the reset value's
// memory in place, and a slow path that drops it and allocates fresh. Two
// peepholes run as part of each rewrite: projection-increment erasure and
// self-set elimination. cls answers which field types carry a refcount,
// needed to decide whether an overwritten field must be decremented on the
// fast path.
func ExpandResetReuse(fn *Function, cls Classifier) {
	if fn.Spans == nil {
		fn.Spans = map[BlockID][]*Span{}
	}
	projections := collectProjections(fn)

	queue := fn.BlockIDs()
	for len(queue) > 0 {
		bid := queue[0]
		queue = queue[1:]
		if fn.Blocks[bid] == nil {
			continue
		}
		created, expandedAgain := expandBlockOnce(fn, bid, projections, cls)
		if expandedAgain {
			queue = append(queue, bid)
		}
		queue = append(queue, created...)
	}
	alignSpans(fn)
}

// collectProjections maps (base, field) -> the first variable that
// projects it, across the whole function. Self-set elimination, projection
// increment erasure, and dec-on-overwrite all use this to recognize a
// field's prior value.
func collectProjections(fn *Function) map[VarID]map[int]VarID {
	out := map[VarID]map[int]VarID{}
	for _, bid := range fn.BlockIDs() {
		for _, inst := range fn.Blocks[bid].Instrs {
			proj, ok := inst.(*Project)
			if !ok {
				continue
			}
			if out[proj.Base] == nil {
				out[proj.Base] = map[int]VarID{}
			}
			if _, exists := out[proj.Base][proj.Field]; !exists {
				out[proj.Base][proj.Field] = proj.Result
			}
		}
	}
	return out
}

// findResetReusePair locates the earliest Reset in instrs together with
// the first Reuse after it that consumes its token.
func findResetReusePair(instrs []Instruction) (iReset, iReuse int, ok bool) {
	for i, inst := range instrs {
		reset, isReset := inst.(*Reset)
		if !isReset {
			continue
		}
		for j := i + 1; j < len(instrs); j++ {
			reuse, isReuse := instrs[j].(*Reuse)
			if isReuse && reuse.Token == reset.Result {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// padSpans grows spans with trailing nils (no recorded position) until it
// is at least n long, adopting span tracking for a block that arrived
// without it rather than letting Instrs and Spans drift out of alignment.
func padSpans(spans []*Span, n int) []*Span {
	for len(spans) < n {
		spans = append(spans, nil)
	}
	return spans
}

// expandBlockOnce expands at most one Reset/Reuse pair in block bid. It
// reports the IDs of any newly created blocks, and whether bid itself may
// still contain another pair worth revisiting.
func expandBlockOnce(fn *Function, bid BlockID, projections map[VarID]map[int]VarID, cls Classifier) (created []BlockID, again bool) {
	b := fn.Blocks[bid]
	iReset, iReuse, ok := findResetReusePair(b.Instrs)
	if !ok {
		return nil, false
	}

	origSpans := padSpans(fn.Spans[bid], len(b.Instrs))

	resetInst := b.Instrs[iReset].(*Reset)
	reuseInst := b.Instrs[iReuse].(*Reuse)

	prefix := append([]Instruction(nil), b.Instrs[:iReset]...)
	prefixSpans := append([]*Span(nil), origSpans[:iReset]...)
	between := append([]Instruction(nil), b.Instrs[iReset+1:iReuse]...)
	betweenSpans := append([]*Span(nil), origSpans[iReset+1:iReuse]...)
	suffix := append([]Instruction(nil), b.Instrs[iReuse+1:]...)
	suffixSpans := append([]*Span(nil), origSpans[iReuse+1:]...)

	prefix = append(prefix, between...)
	prefixSpans = append(prefixSpans, betweenSpans...)

	claimed := eraseProjectionIncrements(&prefix, &prefixSpans, projections[resetInst.Var])

	sharedVar := fn.FreshVar()
	fn.VarTypes[sharedVar] = "Bool"
	fastID := fn.FreshBlock()
	slowID := fn.FreshBlock()

	byField := projections[resetInst.Var]
	fastInstrs := make([]Instruction, 0, 2*len(reuseInst.Fields)+1)
	fastSpans := make([]*Span, 0, cap(fastInstrs))
	for field, arg := range reuseInst.Fields {
		if isSelfSet(projections, resetInst.Var, field, arg) {
			continue
		}
		if _, isClaimed := claimed[field]; !isClaimed {
			if oldVal, hasOld := byField[field]; hasOld && cls.NeedsRC(fn.TypeOf(oldVal)) {
				fastInstrs = append(fastInstrs, &RcDec{InstID: fn.freshInstID(), Var: oldVal})
				fastSpans = append(fastSpans, nil)
			}
		}
		fastInstrs = append(fastInstrs, &Set{InstID: fn.freshInstID(), Base: resetInst.Var, Field: field, Value: arg})
		fastSpans = append(fastSpans, nil)
	}
	if reuseInst.Variant {
		fastInstrs = append(fastInstrs, &SetTag{InstID: fn.freshInstID(), Base: resetInst.Var, Tag: reuseInst.Tag})
		fastSpans = append(fastSpans, nil)
	}

	slowFreshVar := fn.FreshVar()
	fn.VarTypes[slowFreshVar] = fn.TypeOf(reuseInst.Result)
	slowInstrs := make([]Instruction, 0, len(claimed)+2)
	slowSpans := make([]*Span, 0, cap(slowInstrs))
	slowInstrs = append(slowInstrs, &RcDec{InstID: fn.freshInstID(), Var: resetInst.Var})
	slowSpans = append(slowSpans, nil)
	for _, field := range sortedFields(claimed) {
		slowInstrs = append(slowInstrs, &RcInc{InstID: fn.freshInstID(), Var: claimed[field], Count: 1})
		slowSpans = append(slowSpans, nil)
	}
	slowInstrs = append(slowInstrs, &Construct{InstID: fn.freshInstID(), Result: slowFreshVar, Tag: reuseInst.Tag, Fields: reuseInst.Fields})
	slowSpans = append(slowSpans, nil)

	prefix = append(prefix, &IsShared{InstID: fn.freshInstID(), Result: sharedVar, Var: resetInst.Var})
	prefixSpans = append(prefixSpans, nil)

	// Try to elide the merge block: if there's nothing after Reuse and
	// the block's own terminator just returns the Reuse result, each
	// branch can return directly instead of joining first.
	if len(suffix) == 0 {
		if ret, isRet := b.Term.(*Return); isRet && usesExactly(ret.Values, reuseInst.Result) {
			b.Instrs = prefix
			fn.Spans[bid] = prefixSpans
			b.Term = &Branch{InstID: fn.freshInstID(), Cond: sharedVar, Then: slowID, Else: fastID}

			fn.Blocks[fastID] = &BasicBlock{ID: fastID, Instrs: fastInstrs, Term: substituteReturn(ret, reuseInst.Result, resetInst.Var)}
			fn.Blocks[slowID] = &BasicBlock{ID: slowID, Instrs: slowInstrs, Term: substituteReturn(ret, reuseInst.Result, slowFreshVar)}
			fn.Spans[fastID] = fastSpans
			fn.Spans[slowID] = slowSpans
			return []BlockID{fastID, slowID}, true
		}
	}

	mergeID := fn.FreshBlock()
	origTerm := b.Term
	fn.Blocks[fastID] = &BasicBlock{ID: fastID, Instrs: fastInstrs, Term: &Jump{InstID: fn.freshInstID(), Target: mergeID, Args: []VarID{resetInst.Var}}}
	fn.Blocks[slowID] = &BasicBlock{ID: slowID, Instrs: slowInstrs, Term: &Jump{InstID: fn.freshInstID(), Target: mergeID, Args: []VarID{slowFreshVar}}}
	fn.Spans[fastID] = fastSpans
	fn.Spans[slowID] = slowSpans

	b.Instrs = prefix
	fn.Spans[bid] = prefixSpans
	b.Term = &Branch{InstID: fn.freshInstID(), Cond: sharedVar, Then: slowID, Else: fastID}

	fn.Blocks[mergeID] = &BasicBlock{ID: mergeID, Params: []VarID{reuseInst.Result}, Instrs: suffix, Term: origTerm}
	fn.Spans[mergeID] = suffixSpans

	return []BlockID{fastID, slowID, mergeID}, true
}

// sortedFields returns the keys of a field->var map in ascending order, so
// slow-path restoration instructions come out in a deterministic order.
func sortedFields(m map[int]VarID) []int {
	out := make([]int, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func usesExactly(values []VarID, want VarID) bool {
	return len(values) == 1 && values[0] == want
}

func substituteReturn(ret *Return, from, to VarID) *Return {
	values := make([]VarID, len(ret.Values))
	for i, v := range ret.Values {
		if v == from {
			values[i] = to
		} else {
			values[i] = v
		}
	}
	return &Return{InstID: ret.InstID, Values: values}
}

// eraseProjectionIncrements removes, from instrs (with spans kept in
// lockstep), any RcInc of count 1 on a variable that was projected out of
// the var Reset is about to check, since the fast path implicitly owns
// every field of a uniquely-held parent and the slow path's fresh
// Construct restores ownership explicitly. It returns the claimed fields:
// field index -> the projected variable whose increment was erased, so the
// slow path can re-issue it and the fast path knows not to double-decrement
// that field on overwrite.
func eraseProjectionIncrements(instrs *[]Instruction, spans *[]*Span, byField map[int]VarID) map[int]VarID {
	claimed := map[int]VarID{}
	for field, projVar := range byField {
		idx := findLastRcInc(*instrs, projVar)
		if idx < 0 {
			continue
		}
		inc := (*instrs)[idx].(*RcInc)
		if inc.Count != 1 || observesBetween(*instrs, idx, projVar) {
			continue
		}
		*instrs = append((*instrs)[:idx], (*instrs)[idx+1:]...)
		if idx < len(*spans) {
			*spans = append((*spans)[:idx], (*spans)[idx+1:]...)
		}
		claimed[field] = projVar
	}
	return claimed
}

func findLastRcInc(instrs []Instruction, v VarID) int {
	for i := len(instrs) - 1; i >= 0; i-- {
		if inc, ok := instrs[i].(*RcInc); ok && inc.Var == v {
			return i
		}
	}
	return -1
}

// observesBetween reports whether any instruction after position idx
// reads, decrements, or otherwise inspects v's refcount, which would make
// erasing the RcInc at idx unsound.
func observesBetween(instrs []Instruction, idx int, v VarID) bool {
	for i := idx + 1; i < len(instrs); i++ {
		for _, u := range instrs[i].Uses() {
			if u == v {
				return true
			}
		}
	}
	return false
}

// isSelfSet reports whether writing value into base's field would just
// restore the value the field already holds.
func isSelfSet(projections map[VarID]map[int]VarID, base VarID, field int, value VarID) bool {
	byField, ok := projections[base]
	if !ok {
		return false
	}
	return byField[field] == value
}
