package arcir

// EliminateRC removes RcInc/RcDec pairs on the same variable that have no
// intervening observation of its refcount, first within each block and
// then across block-to-block edges with a single predecessor. It returns
// the number of pairs removed.
func EliminateRC(fn *Function) int {
	total := 0
	for {
		n := eliminateLocal(fn)
		n += eliminateCrossBlock(fn)
		total += n
		if n == 0 {
			alignSpans(fn)
			return total
		}
	}
}

// EliminateRCDataflow runs EliminateRC and then additionally cancels the
// inc/inc/dec diamond shape (see eliminateDiamond). It takes no per-variable
// ownership classification, and it does not cancel pairs whose variable is
// renamed through block parameters.
func EliminateRCDataflow(fn *Function) int {
	total := EliminateRC(fn)
	for {
		n := eliminateDiamond(fn)
		n += eliminateLocal(fn)
		n += eliminateCrossBlock(fn)
		total += n
		if n == 0 {
			alignSpans(fn)
			return total
		}
	}
}

// eliminateLocal removes intra-block RcInc/RcDec pairs with no
// intervening use. Only a Count==1 increment is eligible: a batched
// increment would need its count rewritten rather than the instruction
// deleted outright, which this pass doesn't attempt.
func eliminateLocal(fn *Function) int {
	count := 0
	for _, bid := range fn.BlockIDs() {
		b := fn.Blocks[bid]
		spans := padSpans(fn.Spans[bid], len(b.Instrs))
		for {
			removed := false
			for i, inst := range b.Instrs {
				inc, ok := inst.(*RcInc)
				if !ok || inc.Count != 1 {
					continue
				}
				j := findMatchingDec(b.Instrs, i+1, inc.Var)
				if j < 0 {
					continue
				}
				b.Instrs = removeIndices(b.Instrs, i, j)
				spans = removeSpanIndices(spans, i, j)
				count++
				removed = true
				break
			}
			if !removed {
				break
			}
		}
		if fn.Spans != nil {
			fn.Spans[bid] = spans
		}
	}
	return count
}

// findMatchingDec finds the first RcDec of v at or after start with no
// intervening instruction that observes v.
func findMatchingDec(instrs []Instruction, start int, v VarID) int {
	for i := start; i < len(instrs); i++ {
		if dec, ok := instrs[i].(*RcDec); ok && dec.Var == v {
			return i
		}
		for _, u := range instrs[i].Uses() {
			if u == v {
				return -1
			}
		}
	}
	return -1
}

// removeIndices removes the elements at i and j (i < j) from instrs.
func removeIndices(instrs []Instruction, i, j int) []Instruction {
	out := make([]Instruction, 0, len(instrs)-2)
	for k, inst := range instrs {
		if k == i || k == j {
			continue
		}
		out = append(out, inst)
	}
	return out
}

// removeSpanIndices mirrors removeIndices for a block's span slice,
// keeping it index-aligned with Instrs after the same removal.
func removeSpanIndices(spans []*Span, i, j int) []*Span {
	out := make([]*Span, 0, len(spans))
	for k, s := range spans {
		if k == i || k == j {
			continue
		}
		out = append(out, s)
	}
	return out
}

// eliminateCrossBlock removes an RcInc that is the last instruction of a
// block whose only successor is reached unconditionally and has exactly
// one predecessor, paired with an RcDec that is the first instruction of
// that successor, as long as the edge's terminator does not itself
// reference the variable.
func eliminateCrossBlock(fn *Function) int {
	preds := predecessorCounts(fn)
	count := 0
	for {
		removed := false
		for _, bid := range fn.BlockIDs() {
			b := fn.Blocks[bid]
			if b == nil || len(b.Instrs) == 0 || b.Term == nil {
				continue
			}
			jump, ok := b.Term.(*Jump)
			if !ok {
				continue
			}
			last, ok := b.Instrs[len(b.Instrs)-1].(*RcInc)
			if !ok || last.Count != 1 {
				continue
			}
			if termUses(b.Term, last.Var) {
				continue
			}
			if preds[jump.Target] != 1 {
				continue
			}
			succ := fn.Blocks[jump.Target]
			if succ == nil || len(succ.Instrs) == 0 {
				continue
			}
			dec, ok := succ.Instrs[0].(*RcDec)
			if !ok || dec.Var != last.Var {
				continue
			}
			// Block parameters may rename the variable across the edge;
			// only eliminate when no block parameter aliases it, since an
			// aliased rename means the successor's reference is read
			// through a different name than the one just incremented.
			if aliasesParam(jump, succ, last.Var) {
				continue
			}
			b.Instrs = b.Instrs[:len(b.Instrs)-1]
			succ.Instrs = succ.Instrs[1:]
			if fn.Spans != nil {
				if bs := padSpans(fn.Spans[bid], len(b.Instrs)+1); len(bs) > 0 {
					fn.Spans[bid] = bs[:len(bs)-1]
				}
				if ss := padSpans(fn.Spans[jump.Target], len(succ.Instrs)+1); len(ss) > 0 {
					fn.Spans[jump.Target] = ss[1:]
				}
			}
			count++
			removed = true
		}
		if !removed {
			return count
		}
	}
}

func termUses(t Terminator, v VarID) bool {
	for _, u := range t.Uses() {
		if u == v {
			return true
		}
	}
	return false
}

func aliasesParam(jump *Jump, succ *BasicBlock, v VarID) bool {
	for i, a := range jump.Args {
		if a == v && i < len(succ.Params) {
			return true
		}
	}
	return false
}

func predecessorCounts(fn *Function) map[BlockID]int {
	counts := map[BlockID]int{}
	for _, bid := range fn.BlockIDs() {
		b := fn.Blocks[bid]
		if b == nil || b.Term == nil {
			continue
		}
		for _, s := range b.Term.Successors() {
			counts[s]++
		}
	}
	return counts
}

// eliminateDiamond cancels the shape left behind by reset/reuse expansion
// when both arms of a Branch independently RcInc the same variable as
// their first instruction and the common merge block RcDec's it as its
// first instruction: every path increments then immediately decrements,
// with no observation in between, so all three instructions can go.
func eliminateDiamond(fn *Function) int {
	preds := predecessorCounts(fn)
	count := 0
	for _, bid := range fn.BlockIDs() {
		b := fn.Blocks[bid]
		if b == nil {
			continue
		}
		br, ok := b.Term.(*Branch)
		if !ok {
			continue
		}
		thenB, elseB := fn.Blocks[br.Then], fn.Blocks[br.Else]
		if thenB == nil || elseB == nil {
			continue
		}
		thenInc, ok1 := firstInstr(thenB).(*RcInc)
		elseInc, ok2 := firstInstr(elseB).(*RcInc)
		if !ok1 || !ok2 || thenInc.Var != elseInc.Var || thenInc.Count != 1 || elseInc.Count != 1 {
			continue
		}
		thenJump, ok1 := thenB.Term.(*Jump)
		elseJump, ok2 := elseB.Term.(*Jump)
		if !ok1 || !ok2 || thenJump.Target != elseJump.Target {
			continue
		}
		merge := fn.Blocks[thenJump.Target]
		if merge == nil || preds[thenJump.Target] != 2 {
			continue
		}
		dec, ok := firstInstr(merge).(*RcDec)
		if !ok || dec.Var != thenInc.Var {
			continue
		}
		if aliasesParam(thenJump, merge, thenInc.Var) || aliasesParam(elseJump, merge, elseInc.Var) {
			continue
		}
		thenB.Instrs = thenB.Instrs[1:]
		elseB.Instrs = elseB.Instrs[1:]
		merge.Instrs = merge.Instrs[1:]
		if fn.Spans != nil {
			dropFirstSpan(fn, br.Then, len(thenB.Instrs))
			dropFirstSpan(fn, br.Else, len(elseB.Instrs))
			dropFirstSpan(fn, thenJump.Target, len(merge.Instrs))
		}
		count++
	}
	return count
}

// dropFirstSpan removes the leading span entry for block bid, padding
// first if the span slice hadn't been tracking this block's instructions.
func dropFirstSpan(fn *Function, bid BlockID, remaining int) {
	spans := padSpans(fn.Spans[bid], remaining+1)
	fn.Spans[bid] = spans[1:]
}

func firstInstr(b *BasicBlock) Instruction {
	if b == nil || len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[0]
}
