package arcir

// Signature is a function's inferred parameter ownership, indexed the same
// way as Function.Params.
type Signature struct {
	Params []Ownership
}

// InferBorrows computes, for every function in prog, the minimal ownership
// each parameter must have. It is pure: prog is read but never mutated.
// Call ApplyBorrows with the result to write ownership back onto the IR.
//
// The analysis is a whole-module monotone fixed point: a parameter only
// ever moves Borrowed -> Owned, never back, so repeatedly rescanning every
// function until nothing changes terminates in at most as many rounds as
// there are non-scalar parameters in the module.
func InferBorrows(prog *Program, cls Classifier) map[string]*Signature {
	sig := make(map[string]*Signature, len(prog.Functions))
	names := prog.FunctionNames()
	for _, name := range names {
		fn := prog.Functions[name]
		sig[name] = &Signature{Params: make([]Ownership, len(fn.Params))}
	}

	bound := 0
	for _, name := range names {
		for _, p := range prog.Functions[name].Params {
			if !cls.IsScalar(p.Type) {
				bound++
			}
		}
	}

	for iter := 0; iter <= bound; iter++ {
		changed := false
		for _, name := range names {
			fn := prog.Functions[name]
			// Clone this function's own signature before scanning so that
			// reads of every function's current signature (including this
			// one's) and the eventual write-back never alias the same
			// slice while the scan is in progress.
			working := append([]Ownership(nil), sig[name].Params...)
			if scanFunction(fn, sig, working, cls) {
				changed = true
			}
			sig[name].Params = working
		}
		if !changed {
			break
		}
		assertf(iter < bound, "borrow inference did not converge within %d rounds", bound)
	}
	return sig
}

// ApplyBorrows writes the inferred signatures back onto each function's
// parameters.
func ApplyBorrows(prog *Program, sig map[string]*Signature) {
	for name, fn := range prog.Functions {
		s, ok := sig[name]
		if !ok {
			continue
		}
		for i := range fn.Params {
			if i < len(s.Params) {
				fn.Params[i].Ownership = s.Params[i]
			}
		}
	}
}

// scanFunction rescans fn once against the module's current (possibly
// still-converging) signatures, promoting entries in working from Borrowed
// to Owned as required. It reports whether it promoted anything.
func scanFunction(fn *Function, sig map[string]*Signature, working []Ownership, cls Classifier) bool {
	origin := map[VarID]int{}
	for i, p := range fn.Params {
		if !cls.IsScalar(p.Type) {
			origin[p.Var] = i
		}
	}

	// Phase 1: propagate param origin through Project and through block
	// parameters along Jump/Branch/Switch edges, to a local fixed point.
	// This lets a field read off a parameter several blocks downstream,
	// or a parameter threaded through block arguments at a loop header,
	// still trace back to the parameter it came from.
	blockIDs := fn.BlockIDs()
	for round := 0; round <= len(blockIDs); round++ {
		added := false
		for _, bid := range blockIDs {
			b := fn.Blocks[bid]
			for _, inst := range b.Instrs {
				if proj, ok := inst.(*Project); ok {
					if idx, ok := origin[proj.Base]; ok {
						if _, already := origin[proj.Result]; !already {
							origin[proj.Result] = idx
							added = true
						}
					}
				}
			}
			if b.Term == nil {
				continue
			}
			propagate := func(target BlockID, args []VarID) {
				tb := fn.Blocks[target]
				if tb == nil {
					return
				}
				for i, a := range args {
					if i >= len(tb.Params) {
						break
					}
					if idx, ok := origin[a]; ok {
						if _, already := origin[tb.Params[i]]; !already {
							origin[tb.Params[i]] = idx
							added = true
						}
					}
				}
			}
			switch t := b.Term.(type) {
			case *Jump:
				propagate(t.Target, t.Args)
			case *Branch:
				propagate(t.Then, t.ThenArgs)
				propagate(t.Else, t.ElseArgs)
			case *Switch:
				for _, c := range t.Cases {
					propagate(c.Target, c.Args)
				}
				if t.Default != nil {
					propagate(t.Default.Target, t.Default.Args)
				}
			}
		}
		if !added {
			break
		}
	}

	// Phase 2: apply the promotion rules over the now-stable origin map.
	changed := false
	promote := func(idx int) {
		if working[idx] != Owned {
			working[idx] = Owned
			changed = true
		}
	}
	needsRC := func(v VarID) bool {
		return cls.NeedsRC(fn.TypeOf(v))
	}
	calleeRequiresOwned := func(callee string, pos int) bool {
		calleeSig, known := sig[callee]
		if !known {
			// Unknown callee: the borrow-inference precondition is that
			// every call target resolves to a module function or a
			// registered external; an unresolved name is conservatively
			// treated as requiring full ownership of its arguments.
			return true
		}
		if pos >= len(calleeSig.Params) {
			return true
		}
		return calleeSig.Params[pos] == Owned
	}

	for _, bid := range blockIDs {
		b := fn.Blocks[bid]
		for _, inst := range b.Instrs {
			switch in := inst.(type) {
			case *RcDec:
				if idx, ok := origin[in.Var]; ok {
					promote(idx)
				}
			case *Project:
				// dst is always a fresh local, and locals are owned by
				// definition (§3.6): the base it was read from must be
				// owned too, or the caller could free the parent out from
				// under the still-live projection. Unlike the other rules
				// this one doesn't gate on needsRC(dst) — dst's type isn't
				// the point; base's is, and Construct/Set/etc. below cover
				// that when base itself is later embedded or stored.
				if idx, ok := origin[in.Base]; ok {
					promote(idx)
				}
			case *Construct:
				for _, f := range in.Fields {
					if idx, ok := origin[f]; ok && needsRC(f) {
						promote(idx)
					}
				}
			case *Reuse:
				for _, f := range in.Fields {
					if idx, ok := origin[f]; ok && needsRC(f) {
						promote(idx)
					}
				}
			case *Set:
				if idx, ok := origin[in.Value]; ok && needsRC(in.Value) {
					promote(idx)
				}
			case *PartialApply:
				for _, a := range in.Args {
					if idx, ok := origin[a]; ok && needsRC(a) {
						promote(idx)
					}
				}
			case *Apply:
				for pos, a := range in.Args {
					idx, ok := origin[a]
					if !ok || !needsRC(a) {
						continue
					}
					if calleeRequiresOwned(in.Callee, pos) {
						promote(idx)
					}
				}
			case *Invoke:
				for pos, a := range in.Args {
					idx, ok := origin[a]
					if !ok || !needsRC(a) {
						continue
					}
					if calleeRequiresOwned(in.Callee, pos) {
						promote(idx)
					}
				}
			case *ApplyIndirect:
				// The callee value is dynamic: always conservative.
				for _, a := range in.Args {
					if idx, ok := origin[a]; ok && needsRC(a) {
						promote(idx)
					}
				}
			}
		}
		// A returned value escapes to the caller, which will eventually
		// dec it; if it's a parameter (or traces back to one through
		// Project/block-params), the callee must own it first. A tail
		// Apply is not a Return: passing a parameter straight through to
		// another call that's happy to borrow it is exactly the
		// pass-through shape that must stay Borrowed.
		if ret, ok := b.Term.(*Return); ok {
			for _, v := range ret.Values {
				if idx, ok := origin[v]; ok {
					promote(idx)
				}
			}
		}
	}
	return changed
}
