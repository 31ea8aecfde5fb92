package irtext

import (
	"fmt"
	"strconv"

	"ori/internal/arcir"
)

// Lower turns a parsed Program into an arcir.Program, assigning each
// block label a dense BlockID and resolving every jump/branch target.
func Lower(p *Program) (*arcir.Program, error) {
	out := &arcir.Program{Functions: map[string]*arcir.Function{}}
	for _, f := range p.Functions {
		fn, err := lowerFunc(f)
		if err != nil {
			return nil, err
		}
		out.Functions[fn.Name] = fn
	}
	return out, nil
}

func lowerFunc(f *FuncDecl) (*arcir.Function, error) {
	labels := map[string]arcir.BlockID{}
	for i, b := range f.Blocks {
		labels[b.Label] = arcir.BlockID(i)
	}

	params := make([]arcir.Param, len(f.Params))
	varTypes := map[arcir.VarID]string{}
	for i, p := range f.Params {
		id, err := varID(p.Var)
		if err != nil {
			return nil, err
		}
		params[i] = arcir.Param{Var: id, Type: p.Type}
		varTypes[id] = p.Type
	}

	fn := &arcir.Function{
		Name:     f.Name,
		Params:   params,
		RetType:  f.Ret,
		Entry:    0,
		Blocks:   map[arcir.BlockID]*arcir.BasicBlock{},
		VarTypes: varTypes,
		Spans:    map[arcir.BlockID][]*arcir.Span{},
	}

	for i, b := range f.Blocks {
		bid := arcir.BlockID(i)
		block := &arcir.BasicBlock{ID: bid}
		for _, bp := range b.Params {
			id, err := varID(bp.Var)
			if err != nil {
				return nil, err
			}
			block.Params = append(block.Params, id)
		}
		instID := 0
		nextInstID := func() int { instID++; return instID }
		for _, decl := range b.Instrs {
			inst, err := lowerInstr(decl, varTypes, nextInstID)
			if err != nil {
				return nil, err
			}
			block.Instrs = append(block.Instrs, inst)
		}
		term, err := lowerTerm(b.Term, labels, nextInstID)
		if err != nil {
			return nil, err
		}
		block.Term = term
		fn.Blocks[bid] = block
		// The textual format carries no source positions, so every
		// instruction starts life with an empty span — but the slot must
		// still exist so len(Spans[bid]) == len(Instrs) holds from the
		// start, the invariant every later pass is required to preserve.
		fn.Spans[bid] = make([]*arcir.Span, len(block.Instrs))
	}
	return fn, nil
}

func varID(v VarRef) (arcir.VarID, error) {
	n, err := strconv.ParseUint(v.ID, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid variable %%%s: %w", v.ID, err)
	}
	return arcir.VarID(n), nil
}

func varIDs(vs []VarRef) ([]arcir.VarID, error) {
	out := make([]arcir.VarID, len(vs))
	for i, v := range vs {
		id, err := varID(v)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func lowerInstr(decl *InstrDecl, varTypes map[arcir.VarID]string, nextID func() int) (arcir.Instruction, error) {
	bindResult := func(d VarDecl) (arcir.VarID, error) {
		id, err := varID(d.Var)
		if err != nil {
			return 0, err
		}
		if d.Type != "" {
			varTypes[id] = d.Type
		}
		return id, nil
	}

	switch {
	case decl.Let != nil:
		l := decl.Let
		result, err := bindResult(l.Result)
		if err != nil {
			return nil, err
		}
		args, err := varIDs(l.Args)
		if err != nil {
			return nil, err
		}
		op := l.Op
		if len(op) >= 2 {
			op = op[1 : len(op)-1]
		}
		return &arcir.Let{InstID: nextID(), Result: result, Op: op, Args: args}, nil

	case decl.Apply != nil:
		a := decl.Apply
		result, err := bindResult(a.Result)
		if err != nil {
			return nil, err
		}
		args, err := varIDs(a.Args)
		if err != nil {
			return nil, err
		}
		return &arcir.Apply{InstID: nextID(), Result: result, Callee: a.Callee, Args: args, Tail: a.Tail}, nil

	case decl.Construct != nil:
		c := decl.Construct
		result, err := bindResult(c.Result)
		if err != nil {
			return nil, err
		}
		fields, err := varIDs(c.Fields)
		if err != nil {
			return nil, err
		}
		return &arcir.Construct{InstID: nextID(), Result: result, Tag: c.Tag, Fields: fields}, nil

	case decl.Project != nil:
		pr := decl.Project
		result, err := bindResult(pr.Result)
		if err != nil {
			return nil, err
		}
		base, err := varID(pr.Base)
		if err != nil {
			return nil, err
		}
		return &arcir.Project{InstID: nextID(), Result: result, Base: base, Field: pr.Field}, nil

	case decl.IsShared != nil:
		is := decl.IsShared
		result, err := bindResult(is.Result)
		if err != nil {
			return nil, err
		}
		v, err := varID(is.Var)
		if err != nil {
			return nil, err
		}
		return &arcir.IsShared{InstID: nextID(), Result: result, Var: v}, nil

	case decl.RcInc != nil:
		v, err := varID(decl.RcInc.Var)
		if err != nil {
			return nil, err
		}
		count := decl.RcInc.Count
		if count <= 0 {
			count = 1
		}
		return &arcir.RcInc{InstID: nextID(), Var: v, Count: count}, nil

	case decl.RcDec != nil:
		v, err := varID(decl.RcDec.Var)
		if err != nil {
			return nil, err
		}
		return &arcir.RcDec{InstID: nextID(), Var: v}, nil

	case decl.SetTag != nil:
		st := decl.SetTag
		base, err := varID(st.Base)
		if err != nil {
			return nil, err
		}
		return &arcir.SetTag{InstID: nextID(), Base: base, Tag: st.Tag}, nil

	case decl.Set != nil:
		s := decl.Set
		base, err := varID(s.Base)
		if err != nil {
			return nil, err
		}
		value, err := varID(s.Value)
		if err != nil {
			return nil, err
		}
		return &arcir.Set{InstID: nextID(), Base: base, Field: s.Field, Value: value}, nil

	case decl.Reset != nil:
		r := decl.Reset
		result, err := bindResult(r.Result)
		if err != nil {
			return nil, err
		}
		v, err := varID(r.Var)
		if err != nil {
			return nil, err
		}
		return &arcir.Reset{InstID: nextID(), Result: result, Var: v}, nil

	case decl.Reuse != nil:
		ru := decl.Reuse
		result, err := bindResult(ru.Result)
		if err != nil {
			return nil, err
		}
		token, err := varID(ru.Token)
		if err != nil {
			return nil, err
		}
		fields, err := varIDs(ru.Fields)
		if err != nil {
			return nil, err
		}
		return &arcir.Reuse{InstID: nextID(), Result: result, Token: token, Tag: ru.Tag, Fields: fields, Variant: ru.Variant}, nil
	}
	return nil, fmt.Errorf("empty instruction")
}

func lowerTerm(decl *TermDecl, labels map[string]arcir.BlockID, nextID func() int) (arcir.Terminator, error) {
	resolve := func(label string) (arcir.BlockID, error) {
		id, ok := labels[label]
		if !ok {
			return 0, fmt.Errorf("unknown block label %q", label)
		}
		return id, nil
	}

	switch {
	case decl.Return != nil:
		vals, err := varIDs(decl.Return.Values)
		if err != nil {
			return nil, err
		}
		return &arcir.Return{InstID: nextID(), Values: vals}, nil

	case decl.Jump != nil:
		target, err := resolve(decl.Jump.Target)
		if err != nil {
			return nil, err
		}
		args, err := varIDs(decl.Jump.Args)
		if err != nil {
			return nil, err
		}
		return &arcir.Jump{InstID: nextID(), Target: target, Args: args}, nil

	case decl.Branch != nil:
		br := decl.Branch
		cond, err := varID(br.Cond)
		if err != nil {
			return nil, err
		}
		then, err := resolve(br.Then)
		if err != nil {
			return nil, err
		}
		els, err := resolve(br.Else)
		if err != nil {
			return nil, err
		}
		thenArgs, err := varIDs(br.ThenArgs)
		if err != nil {
			return nil, err
		}
		elseArgs, err := varIDs(br.ElseArgs)
		if err != nil {
			return nil, err
		}
		return &arcir.Branch{InstID: nextID(), Cond: cond, Then: then, ThenArgs: thenArgs, Else: els, ElseArgs: elseArgs}, nil
	}
	return nil, fmt.Errorf("empty terminator")
}
