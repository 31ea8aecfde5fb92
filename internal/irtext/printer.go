package irtext

import (
	"fmt"
	"strings"

	"ori/internal/arcir"
)

// Print renders an arcir.Function back into this package's textual syntax.
// The CLI and REPL dump IR with arcir.Print instead; unlike
// arcir.PrintFunction, the output of this function parses back through
// Parse and Lower.
func Print(fn *arcir.Function) string {
	var b strings.Builder
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%%%d: %s", p.Var, p.Type)
	}
	fmt.Fprintf(&b, "fn %s(%s) -> %s {\n", fn.Name, strings.Join(params, ", "), fn.RetType)
	labels := blockLabels(fn)
	for _, bid := range fn.BlockIDs() {
		printBlock(&b, fn, bid, labels)
	}
	b.WriteString("}\n")
	return b.String()
}

func blockLabels(fn *arcir.Function) map[arcir.BlockID]string {
	labels := map[arcir.BlockID]string{}
	for _, bid := range fn.BlockIDs() {
		labels[bid] = fmt.Sprintf("bb%d", bid)
	}
	return labels
}

func printBlock(b *strings.Builder, fn *arcir.Function, bid arcir.BlockID, labels map[arcir.BlockID]string) {
	block := fn.Block(bid)
	fmt.Fprintf(b, "  block %s", labels[bid])
	if len(block.Params) > 0 {
		names := make([]string, len(block.Params))
		for i, v := range block.Params {
			names[i] = fmt.Sprintf("%%%d", v)
		}
		fmt.Fprintf(b, "(%s)", strings.Join(names, ", "))
	}
	b.WriteString(":\n")
	for _, inst := range block.Instrs {
		fmt.Fprintf(b, "    %s\n", printInstr(fn, inst))
	}
	fmt.Fprintf(b, "    %s\n", printTerm(fn, block.Term, labels))
}

func typedResult(fn *arcir.Function, v arcir.VarID) string {
	if t := fn.TypeOf(v); t != "" {
		return fmt.Sprintf("%%%d: %s", v, t)
	}
	return fmt.Sprintf("%%%d", v)
}

func varsList(vs []arcir.VarID) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%%%d", v)
	}
	return strings.Join(parts, ", ")
}

func printInstr(fn *arcir.Function, inst arcir.Instruction) string {
	switch in := inst.(type) {
	case *arcir.Let:
		return fmt.Sprintf("%s = let %q(%s)", typedResult(fn, in.Result), in.Op, varsList(in.Args))
	case *arcir.Apply:
		tail := ""
		if in.Tail {
			tail = " tail"
		}
		return fmt.Sprintf("%s = apply%s %s(%s)", typedResult(fn, in.Result), tail, in.Callee, varsList(in.Args))
	case *arcir.Construct:
		return fmt.Sprintf("%s = construct %s(%s)", typedResult(fn, in.Result), in.Tag, varsList(in.Fields))
	case *arcir.Project:
		return fmt.Sprintf("%s = project %%%d.%d", typedResult(fn, in.Result), in.Base, in.Field)
	case *arcir.IsShared:
		return fmt.Sprintf("%s = is_shared %%%d", typedResult(fn, in.Result), in.Var)
	case *arcir.RcInc:
		if in.Count == 1 {
			return fmt.Sprintf("rc_inc %%%d", in.Var)
		}
		return fmt.Sprintf("rc_inc %%%d, %d", in.Var, in.Count)
	case *arcir.RcDec:
		return fmt.Sprintf("rc_dec %%%d", in.Var)
	case *arcir.SetTag:
		return fmt.Sprintf("set_tag %%%d = %s", in.Base, in.Tag)
	case *arcir.Set:
		return fmt.Sprintf("set %%%d.%d = %%%d", in.Base, in.Field, in.Value)
	case *arcir.Reset:
		return fmt.Sprintf("%s = reset %%%d", typedResult(fn, in.Result), in.Var)
	case *arcir.Reuse:
		variant := ""
		if in.Variant {
			variant = "variant "
		}
		return fmt.Sprintf("%s = reuse %%%d %s%s(%s)", typedResult(fn, in.Result), in.Token, variant, in.Tag, varsList(in.Fields))
	default:
		return fmt.Sprintf("<unsupported instruction %T>", inst)
	}
}

func printTerm(fn *arcir.Function, term arcir.Terminator, labels map[arcir.BlockID]string) string {
	switch t := term.(type) {
	case *arcir.Return:
		if len(t.Values) == 0 {
			return "return"
		}
		return fmt.Sprintf("return %s", varsList(t.Values))
	case *arcir.Jump:
		if len(t.Args) == 0 {
			return fmt.Sprintf("jump %s", labels[t.Target])
		}
		return fmt.Sprintf("jump %s(%s)", labels[t.Target], varsList(t.Args))
	case *arcir.Branch:
		s := fmt.Sprintf("branch %%%d then %s", t.Cond, labels[t.Then])
		if len(t.ThenArgs) > 0 {
			s += fmt.Sprintf("(%s)", varsList(t.ThenArgs))
		}
		s += fmt.Sprintf(" else %s", labels[t.Else])
		if len(t.ElseArgs) > 0 {
			s += fmt.Sprintf("(%s)", varsList(t.ElseArgs))
		}
		return s
	default:
		return fmt.Sprintf("<unsupported terminator %T>", term)
	}
}
