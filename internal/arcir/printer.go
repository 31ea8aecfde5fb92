package arcir

import (
	"fmt"
	"strings"
)

// Printer renders a Program or Function as readable text, the way a
// compiler's -emit-ir flag would.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates an empty Printer.
func NewPrinter() *Printer {
	return &Printer{}
}

// Print renders an entire program.
func (p *Printer) Print(prog *Program) string {
	for _, name := range prog.FunctionNames() {
		p.printFunction(prog.Functions[name])
		p.writeLine("")
	}
	return p.output.String()
}

// PrintFunction renders a single function.
func (p *Printer) PrintFunction(fn *Function) string {
	p.printFunction(fn)
	return p.output.String()
}

func (p *Printer) printFunction(fn *Function) {
	params := make([]string, len(fn.Params))
	for i, prm := range fn.Params {
		params[i] = fmt.Sprintf("%%%d: %s [%s]", prm.Var, prm.Type, prm.Ownership)
	}
	p.writeLine(fmt.Sprintf("fn %s(%s) -> %s {", fn.Name, strings.Join(params, ", "), fn.RetType))
	p.indent++
	for _, bid := range fn.BlockIDs() {
		p.printBlock(fn, bid)
	}
	p.indent--
	p.writeLine("}")
}

func (p *Printer) printBlock(fn *Function, bid BlockID) {
	b := fn.Blocks[bid]
	header := fmt.Sprintf("block %d", bid)
	if len(b.Params) > 0 {
		names := make([]string, len(b.Params))
		for i, v := range b.Params {
			names[i] = fmt.Sprintf("%%%d", v)
		}
		header += fmt.Sprintf("(%s)", strings.Join(names, ", "))
	}
	if bid == fn.Entry {
		header += " entry"
	}
	header += ":"
	p.writeLine(header)
	p.indent++
	for _, inst := range b.Instrs {
		p.writeLine(printInstruction(inst))
	}
	if b.Term != nil {
		p.writeLine(printInstruction(b.Term))
	}
	p.indent--
}

func printInstruction(inst Instruction) string {
	switch in := inst.(type) {
	case *Let:
		return fmt.Sprintf("%%%d = let %s(%s)", in.Result, in.Op, varList(in.Args))
	case *Apply:
		tail := ""
		if in.Tail {
			tail = " tail"
		}
		return fmt.Sprintf("%%%d = apply%s %s(%s)", in.Result, tail, in.Callee, varList(in.Args))
	case *ApplyIndirect:
		return fmt.Sprintf("%%%d = apply_indirect %%%d(%s)", in.Result, in.Callee, varList(in.Args))
	case *PartialApply:
		return fmt.Sprintf("%%%d = partial_apply %s(%s)", in.Result, in.Callee, varList(in.Args))
	case *Construct:
		return fmt.Sprintf("%%%d = construct %s(%s)", in.Result, in.Tag, varList(in.Fields))
	case *Project:
		return fmt.Sprintf("%%%d = project %%%d.%d", in.Result, in.Base, in.Field)
	case *RcInc:
		if in.Count == 1 {
			return fmt.Sprintf("rc_inc %%%d", in.Var)
		}
		return fmt.Sprintf("rc_inc %%%d, %d", in.Var, in.Count)
	case *RcDec:
		return fmt.Sprintf("rc_dec %%%d", in.Var)
	case *IsShared:
		return fmt.Sprintf("%%%d = is_shared %%%d", in.Result, in.Var)
	case *Set:
		return fmt.Sprintf("set %%%d.%d = %%%d", in.Base, in.Field, in.Value)
	case *SetTag:
		return fmt.Sprintf("set_tag %%%d = %s", in.Base, in.Tag)
	case *Reset:
		return fmt.Sprintf("%%%d = reset %%%d", in.Result, in.Var)
	case *Reuse:
		variant := ""
		if in.Variant {
			variant = "variant "
		}
		return fmt.Sprintf("%%%d = reuse %%%d %s%s(%s)", in.Result, in.Token, variant, in.Tag, varList(in.Fields))
	case *Return:
		return fmt.Sprintf("return %s", varList(in.Values))
	case *Jump:
		return fmt.Sprintf("jump %d(%s)", in.Target, varList(in.Args))
	case *Branch:
		return fmt.Sprintf("branch %%%d then %d(%s) else %d(%s)", in.Cond, in.Then, varList(in.ThenArgs), in.Else, varList(in.ElseArgs))
	case *Switch:
		parts := make([]string, len(in.Cases))
		for i, c := range in.Cases {
			parts[i] = fmt.Sprintf("%s -> %d(%s)", c.Tag, c.Target, varList(c.Args))
		}
		s := fmt.Sprintf("switch %%%d [%s]", in.Scrutinee, strings.Join(parts, ", "))
		if in.Default != nil {
			s += fmt.Sprintf(" default %d(%s)", in.Default.Target, varList(in.Default.Args))
		}
		return s
	case *Invoke:
		return fmt.Sprintf("%%%d = invoke %s(%s) normal %d(%s) unwind %d(%s)",
			in.Result, in.Callee, varList(in.Args), in.Normal, varList(in.NormalArgs), in.Unwind, varList(in.UnwindArgs))
	case *Unreachable:
		return "unreachable"
	case *Resume:
		return fmt.Sprintf("resume %%%d", in.Value)
	default:
		return "<unknown instruction>"
	}
}

func varList(vars []VarID) string {
	parts := make([]string, len(vars))
	for i, v := range vars {
		parts[i] = fmt.Sprintf("%%%d", v)
	}
	return strings.Join(parts, ", ")
}

func (p *Printer) writeLine(s string) {
	p.output.WriteString(strings.Repeat("  ", p.indent))
	p.output.WriteString(s)
	p.output.WriteString("\n")
}

// Print is a package-level convenience wrapping NewPrinter for one-shot use.
func Print(prog *Program) string {
	return NewPrinter().Print(prog)
}

// PrintFunction is a package-level convenience for printing a single function.
func PrintFunction(fn *Function) string {
	return NewPrinter().PrintFunction(fn)
}
