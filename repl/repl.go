// SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"ori/internal/arcir"
	"ori/internal/classify"
	"ori/internal/irtext"
)

const PROMPT = ">> "

// Start runs a line-oriented loop that accumulates a function body typed
// across multiple lines, parses it with internal/irtext once it sees a
// blank line, and prints the IR before and after the pipeline runs.
func Start(in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	var buf strings.Builder

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			source := buf.String()
			buf.Reset()
			if strings.TrimSpace(source) == "" {
				continue
			}
			run(out, source)
			continue
		}

		buf.WriteString(line)
		buf.WriteString("\n")
	}
}

func run(out io.Writer, source string) {
	ast, err := irtext.Parse("<repl>", source)
	if err != nil {
		fmt.Fprint(out, irtext.FormatParseError("<repl>", source, err))
		return
	}

	prog, err := irtext.Lower(ast)
	if err != nil {
		fmt.Fprintf(out, "lowering failed: %s\n", err)
		return
	}

	cls := classify.NewRegistry()
	for _, fn := range prog.Functions {
		types := make([]string, 0, len(fn.VarTypes))
		for _, t := range fn.VarTypes {
			types = append(types, t)
		}
		cls.RegisterObservedTypes(types)
	}

	fmt.Fprintln(out, "before:")
	fmt.Fprint(out, arcir.Print(prog))

	sig := arcir.InferBorrows(prog, cls)
	arcir.ApplyBorrows(prog, sig)
	for _, fn := range prog.Functions {
		arcir.ExpandResetReuse(fn, cls)
		arcir.EliminateRC(fn)
	}

	fmt.Fprintln(out, "after:")
	fmt.Fprint(out, arcir.Print(prog))
}
