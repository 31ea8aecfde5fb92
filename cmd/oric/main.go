// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"ori/internal/arcir"
	"ori/internal/classify"
	"ori/internal/irtext"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: oric <file.oir>")
		os.Exit(1)
	}

	path := os.Args[1]
	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("Failed to read file: %s", err)
		os.Exit(1)
	}

	ast, err := irtext.Parse(path, string(source))
	if err != nil {
		fmt.Print(irtext.FormatParseError(path, string(source), err))
		os.Exit(1)
	}

	prog, err := irtext.Lower(ast)
	if err != nil {
		color.Red("Failed to lower %s: %s", path, err)
		os.Exit(1)
	}

	cls := classify.NewRegistry()
	for _, fn := range prog.Functions {
		types := make([]string, 0, len(fn.VarTypes))
		for _, t := range fn.VarTypes {
			types = append(types, t)
		}
		cls.RegisterObservedTypes(types)
	}

	color.Cyan("Before:")
	fmt.Print(arcir.Print(prog))

	sig := arcir.InferBorrows(prog, cls)
	arcir.ApplyBorrows(prog, sig)
	for _, fn := range prog.Functions {
		arcir.ExpandResetReuse(fn, cls)
		arcir.EliminateRC(fn)
	}

	color.Cyan("After:")
	fmt.Print(arcir.Print(prog))

	color.Green("✅ Ran borrow inference, reset/reuse expansion, and RC elimination over %s", path)
}
