// Package irtext is a small textual surface syntax for arcir.Function,
// parsed with participle the same way the teacher's grammar package
// parses source files.
package irtext

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// IRLexer tokenizes the textual IR format.
var IRLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Arrow", `->`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*(::[a-zA-Z_][a-zA-Z0-9_]*)*`, nil},
		{"String", `"(\\.|[^"])*"`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Punctuation", `[{}()\[\],:.%@=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
