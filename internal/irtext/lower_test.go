// SPDX-License-Identifier: Apache-2.0
package irtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ori/internal/arcir"
)

func TestLower_SimpleFunction(t *testing.T) {
	ast, err := Parse("add.oir", sample)
	require.NoError(t, err)

	prog, err := Lower(ast)
	require.NoError(t, err)

	fn, ok := prog.Functions["add"]
	require.True(t, ok)
	assert.Equal(t, arcir.BlockID(0), fn.Entry)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, arcir.VarID(1), fn.Params[0].Var)
	assert.Equal(t, arcir.VarID(2), fn.Params[1].Var)

	block := fn.Block(fn.Entry)
	require.Len(t, block.Instrs, 1)
	let, ok := block.Instrs[0].(*arcir.Let)
	require.True(t, ok)
	assert.Equal(t, "+", let.Op)
	assert.Equal(t, []arcir.VarID{1, 2}, let.Args)
	assert.Equal(t, "Int", fn.TypeOf(let.Result))

	ret, ok := block.Term.(*arcir.Return)
	require.True(t, ok)
	assert.Equal(t, []arcir.VarID{let.Result}, ret.Values)
}

func TestLower_BranchResolvesLabels(t *testing.T) {
	source := `fn g(%1: Bool) -> Int {
  block entry:
    %2: Int = is_shared %1
    branch %2 then slow else fast
  block slow:
    return %1
  block fast:
    return %1
}
`
	ast, err := Parse("branch.oir", source)
	require.NoError(t, err)

	prog, err := Lower(ast)
	require.NoError(t, err)

	fn := prog.Functions["g"]
	require.Len(t, fn.Blocks, 3)

	entry := fn.Block(fn.Entry)
	br, ok := entry.Term.(*arcir.Branch)
	require.True(t, ok)
	assert.NotEqual(t, br.Then, br.Else)
	assert.Contains(t, []arcir.BlockID{0, 1, 2}, br.Then)
	assert.Contains(t, []arcir.BlockID{0, 1, 2}, br.Else)
}

func TestLower_UnknownBlockLabelErrors(t *testing.T) {
	source := `fn h() -> Int {
  block entry:
    jump nowhere
}
`
	ast, err := Parse("bad.oir", source)
	require.NoError(t, err)

	_, err = Lower(ast)
	assert.Error(t, err)
}
