// SPDX-License-Identifier: Apache-2.0
package irtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `fn add(%1: Int, %2: Int) -> Int {
  block bb0:
    %3: Int = let "+" (%1, %2)
    return %3
}
`

func TestParse_Function(t *testing.T) {
	prog, err := Parse("sample.oir", sample)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	assert.Equal(t, "add", fn.Name)
	assert.Equal(t, "Int", fn.Ret)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "1", fn.Params[0].Var.ID)
	assert.Equal(t, "Int", fn.Params[0].Type)

	require.Len(t, fn.Blocks, 1)
	require.Len(t, fn.Blocks[0].Instrs, 1)
	require.NotNil(t, fn.Blocks[0].Instrs[0].Let)
	assert.Equal(t, `"+"`, fn.Blocks[0].Instrs[0].Let.Op)
	require.NotNil(t, fn.Blocks[0].Term.Return)
}

func TestParse_MultipleBlocksAndBranch(t *testing.T) {
	source := `fn g(%1: Bool) -> Int {
  block bb0:
    %2: Int = is_shared %1
    branch %2 then bb1 else bb2
  block bb1:
    return %1
  block bb2:
    return %1
}
`
	prog, err := Parse("branch.oir", source)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)

	fn := prog.Functions[0]
	require.Len(t, fn.Blocks, 3)
	require.NotNil(t, fn.Blocks[0].Term.Branch)
	assert.Equal(t, "bb1", fn.Blocks[0].Term.Branch.Then)
	assert.Equal(t, "bb2", fn.Blocks[0].Term.Branch.Else)
}

func TestParse_SyntaxErrorReportsPosition(t *testing.T) {
	_, err := Parse("bad.oir", "fn broken(")
	require.Error(t, err)

	rendered := FormatParseError("bad.oir", "fn broken(", err)
	assert.Contains(t, rendered, "bad.oir")
}
