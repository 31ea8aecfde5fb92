// SPDX-License-Identifier: Apache-2.0
package repl

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStart_ParsesAndRunsPipeline(t *testing.T) {
	source := `fn f(%1: Int) -> Int {
  block bb0:
    rc_inc %1
    rc_dec %1
    return %1
}

`
	in := strings.NewReader(source)
	var out bytes.Buffer

	Start(in, &out)

	output := out.String()
	assert.Contains(t, output, "before:")
	assert.Contains(t, output, "after:")
	assert.Contains(t, output, "fn f")
}

func TestStart_ReportsParseError(t *testing.T) {
	in := strings.NewReader("fn f(\n\n")
	var out bytes.Buffer

	Start(in, &out)

	assert.NotEmpty(t, out.String())
}
