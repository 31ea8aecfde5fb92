package arcir

import "fmt"

// Debug enables internal consistency assertions. It defaults to false so
// production pipelines pay no cost for checks that should never fire;
// TestPipeline_EndToEnd turns it on.
var Debug = false

// assertf panics with a formatted message when Debug is enabled and cond
// is false. It is the package's stand-in for Rust's debug_assert!: a
// precondition check that only a consistency bug in an earlier pass could
// trip, never user input.
func assertf(cond bool, format string, args ...interface{}) {
	if Debug && !cond {
		panic(fmt.Sprintf("arcir: assertion failed: "+format, args...))
	}
}

// alignSpans pads or truncates every block's span slice to match its
// current instruction count, the invariant expand_reuse and rc elimination
// must leave intact after every insert, erase, or reorder. It also acts as
// the final repair pass: callers keep spans aligned incrementally as they
// go, but a missed edge here is still caught (in Debug builds) rather than
// silently drifting.
func alignSpans(fn *Function) {
	if fn.Spans == nil {
		fn.Spans = map[BlockID][]*Span{}
	}
	for _, bid := range fn.BlockIDs() {
		b := fn.Blocks[bid]
		want := len(b.Instrs)
		got := padSpans(fn.Spans[bid], want)
		assertf(len(got) == want, "block %d: spans length %d does not match instruction count %d", bid, len(got), want)
		fn.Spans[bid] = got[:want]
	}
}
