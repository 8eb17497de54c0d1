//go:build tapestopdebug

package engine

// debugAssert panics when cond is false. It is compiled in only with the
// tapestopdebug build tag; release builds use the no-op in assert.go.
func debugAssert(cond bool, msg string) {
	if !cond {
		panic("engine: " + msg)
	}
}
