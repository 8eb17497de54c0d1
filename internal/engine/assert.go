//go:build !tapestopdebug

package engine

// debugAssert is a no-op without the tapestopdebug build tag.
func debugAssert(bool, string) {}
