//go:build !debug

package debug

// Printf is a no-op unless the debug build tag is set.
func Printf(format string, v ...any) {}
