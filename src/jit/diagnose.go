package jit

import (
	"fmt"
	"strings"
)

// String renders a Report in the plain textual form `--diagnose-jit`
// writes to stderr: function optimization coverage, any functions
// the optimizer had to skip, and symbol resolution status.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "functions: %d total, %d optimized\n", r.FunctionsTotal, r.FunctionsOptimized)
	if len(r.FunctionsFailed) > 0 {
		fmt.Fprintf(&b, "optimizer skipped: %s\n", strings.Join(r.FunctionsFailed, ", "))
	}
	if len(r.Unresolved) > 0 {
		fmt.Fprintf(&b, "unresolved symbols: %s\n", strings.Join(r.Unresolved, ", "))
	} else {
		b.WriteString("all runtime symbols resolved\n")
	}
	fmt.Fprintf(&b, "optimize: %s, execute: %s\n", r.ElapsedOptimize, r.ElapsedExecute)
	return b.String()
}
