package graph

import "fmt"

// check panics when a programming contract is broken.
func check(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("graph: "+format, args...))
	}
}
