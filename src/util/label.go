// label.go provides unique name generation for IR basic blocks and temporaries.
//
// Names are scoped per function: a per-function counter is appended to a stable prefix, e.g.
// "%then_1", "%then_2". The compiler is single-threaded, so no synchronization is needed.
package util

import "fmt"

// NameGen generates unique, human-readable names scoped to a single function.
type NameGen struct {
	counts map[string]int
}

// NewNameGen returns a ready to use NameGen.
func NewNameGen() *NameGen {
	return &NameGen{counts: make(map[string]int)}
}

// Next returns the next unique name for the given stable prefix, e.g. Next("then") yields
// "then_1", then "then_2", and so on.
func (g *NameGen) Next(prefix string) string {
	g.counts[prefix]++
	return fmt.Sprintf("%s_%d", prefix, g.counts[prefix])
}
