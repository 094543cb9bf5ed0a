package dataset

import "strings"

// Example is one manifest record. It is never mutated after loading.
type Example struct {
	Primary string
	Labels  []string
	// Extras holds tokens after the label paths, verbatim.
	Extras []string
	// Line is the 1-based manifest line the example came from.
	Line int
}

// Paths returns the primary path followed by the label paths, each prefixed
// with root.
func (e Example) Paths(root string) []string {
	out := make([]string, 0, 1+len(e.Labels))
	out = append(out, root+e.Primary)
	for _, l := range e.Labels {
		out = append(out, root+l)
	}
	return out
}

func (e Example) String() string {
	return strings.Join(append([]string{e.Primary}, e.Labels...), " ")
}
