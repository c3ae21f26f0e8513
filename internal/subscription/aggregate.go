package subscription

import (
	"unicode/utf8"

	"github.com/samber/lo"
)

// SourceResult is the node list one source produced.
type SourceResult struct {
	Source string
	Nodes  []string
}

// Aggregate unions the nodes of every source, drops duplicates and anything
// shorter than minLength. First appearance wins the position.
func Aggregate(results []SourceResult, minLength int) []string {
	all := lo.FlatMap(results, func(r SourceResult, _ int) []string {
		return r.Nodes
	})
	return normalize(all, minLength)
}

func normalize(nodes []string, minLength int) []string {
	long := lo.Filter(nodes, func(n string, _ int) bool {
		return utf8.RuneCountInString(n) >= minLength
	})
	return lo.Uniq(long)
}
