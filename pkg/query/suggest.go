package query

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/matzehuels/jsontree/pkg/tree"
)

// DefaultSuggestions is the number of suggestions returned when the caller
// passes a non-positive limit.
const DefaultSuggestions = 5

// Suggest returns up to limit node paths that fuzzily match expr, best first.
// It is meant for "did you mean" hints after [Resolve] finds nothing.
//
// Paths are compared in normalized form and case-insensitively. If the whole
// expression matches nothing, the last token is tried on its own so that a
// misspelled prefix ("usr.city") still surfaces "user.address.city".
func Suggest(nodes []tree.Node, expr string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestions
	}
	tokens := Tokenize(expr)
	if len(tokens) == 0 {
		return nil
	}

	var paths []string
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		p := Normalize(n.Path)
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		paths = append(paths, p)
	}

	ranks := fuzzy.RankFindFold(strings.Join(tokens, "."), paths)
	if len(ranks) == 0 && len(tokens) > 1 {
		ranks = fuzzy.RankFindFold(tokens[len(tokens)-1], paths)
	}
	sort.Stable(ranks)

	out := make([]string, 0, min(limit, len(ranks)))
	for _, r := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, r.Target)
	}
	return out
}
