// ABOUTME: Typo suggestion via Levenshtein edit distance over known command names.
// ABOUTME: Bounded at distance 2 to avoid false positives on short names.

package runner

import "strings"

// maxSuggestDistance is the largest edit distance still considered a typo.
const maxSuggestDistance = 2

// suggest returns the known name closest to input, or "" when nothing is
// within maxSuggestDistance. Ties break to the earliest entry in names;
// callers rely on that ordering, it is not an accident of iteration.
func suggest(input string, names []string) string {
	input = strings.ToLower(input)

	best := ""
	bestDistance := maxSuggestDistance + 1
	for _, name := range names {
		if d := levenshtein(input, strings.ToLower(name)); d < bestDistance {
			best = name
			bestDistance = d
		}
	}
	return best
}

// levenshtein computes edit distance with the classic two-row dynamic
// programming formulation.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
