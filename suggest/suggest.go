// Package suggest proposes likely intended values for mistyped input.
package suggest

import "github.com/agext/levenshtein"

// String returns the candidate closest to want, or an empty string when no
// candidate is close enough to be a plausible typo.
//
// The accepted distance grows with the length of the input. The heuristic
// may change; callers should only rely on exact matches always being
// returned.
func String(want string, candidates []string) string {
	// Longer input tolerates more mistyped characters.
	maxDist := len(want) / 5
	if maxDist == 0 {
		maxDist = 1
	}

	best := ""
	bestDist := maxDist + 1
	for _, cand := range candidates {
		if cand == want {
			return cand
		}
		if d := levenshtein.Distance(want, cand, nil); d < bestDist {
			best = cand
			bestDist = d
		}
	}
	return best
}
