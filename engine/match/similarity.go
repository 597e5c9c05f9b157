package match

import "strings"

// SimilarityRatio computes a Ratcliff/Obershelp-style similarity ratio
// between two strings in [0, 1]: twice the length of matched characters
// (found recursively in the longest common substring and both its flanks)
// over the summed lengths. This is the one algorithmic core of the engine
// deliberately left on the standard library: no library in the retrieved
// corpus implements gestalt pattern matching, so there is nothing to ground
// it on beyond []rune arithmetic.
func SimilarityRatio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1.0
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0.0
	}
	matched := matchingChars(ra, rb)
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

func matchingChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ai, bi, length := longestCommonSubstring(a, b)
	if length == 0 {
		return 0
	}
	total := length
	total += matchingChars(a[:ai], b[:bi])
	total += matchingChars(a[ai+length:], b[bi+length:])
	return total
}

// longestCommonSubstring returns the start index in a, start index in b,
// and length of the longest contiguous run shared by both slices.
func longestCommonSubstring(a, b []rune) (ai, bi, length int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	best := 0
	bestAI, bestBI := 0, 0

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > best {
					best = curr[j]
					bestAI = i - best
					bestBI = j - best
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return bestAI, bestBI, best
}
