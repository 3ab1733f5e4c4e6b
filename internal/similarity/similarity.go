// Package similarity provides the string measures used to decide
// whether two recognized subtitle lines are re-detections of the same
// on-screen caption. All functions are pure and operate on runes, so
// CJK text is measured per character rather than per byte.
package similarity

// SequenceRatio returns the diff-style similarity of a and b: twice the
// total length of the longest matching blocks divided by the combined
// length. 1.0 means identical, 0.0 means no common characters.
func SequenceRatio(a, b string) float64 {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra)+len(rb) == 0 {
		return 1.0
	}
	matched := matchingTotal(ra, rb)
	return 2.0 * float64(matched) / float64(len(ra)+len(rb))
}

// matchingTotal sums the matching-block lengths by finding the longest
// common run and recursing into the unmatched regions on either side.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestMatch(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a[:ai], b[:bi])
	total += matchingTotal(a[ai+size:], b[bi+size:])
	return total
}

// longestMatch finds the longest run of runes common to a and b,
// preferring the earliest occurrence in a, then in b.
func longestMatch(a, b []rune) (bestA, bestB, bestSize int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	b2j := make(map[rune][]int, len(b))
	for j, r := range b {
		b2j[r] = append(b2j[r], j)
	}
	lengths := make(map[int]int)
	for i, r := range a {
		next := make(map[int]int)
		for _, j := range b2j[r] {
			k := lengths[j-1] + 1
			next[j] = k
			if k > bestSize {
				bestA, bestB, bestSize = i-k+1, j-k+1, k
			}
		}
		lengths = next
	}
	return bestA, bestB, bestSize
}

// EditDistance returns the Levenshtein distance between a and b with
// unit insert/delete/substitute costs, using a single rolling row so
// memory stays O(min(|a|,|b|)).
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i, ca := range ra {
		cur := i + 1
		for j, cb := range rb {
			ins := prev[j+1] + 1
			del := cur + 1
			sub := prev[j]
			if ca != cb {
				sub++
			}
			best := ins
			if del < best {
				best = del
			}
			if sub < best {
				best = sub
			}
			prev[j] = cur
			cur = best
		}
		prev[len(rb)] = cur
	}
	return prev[len(rb)]
}

// BigramJaccard returns the Jaccard overlap of the 2-character
// substring sets of a and b. A string shorter than two runes
// contributes itself as its single gram. Two empty strings are defined
// as vacuously identical (1.0) so the function never divides by zero.
func BigramJaccard(a, b string) float64 {
	setA := bigrams(a)
	setB := bigrams(b)
	inter := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union == 0 {
		return 1.0
	}
	return float64(inter) / float64(union)
}

func bigrams(s string) map[string]struct{} {
	r := []rune(s)
	set := make(map[string]struct{})
	if len(r) < 2 {
		if len(r) > 0 {
			set[string(r)] = struct{}{}
		}
		return set
	}
	for i := 0; i+2 <= len(r); i++ {
		set[string(r[i:i+2])] = struct{}{}
	}
	return set
}
