package resolve

// similarChars counts the characters a and b have in common: the longest
// common substring plus, recursively, the common characters to its left
// and to its right.
func similarChars(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	posA, posB, longest := 0, 0, 0
	for i := range a {
		for j := range b {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > longest {
				posA, posB, longest = i, j, k
			}
		}
	}

	if longest == 0 {
		return 0
	}

	return longest +
		similarChars(a[:posA], b[:posB]) +
		similarChars(a[posA+longest:], b[posB+longest:])
}

// Similarity returns the number of matching characters between a and b and
// their similarity as a percentage of the combined length.
func Similarity(a, b string) (matching int, percent float64) {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 0, 0
	}

	matching = similarChars(ra, rb)
	return matching, float64(matching*2) * 100 / float64(total)
}

// isFuzzyMatch reports whether candidate is close enough to mention:
// more than 80% similar and fewer than 3 characters apart.
func isFuzzyMatch(mention, candidate string) bool {
	matching, percent := Similarity(mention, candidate)
	distance := matching - len([]rune(mention))
	if distance < 0 {
		distance = -distance
	}
	return percent > fuzzyThreshold && distance < maxFuzzyDistance
}

const (
	fuzzyThreshold   = 80.0
	maxFuzzyDistance = 3
)
