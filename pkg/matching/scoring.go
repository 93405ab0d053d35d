// Package matching implements name similarity scoring
package matching

// Scorer computes bounded similarity between two normalized names
type Scorer struct{}

// NewScorer creates a new Scorer
func NewScorer() *Scorer {
	return &Scorer{}
}

// Ratio returns the sequence-match ratio between two strings: twice the total
// length of the longest order-preserving matching blocks divided by the sum
// of the string lengths. 1.0 iff identical, 0.0 if either input is empty or
// no characters are shared; symmetric in its arguments.
func (s *Scorer) Ratio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	if a == b {
		return 1.0
	}

	matched := totalMatchedLength(a, b)
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

// Accepts applies the acceptance policy for a caller-supplied threshold.
func (s *Scorer) Accepts(score, threshold float64) bool {
	return score >= threshold
}

// span is a pending region pair awaiting block matching
type span struct {
	alo, ahi, blo, bhi int
}

// totalMatchedLength sums the lengths of the longest matching blocks found by
// recursively splitting around the longest common substring of each region.
// Uses an explicit work stack to keep depth bounded on adversarial inputs.
func totalMatchedLength(a, b string) int {
	total := 0
	stack := []span{{0, len(a), 0, len(b)}}

	for len(stack) > 0 {
		region := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		i, j, size := longestMatch(a, b, region.alo, region.ahi, region.blo, region.bhi)
		if size == 0 {
			continue
		}
		total += size

		stack = append(stack,
			span{region.alo, i, region.blo, j},
			span{i + size, region.ahi, j + size, region.bhi},
		)
	}

	return total
}

// longestMatch finds the longest common substring of a[alo:ahi] and
// b[blo:bhi], returning its start offsets and length. Ties resolve to the
// earliest block in a, then in b.
func longestMatch(a, b string, alo, ahi, blo, bhi int) (besti, bestj, size int) {
	besti, bestj = alo, blo

	// j2len[j] is the length of the match ending at a[i-1], b[j]
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > size {
				besti = i - k + 1
				bestj = j - k + 1
				size = k
			}
		}
		j2len = next
	}

	return besti, bestj, size
}
