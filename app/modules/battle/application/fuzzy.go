package battleservice

// FuzzyMatcher answers "what is the best-matching known name, and how
// similar is it" over a fixed reference set of normalized guild names.
// Similarity is the Sørensen–Dice coefficient over character bigrams, which
// tolerates minor spelling and punctuation drift.
type FuzzyMatcher struct {
	reference []string
	grams     []map[string]int
}

// NewFuzzyMatcher builds a matcher from a reference collection of normalized
// names. Order is irrelevant and duplicates are tolerated.
func NewFuzzyMatcher(reference []string) *FuzzyMatcher {
	m := &FuzzyMatcher{
		reference: make([]string, len(reference)),
		grams:     make([]map[string]int, len(reference)),
	}
	for i, name := range reference {
		m.reference[i] = name
		m.grams[i] = bigrams(name)
	}
	return m
}

// BestMatch returns the closest reference name to query and its similarity
// in [0, 1]. ok is false only when the reference set is empty. A score of
// 1.0 means the normalized strings are identical.
func (m *FuzzyMatcher) BestMatch(query string) (name string, score float64, ok bool) {
	if len(m.reference) == 0 {
		return "", 0, false
	}

	queryGrams := bigrams(query)
	best := 0
	bestScore := -1.0
	for i := range m.reference {
		s := diceSimilarity(query, queryGrams, m.reference[i], m.grams[i])
		if s > bestScore {
			best = i
			bestScore = s
		}
	}
	return m.reference[best], bestScore, true
}

// bigrams returns the multiset of character bigrams in s.
func bigrams(s string) map[string]int {
	runes := []rune(s)
	if len(runes) < 2 {
		return nil
	}
	grams := make(map[string]int, len(runes)-1)
	for i := 0; i < len(runes)-1; i++ {
		grams[string(runes[i:i+2])]++
	}
	return grams
}

// diceSimilarity computes the Dice coefficient over two bigram multisets.
// Strings too short to produce bigrams compare by equality.
func diceSimilarity(a string, aGrams map[string]int, b string, bGrams map[string]int) float64 {
	if a == b {
		return 1.0
	}
	if len(aGrams) == 0 || len(bGrams) == 0 {
		return 0.0
	}

	total := 0
	overlap := 0
	for gram, countA := range aGrams {
		total += countA
		if countB, found := bGrams[gram]; found {
			overlap += min(countA, countB)
		}
	}
	for _, countB := range bGrams {
		total += countB
	}
	return 2.0 * float64(overlap) / float64(total)
}
