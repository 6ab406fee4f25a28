package ingest

import (
	"strings"
	"unicode"
)

const (
	// DuplicateThreshold is the similarity at or above which a candidate
	// name is treated as an existing dish. The decision is binary; there is
	// no uncertainty band.
	DuplicateThreshold = 0.85

	// wordMatchThreshold is the minimum best-match score for a candidate
	// token to count as matched at the word level.
	wordMatchThreshold = 0.7

	// Very short strings need near-exact similarity, otherwise a single
	// edit dominates the score and unrelated names collide.
	shortStringMaxLen        = 3
	shortStringMinSimilarity = 0.8
)

// Normalize canonicalizes a dish name for comparison: trim, lowercase,
// strip punctuation, collapse internal whitespace.
func Normalize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Similarity estimates how alike two dish names are in [0,1], combining a
// character-level edit distance score with a word-level token match and
// taking the better of the two.
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)

	direct := directSimilarity(na, nb)
	word := wordSimilarity(na, nb)

	if word > direct {
		return word
	}
	return direct
}

// directSimilarity is 1 - editDistance/maxLen over normalized strings.
// Equal strings (including both empty) score 1.0.
func directSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1.0
	}

	sim := 1.0 - float64(levenshtein(ra, rb))/float64(maxLen)
	if sim < 0 {
		sim = 0
	}

	if maxLen <= shortStringMaxLen && sim < shortStringMinSimilarity {
		return 0
	}
	return sim
}

// wordSimilarity matches each candidate token against its best-scoring
// target token, counting only matches above wordMatchThreshold, then scales
// the mean matched score by the matched fraction of the longer token list.
func wordSimilarity(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	matchCount := 0
	totalSimilarity := 0.0
	for _, ta := range tokensA {
		best := 0.0
		for _, tb := range tokensB {
			if s := directSimilarity(ta, tb); s > best {
				best = s
			}
		}
		if best > wordMatchThreshold {
			matchCount++
			totalSimilarity += best
		}
	}

	if matchCount == 0 {
		return 0
	}

	maxTokens := len(tokensA)
	if len(tokensB) > maxTokens {
		maxTokens = len(tokensB)
	}
	return (totalSimilarity / float64(matchCount)) * (float64(matchCount) / float64(maxTokens))
}

// levenshtein is the classic dynamic-programming edit distance, two-row form.
func levenshtein(a, b []rune) int {
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
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// Match is the best catalog hit for a candidate name.
type Match struct {
	Name       string
	Similarity float64
}

// BestMatch scans existing names for the closest one. Checking a candidate
// against a catalog of N names is N pairwise comparisons; fine for catalogs
// in the thousands, not meant for more without an index.
func BestMatch(candidate string, existing []string) Match {
	best := Match{}
	for _, name := range existing {
		if s := Similarity(candidate, name); s > best.Similarity {
			best = Match{Name: name, Similarity: s}
		}
	}
	return best
}

// IsDuplicate decides whether the candidate already exists among the known
// names of its language.
func IsDuplicate(candidate string, existing []string) (Match, bool) {
	best := BestMatch(candidate, existing)
	return best, best.Similarity >= DuplicateThreshold
}
