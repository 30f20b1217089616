package catalog

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ScorerConfig tunes the similarity measure. The weights are policy choices;
// defaults were validated against labeled release samples.
type ScorerConfig struct {
	TokenSetFloor float64 // score floor when both names have identical token sets
	ReorderWeight float64 // weight applied to the token-sorted comparison
	LengthPenalty float64 // weight of the length-mismatch penalty
}

// DefaultScorerConfig returns the default weights.
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		TokenSetFloor: 0.97,
		ReorderWeight: 0.98,
		LengthPenalty: 0.15,
	}
}

// Scorer is a deterministic string-similarity measure over names: case- and
// diacritic-insensitive Jaro-Winkler with a bonus for exact token-set
// equality (reordered given/family names) and a penalty for length mismatch.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a scorer.
func NewScorer(cfg ScorerConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Similarity returns a normalized similarity in [0,1].
func (s *Scorer) Similarity(a, b string) float64 {
	fa, fb := Fold(a), Fold(b)
	if fa == "" || fb == "" {
		return 0.0
	}
	if fa == fb {
		return 1.0
	}

	score := s.jaroWinkler(fa, fb)
	if reordered := s.jaroWinkler(sortTokens(fa), sortTokens(fb)) * s.cfg.ReorderWeight; reordered > score {
		score = reordered
	}
	if score < s.cfg.TokenSetFloor && tokenSetsEqual(fa, fb) {
		score = s.cfg.TokenSetFloor
	}

	la, lb := len(fa), len(fb)
	maxLen := max(la, lb)
	diff := maxLen - min(la, lb)
	score *= 1.0 - s.cfg.LengthPenalty*float64(diff)/float64(maxLen)

	return math.Max(0.0, math.Min(1.0, score))
}

// jaroWinkler boosts the Jaro similarity for a common prefix.
func (s *Scorer) jaroWinkler(a, b string) float64 {
	if a == b {
		return 1.0
	}

	jaro := s.jaro(a, b)

	prefixLen := 0
	maxPrefix := 4
	for i := 0; i < len(a) && i < len(b) && i < maxPrefix; i++ {
		if a[i] == b[i] {
			prefixLen++
		} else {
			break
		}
	}

	scalingFactor := 0.1
	return jaro + float64(prefixLen)*scalingFactor*(1.0-jaro)
}

func (s *Scorer) jaro(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	matchDist := max(len(a), len(b))/2 - 1
	if matchDist < 0 {
		matchDist = 0
	}

	aMatches := make([]bool, len(a))
	bMatches := make([]bool, len(b))

	matches := 0
	transpositions := 0

	for i := 0; i < len(a); i++ {
		start := max(0, i-matchDist)
		end := min(len(b), i+matchDist+1)

		for j := start; j < end; j++ {
			if bMatches[j] || a[i] != b[j] {
				continue
			}
			aMatches[i] = true
			bMatches[j] = true
			matches++
			break
		}
	}

	if matches == 0 {
		return 0.0
	}

	k := 0
	for i := 0; i < len(a); i++ {
		if !aMatches[i] {
			continue
		}
		for !bMatches[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	t := float64(transpositions) / 2

	return (m/float64(len(a)) + m/float64(len(b)) + (m-t)/m) / 3
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold normalizes a name for comparison: diacritics stripped, lowercased,
// punctuation removed, whitespace collapsed.
func Fold(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}

	var sb strings.Builder
	prevSpace := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-':
			if !prevSpace {
				sb.WriteByte(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func tokenSetsEqual(a, b string) bool {
	return sortTokens(a) == sortTokens(b)
}
