package diag

import (
	"ea/src/token"

	"github.com/agnivade/levenshtein"
)

// MaxSuggestDistance is the maximum Levenshtein distance a candidate may
// have from the offending name to be surfaced as a did-you-mean
// suggestion.
const MaxSuggestDistance = 2

// Vocabulary is the fixed keyword/stdlib-name vocabulary that did-you-mean
// suggestions are matched against. It is built once from token.Keywords
// plus the stdlib type names, so it tracks the token table rather than
// duplicating it.
var Vocabulary = buildVocabulary()

func buildVocabulary() []string {
	out := make([]string, 0, len(token.Keywords))
	for k := range token.Keywords {
		out = append(out, k)
	}
	return out
}

// DidYouMean returns the closest vocabulary entries to name within
// MaxSuggestDistance, nearest first. It returns nil if nothing is close
// enough to be useful.
func DidYouMean(name string, vocabulary []string) []string {
	type cand struct {
		word string
		dist int
	}
	var cands []cand
	for _, w := range vocabulary {
		if w == name {
			continue
		}
		d := levenshtein.ComputeDistance(name, w)
		if d <= MaxSuggestDistance {
			cands = append(cands, cand{w, d})
		}
	}
	// Stable insertion sort by distance: the candidate lists here are tiny
	// (a handful of entries at most), so an O(n^2) sort keeps the code
	// simple without a measurable cost.
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].dist < cands[j-1].dist; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.word
	}
	return out
}

// SuggestDidYouMeanFor builds a Suggestion for the closest vocabulary match
// to name, or returns ok=false if none is within MaxSuggestDistance.
func SuggestDidYouMeanFor(name string, vocabulary []string) (Suggestion, bool) {
	matches := DidYouMean(name, vocabulary)
	if len(matches) == 0 {
		return Suggestion{}, false
	}
	return Suggestion{Kind: SuggestDidYouMean, Text: "did you mean '" + matches[0] + "'?"}, true
}
