package learning

import "github.com/pmezard/go-difflib/difflib"

// Ratio measures how alike a and b are in [0,1] using the matching-blocks
// ratio 2*M/T of a SequenceMatcher run over their characters. Scores agree
// with Python's difflib.SequenceMatcher(None, a, b).ratio().
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
