package parse

import "strings"

// Keywords holds the locale-specific trigger terms for the structural line
// roles. New locales are added as data, not as new branching logic.
type Keywords struct {
	Subtotal []string
	Total    []string
	Tax      []string
	Cash     []string
	Change   []string
}

// EnglishKeywords covers common English receipts plus a few Indonesian terms
// that show up on the same samples the amount heuristics were tuned on.
func EnglishKeywords() Keywords {
	return Keywords{
		Subtotal: []string{"sub total", "subtotal", "sub-total"},
		Total:    []string{"total", "amount due", "grand total", "jumlah"},
		Tax:      []string{"tax", "vat", "gst", "ppn"},
		Cash:     []string{"cash", "tunai"},
		Change:   []string{"change", "balance", "return", "kembali"},
	}
}

// matches reports whether the folded line contains any of the terms.
func matches(folded string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(folded, t) {
			return true
		}
	}
	return false
}

// fold normalizes a line for keyword matching: trimmed, case-folded,
// single-spaced.
func fold(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
