package extract

import (
	"regexp"
	"strings"

	"github.com/dpratama/keuangan-pintar/internal/domain"
	"github.com/dpratama/keuangan-pintar/internal/extract/keyword"
)

// amountSubstring strips digit amounts (with optional currency indicator)
// out of a generic category candidate.
var amountSubstring = regexp.MustCompile(`(?i)(?:Rp|IDR)?\s*[0-9.,]+`)

// inferCategory returns a category label, never empty.
//
// The specific-category table is scanned in its fixed definition order and
// the first entry with any keyword present in the text wins; two equally
// plausible keywords always resolve to whichever category is defined
// first, not to the "more specific" one. Failing that, the 1-2 tokens
// following the first type keyword are tried as a generic label, and the
// final fallback is the transaction type itself.
func inferCategory(text, lower string, txType domain.Type) string {
	for _, entry := range keyword.Categories {
		for _, w := range entry.Words {
			if strings.Contains(lower, w) {
				return entry.Label
			}
		}
	}

	words := strings.Fields(text)
	for i, w := range words {
		if !keyword.IsTypeToken(strings.ToLower(w)) {
			continue
		}
		if i+1 >= len(words) {
			continue
		}
		end := i + 3
		if end > len(words) {
			end = len(words)
		}
		candidate := strings.Join(words[i+1:end], " ")
		candidate = amountSubstring.ReplaceAllString(candidate, "")
		candidate = strings.Join(strings.Fields(candidate), " ")
		candidate = titleCase(candidate)
		if len(candidate) > 1 {
			return candidate
		}
	}

	return string(txType)
}
