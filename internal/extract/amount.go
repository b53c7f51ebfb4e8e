package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dpratama/keuangan-pintar/internal/extract/keyword"
	"github.com/dpratama/keuangan-pintar/internal/extract/numword"
)

// digitPattern matches amounts written in digits, with "." or "," as
// thousands/decimal separators: "Rp 50.000", "5,000,000", "1000000".
// The comma-grouped alternative comes first; alternation is first-match,
// not longest-match, and the dot-grouped branch would otherwise stop a
// comma-grouped number after its leading digits.
var digitPattern = regexp.MustCompile(
	`(?:Rp|IDR)?\s*([0-9]{1,3}(?:[,][0-9]{3})+|[0-9]+(?:[.][0-9]{3})*(?:[,][0-9]{2})?)`)

var separatorStripper = strings.NewReplacer(".", "", ",", "")

// amountEvidence is the result of amount extraction plus the substrings
// consumed along the way, which the description synthesizer removes.
type amountEvidence struct {
	amount       int64
	digitMatches []string // raw digit substrings, in match order
	wordPhrases  []string // word-number spans resolved by the magnitude scan
}

// extractAmount resolves the transaction amount from a transcript. The two
// evidence paths are independent strategies combined by precedence, never
// summed: a positive word-number result wins, else the largest digit match
// is used, else the amount is zero.
//
// The digit path keeps the maximum across all matches because the grand
// total on receipts and in dictated text is usually the largest number
// present.
func extractAmount(text string, tokens []string) amountEvidence {
	var ev amountEvidence

	var digitMax int64
	for _, m := range digitPattern.FindAllStringSubmatch(text, -1) {
		raw := separatorStripper.Replace(m[1])
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		ev.digitMatches = append(ev.digitMatches, m[1])
		if n > digitMax {
			digitMax = n
		}
	}

	wordAmount, phrases := numword.Scan(tokens, keyword.IsTypeToken)
	ev.wordPhrases = phrases

	if wordAmount > 0 {
		ev.amount = wordAmount
	} else {
		ev.amount = digitMax
	}
	return ev
}
