package extract

import (
	"regexp"
	"strings"

	"github.com/dpratama/keuangan-pintar/internal/domain"
	"github.com/dpratama/keuangan-pintar/internal/extract/keyword"
)

var currencyIndicator = regexp.MustCompile(`(?i)(?:Rp|IDR)\s*`)

// typeKeywordPattern removes whole-word occurrences of every type trigger,
// from any of the four sets, case-insensitively.
var typeKeywordPattern = func() *regexp.Regexp {
	var alts []string
	for _, set := range keyword.TypeSets {
		for _, w := range set.Words {
			alts = append(alts, regexp.QuoteMeta(w))
		}
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b\s*`)
}()

// synthesizeDescription builds the human-readable item description by
// removing, in order: every digit amount match, every word-number span the
// amount extractor consumed, currency indicators, and all type keywords.
// Whatever text survives is whitespace-collapsed and title-cased. An empty
// result falls back to the inferred category when it is distinct from the
// raw type label, else to a fixed placeholder.
func synthesizeDescription(text string, ev amountEvidence, category string, txType domain.Type) string {
	out := text
	for _, m := range ev.digitMatches {
		out = strings.Replace(out, m, "", 1)
	}
	for _, p := range ev.wordPhrases {
		out = removePhrase(out, p)
	}
	out = currencyIndicator.ReplaceAllString(out, "")
	out = typeKeywordPattern.ReplaceAllString(out, " ")

	out = strings.Join(strings.Fields(out), " ")
	out = titleCase(out)
	if out == "" {
		if category != "" && category != string(txType) {
			return category
		}
		return DefaultVoiceDescription
	}
	// Truncate on rune boundaries, not bytes.
	if runes := []rune(out); len(runes) > maxDescriptionLen {
		out = strings.TrimSpace(string(runes[:maxDescriptionLen]))
	}
	return out
}

// removePhrase deletes the first case-insensitive occurrence of phrase.
// The phrase comes from the lowercased token stream, so matching against
// the original-case text needs the fold.
func removePhrase(s, phrase string) string {
	idx := strings.Index(strings.ToLower(s), phrase)
	if idx < 0 || idx+len(phrase) > len(s) {
		return s
	}
	return s[:idx] + s[idx+len(phrase):]
}
