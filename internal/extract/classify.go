package extract

import (
	"strings"

	"github.com/dpratama/keuangan-pintar/internal/domain"
	"github.com/dpratama/keuangan-pintar/internal/extract/keyword"
)

// classifyType decides the transaction type for a transcript.
//
// The first token wins outright when it is a type trigger, so a user who
// leads with "pengeluaran ..." overrides any keyword mentioned later.
// Otherwise the whole text is scanned once per keyword set in priority
// order income, expense, savings, debt and the first set with any match
// wins. With no match anywhere the type defaults to income; the receipt
// path defaults to expense instead, an asymmetry kept on purpose.
func classifyType(lower string, tokens []string) domain.Type {
	if len(tokens) > 0 {
		if t, ok := keyword.TypeOfToken(tokens[0]); ok {
			return t
		}
	}

	for _, set := range keyword.TypeSets {
		for _, w := range set.Words {
			if strings.Contains(lower, w) {
				return set.Type
			}
		}
	}

	return domain.TypeIncome
}
