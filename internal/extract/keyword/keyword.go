// Package keyword holds the trigger vocabularies used to classify
// transaction types and infer categories. All tables are constructed once
// at init and treated as read-only for the lifetime of the process.
package keyword

import (
	"strings"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

// TypeSet pairs a transaction type with its trigger words. The order of
// TypeSets is the classifier priority: income, expense, savings, debt.
// Matching is by substring on the lowercased text, so multi-word triggers
// like "uang masuk" work without tokenization.
type TypeSet struct {
	Type  domain.Type
	Words []string
}

// TypeSets lists the four type vocabularies in priority order.
var TypeSets = []TypeSet{
	{domain.TypeIncome, []string{
		"pemasukan", "penghasilan", "gaji", "uang masuk", "pendapatan",
		"income", "revenue", "gajian",
	}},
	{domain.TypeExpense, []string{
		"pengeluaran", "uang keluar", "belanja", "biaya", "expense",
		"outgoing", "makan", "transport", "pulsa", "listrik", "air",
		"sewa", "tagihan",
	}},
	{domain.TypeSavings, []string{
		"tabungan", "simpan", "menabung", "saving", "savings",
		"deposito", "investasi",
	}},
	{domain.TypeDebt, []string{
		"hutang", "pinjaman", "debit", "loan", "cicilan", "kredit",
	}},
}

// typeTokens indexes the single-word triggers for exact token checks.
// Multi-word triggers cannot match a single token and are left out.
var typeTokens = func() map[string]domain.Type {
	m := make(map[string]domain.Type)
	for _, set := range TypeSets {
		for _, w := range set.Words {
			if !strings.Contains(w, " ") {
				m[w] = set.Type
			}
		}
	}
	return m
}()

// TypeOfToken returns the type triggered by a single lowercase token.
func TypeOfToken(tok string) (domain.Type, bool) {
	t, ok := typeTokens[tok]
	return t, ok
}

// IsTypeToken reports whether a lowercase token is a type trigger word.
func IsTypeToken(tok string) bool {
	_, ok := typeTokens[tok]
	return ok
}

// CategoryEntry pairs a category label with its trigger words. The slice
// order is the fixed tie-break: the first entry with any keyword present
// wins, regardless of where the keywords appear in the input.
type CategoryEntry struct {
	Label string
	Words []string
}

// Categories is the specific-category table scanned by the inferencer.
var Categories = []CategoryEntry{
	{"Makanan", []string{
		"makan", "minum", "snack", "kopi", "nasi", "mie", "bakso",
		"ayam", "sate", "soto", "gudeg", "rendang",
	}},
	{"Transportasi", []string{
		"transport", "bensin", "angkot", "ojek", "grab", "gojek",
		"taxi", "bus", "kereta", "mobil", "parkir",
	}},
	{"Hiburan", []string{
		"hiburan", "bioskop", "game", "konser", "wisata", "rekreasi",
	}},
	{"Kesehatan", []string{
		"kesehatan", "obat", "dokter", "rumah sakit", "apotek", "sakit",
	}},
	{"Pendidikan", []string{
		"pendidikan", "sekolah", "kuliah", "buku", "les", "kursus", "spp",
	}},
	{"Rumah Tangga", []string{
		"rumah", "listrik", "air", "pulsa", "sabun", "deterjen",
		"rumah tangga", "kebutuhan",
	}},
	{"Belanja", []string{
		"belanja", "shopping", "pakaian", "baju", "celana", "toped",
		"shopee", "marketplace",
	}},
}
