// Package advisor turns a month of stored transactions into a short
// Indonesian spending recommendation. Gemini writes the advice when it is
// reachable; a rule-based fallback covers offline runs and API failures.
package advisor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

// DefaultModelName is the Gemini model used for advice generation.
const DefaultModelName = "gemini-2.0-flash"

// SummarySource provides the monthly aggregates the advisor reasons over.
type SummarySource interface {
	MonthlySummary(ctx context.Context, year, month int) (*domain.MonthlySummary, error)
}

// generateFunc produces advice text from a prompt. Swapped out in tests.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// Advisor produces spending advice for a calendar month.
type Advisor struct {
	summaries SummarySource
	generate  generateFunc
	log       zerolog.Logger
}

// New creates an Advisor backed by Gemini.
func New(summaries SummarySource, log zerolog.Logger) *Advisor {
	return &Advisor{
		summaries: summaries,
		generate:  generateWithGemini,
		log:       log,
	}
}

// Advise returns advice for the given month. A model failure downgrades to
// the rule-based text instead of erroring; only a summary failure is fatal.
func (a *Advisor) Advise(ctx context.Context, year, month int) (string, error) {
	summary, err := a.summaries.MonthlySummary(ctx, year, month)
	if err != nil {
		return "", fmt.Errorf("Advise: loading summary: %w", err)
	}

	if a.generate != nil {
		text, err := a.generate(ctx, buildPrompt(summary))
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), nil
		}
		if err != nil {
			a.log.Warn().Err(err).Msg("model advice unavailable, using rules")
		}
	}

	return RuleAdvice(summary), nil
}

// RuleAdvice is the deterministic fallback: compare income against
// spending, check the savings rate, and name the heaviest category.
func RuleAdvice(s *domain.MonthlySummary) string {
	income := s.TotalByType[domain.TypeIncome]
	expense := s.TotalByType[domain.TypeExpense]
	savings := s.TotalByType[domain.TypeSavings]

	var b strings.Builder

	switch {
	case s.Transactions == 0:
		b.WriteString("Belum ada transaksi tercatat bulan ini. Mulai catat pemasukan dan pengeluaran Anda untuk mendapatkan saran keuangan.")
	case expense > income:
		b.WriteString(fmt.Sprintf(
			"Pengeluaran Anda (Rp %s) melebihi pemasukan (Rp %s) bulan ini. Kurangi belanja yang tidak mendesak dan tinjau kembali anggaran Anda.",
			formatRupiah(expense), formatRupiah(income)))
	case income > 0 && savings*10 < income:
		b.WriteString("Tabungan Anda masih di bawah 10% dari pemasukan. Usahakan menyisihkan minimal 10% setiap bulan sebelum berbelanja.")
	default:
		b.WriteString("Keuangan Anda bulan ini sehat. Pertahankan kebiasaan mencatat transaksi dan menabung secara rutin.")
	}

	if cat, amount := topCategory(s.SpendByCat); cat != "" {
		b.WriteString(fmt.Sprintf(" Pengeluaran terbesar Anda ada di kategori %s (Rp %s).", cat, formatRupiah(amount)))
	}

	return b.String()
}

func topCategory(spend map[string]int64) (string, int64) {
	names := make([]string, 0, len(spend))
	for name := range spend {
		names = append(names, name)
	}
	// Deterministic tie-break on name.
	sort.Strings(names)

	var top string
	var max int64
	for _, name := range names {
		if spend[name] > max {
			top, max = name, spend[name]
		}
	}
	return top, max
}

// formatRupiah renders 1250000 as "1.250.000".
func formatRupiah(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ".")
}

func buildPrompt(s *domain.MonthlySummary) string {
	var b strings.Builder
	b.WriteString("Anda adalah penasihat keuangan pribadi. Berdasarkan ringkasan bulanan berikut, ")
	b.WriteString("berikan saran keuangan singkat (maksimal 3 kalimat) dalam Bahasa Indonesia. ")
	b.WriteString("Jawab dengan teks biasa tanpa format Markdown.\n\n")
	b.WriteString(fmt.Sprintf("Bulan: %d-%02d\n", s.Year, int(s.Month)))
	for t, total := range s.TotalByType {
		b.WriteString(fmt.Sprintf("%s: Rp %s\n", t, formatRupiah(total)))
	}
	if len(s.SpendByCat) > 0 {
		b.WriteString("Pengeluaran per kategori:\n")
		for cat, total := range s.SpendByCat {
			b.WriteString(fmt.Sprintf("- %s: Rp %s\n", cat, formatRupiah(total)))
		}
	}
	return b.String()
}

// generateWithGemini asks Gemini for the advice text.
func generateWithGemini(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return "", fmt.Errorf("generateWithGemini: create genai client: %w", err)
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, DefaultModelName, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generateWithGemini: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("generateWithGemini: empty response from model")
	}
	return text, nil
}
