// Package extract converts free-form Indonesian text into a transaction
// draft. Two pipelines share the output shape: FromTranscript handles
// speech-to-text output, FromReceiptText handles raw receipt OCR text.
// Both are pure, stateless and total: malformed input degrades the output
// (zero amount, default labels), it never produces an error.
package extract

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

const (
	// DefaultVoiceDescription is used when nothing descriptive survives
	// amount and keyword removal.
	DefaultVoiceDescription = "Transaksi Suara"

	// DefaultReceiptDescription is used when no receipt line qualifies.
	DefaultReceiptDescription = "Transaksi dari Struk"

	// ReceiptCategory is the fixed category of receipt-based drafts.
	ReceiptCategory = "Struk"

	maxDescriptionLen = 100
)

// FromTranscript extracts a transaction draft from a voice transcript.
// It returns nil when the transcript is empty or whitespace-only, which
// callers must treat as "no extraction possible".
func FromTranscript(text string) *domain.TransactionDraft {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	tokens := strings.Fields(lower)

	txType := classifyType(lower, tokens)
	ev := extractAmount(text, tokens)
	category := inferCategory(text, lower, txType)
	description := synthesizeDescription(text, ev, category, txType)

	return &domain.TransactionDraft{
		Type:        txType,
		Amount:      ev.amount,
		Description: description,
		Category:    category,
		Notes:       strings.TrimSpace(text),
	}
}

// titleCase renders s the way the UI presents descriptions and categories.
// A fresh caser per call: cases.Caser is stateful and the extractors must
// stay safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.Indonesian).String(s)
}
