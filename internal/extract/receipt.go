package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

// Receipt OCR text is noisier than a transcript and has no reliable word
// ordering, so the receipt pipeline is pattern-based throughout.

// receiptAmountPatterns cover the currency shapes printed on Indonesian
// receipts: bare grouped digits, "total/jumlah: Rp N" and "... N IDR".
var receiptAmountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:Rp|IDR)?[\s.]*([0-9]{1,3}(?:[,.][0-9]{3})*(?:[,.][0-9]{2})?)`),
	regexp.MustCompile(`(?i)(?:total|jumlah|grand total|subtotal|amount)[\s:]*Rp\s*([0-9.,]+)`),
	regexp.MustCompile(`(?i)(?:total|jumlah|grand total|subtotal|amount)[\s:]*([0-9.,]+)\s*IDR`),
}

var (
	numericOnlyLine = regexp.MustCompile(`^[\d\-\+\(\)\s]+$`)
	totalPrefixLine = regexp.MustCompile(`(?i)^(?:total|jumlah|grand|subtotal|bayar)`)
	currencyMarker  = regexp.MustCompile(`(?i)(?:Rp|IDR)`)
)

// merchantKeywords mark a receipt as an expense: shops, food, fuel,
// utilities and transport services.
var merchantKeywords = []string{
	"warung", "toko", "minimarket", "supermarket", "mall", "shop", "store",
	"restaurant", "cafe", "kopi", "makan", "minum", "food", "meal",
	"bensin", "pertamina", "shell", "pengisian", "bahan bakar",
	"pulsa", "paket data", "telepon", "listrik", "air", "tagihan",
	"laundry", "service", "jasa", "transportasi", "ojek", "grab", "gojek",
}

// incomeIndicators mark a receipt as income (transfer slips and the like).
var incomeIndicators = []string{
	"gaji", "salary", "income", "pendapatan", "bayaran", "uang",
	"transfer", "diterima", "received", "pembayaran", "payment",
}

var (
	dmyPattern       = regexp.MustCompile(`(\d{2}[/-]\d{2}[/-]\d{4})`)
	ymdPattern       = regexp.MustCompile(`(\d{4}[/-]\d{2}[/-]\d{2})`)
	dayMonthYearText = regexp.MustCompile(`(?i)(\d{1,2})\s+(Jan|Feb|Mar|Apr|Mei|Jun|Jul|Agu|Sep|Okt|Nov|Des)[a-z]*\s+(\d{4})`)
)

// indonesianMonths maps the three-letter Indonesian month abbreviations.
var indonesianMonths = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "mei": time.May, "jun": time.June,
	"jul": time.July, "agu": time.August, "sep": time.September,
	"okt": time.October, "nov": time.November, "des": time.December,
}

// FromReceiptText extracts a transaction draft from raw receipt OCR text.
// It returns nil when the text is empty or whitespace-only, the signal the
// OCR collaborator produced no data.
func FromReceiptText(ocrText string) *domain.TransactionDraft {
	if strings.TrimSpace(ocrText) == "" {
		return nil
	}
	return &domain.TransactionDraft{
		Type:        receiptType(ocrText),
		Amount:      receiptAmount(ocrText),
		Description: receiptDescription(ocrText),
		Category:    ReceiptCategory,
		Date:        receiptDate(ocrText),
	}
}

// receiptAmount takes the maximum value across every pattern match; the
// grand total is usually the largest number printed.
func receiptAmount(text string) int64 {
	var max int64
	for _, pat := range receiptAmountPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			raw := separatorStripper.Replace(m[1])
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				continue
			}
			if n > max {
				max = n
			}
		}
	}
	return max
}

// receiptDescription picks the merchant or item line: the first line of
// reasonable length that is not purely numeric, is not a totals line and
// carries no currency indicator. When nothing qualifies the first
// mid-length line is used, and failing that a fixed placeholder.
func receiptDescription(text string) string {
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) <= 2 || len(line) >= 50 {
			continue
		}
		if numericOnlyLine.MatchString(line) {
			continue
		}
		if totalPrefixLine.MatchString(line) {
			continue
		}
		if currencyMarker.MatchString(line) {
			continue
		}
		return titleCase(line)
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 5 && len(line) < 100 {
			return titleCase(line)
		}
	}

	return DefaultReceiptDescription
}

// receiptType scans merchant keywords first, then income indicators, and
// defaults to expense: most receipts record a purchase. The transcript
// classifier defaults to income instead; the asymmetry is kept as is.
func receiptType(text string) domain.Type {
	lower := strings.ToLower(text)
	for _, w := range merchantKeywords {
		if strings.Contains(lower, w) {
			return domain.TypeExpense
		}
	}
	for _, w := range incomeIndicators {
		if strings.Contains(lower, w) {
			return domain.TypeIncome
		}
	}
	return domain.TypeExpense
}

// receiptDate tries DD/MM/YYYY, YYYY/MM/DD and "D Month YYYY" (Indonesian
// month abbreviations) in that order and accepts the first match that is
// not in the future and not before 2020. OCR misreads produce wild dates;
// anything out of bounds falls back to today.
func receiptDate(text string) civil.Date {
	today := civil.DateOf(time.Now())

	for _, m := range dmyPattern.FindAllString(text, -1) {
		norm := strings.ReplaceAll(m, "-", "/")
		if t, err := time.Parse("02/01/2006", norm); err == nil {
			if d := civil.DateOf(t); acceptableDate(d, today) {
				return d
			}
		}
	}
	for _, m := range ymdPattern.FindAllString(text, -1) {
		norm := strings.ReplaceAll(m, "-", "/")
		if t, err := time.Parse("2006/01/02", norm); err == nil {
			if d := civil.DateOf(t); acceptableDate(d, today) {
				return d
			}
		}
	}
	for _, m := range dayMonthYearText.FindAllStringSubmatch(text, -1) {
		day, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		month, ok := indonesianMonths[strings.ToLower(m[2])]
		if !ok {
			continue
		}
		year, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		d := civil.Date{Year: year, Month: month, Day: day}
		if d.IsValid() && acceptableDate(d, today) {
			return d
		}
	}

	return today
}

func acceptableDate(d, today civil.Date) bool {
	return !d.After(today) && d.Year >= 2020
}
