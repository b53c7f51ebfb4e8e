package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

var (
	pdfColumns = []string{"Tanggal", "Jenis", "Jumlah (Rp)", "Kategori", "Deskripsi"}
	pdfWidths  = []float64{30, 30, 40, 30, 60}
)

// WritePDF renders transactions as a tabular "Laporan Keuangan" PDF.
func WritePDF(w io.Writer, txs []*domain.Transaction) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Laporan Keuangan", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, col := range pdfColumns {
		pdf.CellFormat(pdfWidths[i], 8, col, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	var total int64
	for _, tx := range txs {
		cells := []string{
			tx.Date.String(),
			string(tx.Type),
			formatAmount(tx.Amount),
			tx.Category,
			truncate(tx.Description, 40),
		}
		for i, cell := range cells {
			pdf.CellFormat(pdfWidths[i], 7, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)

		if tx.Type == domain.TypeExpense {
			total -= tx.Amount
		} else {
			total += tx.Amount
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 8, fmt.Sprintf("Saldo bersih: Rp %s", formatAmount(total)), "", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("WritePDF: rendering: %w", err)
	}
	return nil
}

func formatAmount(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		return "-" + out
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
