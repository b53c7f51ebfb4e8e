// Package export renders stored transactions as downloadable reports.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

var csvHeader = []string{"tanggal", "jenis", "jumlah", "kategori", "deskripsi", "sumber"}

// WriteCSV streams transactions as CSV, oldest ordering preserved from the
// caller. Amounts are written as plain rupiah integers so spreadsheets sum
// them without locale trouble.
func WriteCSV(w io.Writer, txs []*domain.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("WriteCSV: writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.String(),
			string(tx.Type),
			strconv.FormatInt(tx.Amount, 10),
			tx.Category,
			tx.Description,
			string(tx.Source),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteCSV: writing record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flush: %w", err)
	}
	return nil
}
