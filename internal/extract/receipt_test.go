package extract

import (
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/dpratama/keuangan-pintar/internal/domain"
)

func TestFromReceiptText(t *testing.T) {
	today := civil.DateOf(time.Now())

	tests := []struct {
		name     string
		text     string
		wantType domain.Type
		wantAmt  int64
		wantDesc string
		wantDate civil.Date
	}{
		{
			name:     "minimarket receipt",
			text:     "Minimarket Berkah Jaya\n12/03/2024\nSabun Mandi 8.500\nMie Instan 3.000\nTotal Rp 11.500",
			wantType: domain.TypeExpense,
			wantAmt:  11_500,
			wantDesc: "Minimarket Berkah Jaya",
			wantDate: civil.Date{Year: 2024, Month: time.March, Day: 12},
		},
		{
			name:     "iso date and keyword total",
			text:     "Kopi Kenangan\n2023-07-09\nJumlah: Rp 45,000",
			wantType: domain.TypeExpense,
			wantAmt:  45_000,
			wantDesc: "Kopi Kenangan",
			wantDate: civil.Date{Year: 2023, Month: time.July, Day: 9},
		},
		{
			name:     "indonesian month name",
			text:     "Bukti Transfer Gaji\n5 Mei 2024\nDiterima 7.500.000 IDR",
			wantType: domain.TypeIncome,
			wantAmt:  7_500_000,
			wantDesc: "Bukti Transfer Gaji",
			wantDate: civil.Date{Year: 2024, Month: time.May, Day: 5},
		},
		{
			name:     "future date falls back to today",
			text:     "Toko Maju\n25/12/2099\nTotal 10.000",
			wantType: domain.TypeExpense,
			wantAmt:  10_000,
			wantDesc: "Toko Maju",
			wantDate: today,
		},
		{
			name:     "pre-2020 date falls back to today",
			text:     "Warung Sederhana\n01/01/2015\nTotal 25.000",
			wantType: domain.TypeExpense,
			wantAmt:  25_000,
			wantDesc: "Warung Sederhana",
			wantDate: today,
		},
		{
			name:     "no date at all falls back to today",
			text:     "Apotek Sehat\nObat Batuk 32.000",
			wantType: domain.TypeExpense,
			wantAmt:  32_000,
			wantDesc: "Apotek Sehat",
			wantDate: today,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromReceiptText(tt.text)
			if got == nil {
				t.Fatalf("FromReceiptText(%q) = nil", tt.text)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if got.Amount != tt.wantAmt {
				t.Errorf("Amount = %d, want %d", got.Amount, tt.wantAmt)
			}
			if got.Description != tt.wantDesc {
				t.Errorf("Description = %q, want %q", got.Description, tt.wantDesc)
			}
			if got.Category != ReceiptCategory {
				t.Errorf("Category = %q, want %q", got.Category, ReceiptCategory)
			}
			if got.Date != tt.wantDate {
				t.Errorf("Date = %v, want %v", got.Date, tt.wantDate)
			}
		})
	}
}

func TestFromReceiptTextEmptyInput(t *testing.T) {
	for _, text := range []string{"", "  \n  "} {
		if got := FromReceiptText(text); got != nil {
			t.Errorf("FromReceiptText(%q) = %+v, want nil", text, got)
		}
	}
}

func TestFromReceiptTextDescriptionFallbacks(t *testing.T) {
	// Every line is numeric or carries currency; the looser second pass
	// accepts the first mid-length line, currency and all.
	text := "123\nRp 50.000 dibayar tunai"
	got := FromReceiptText(text)
	if got == nil {
		t.Fatal("FromReceiptText returned nil")
	}
	want := "Rp 50.000 Dibayar Tunai"
	if got.Description != want {
		t.Errorf("Description = %q, want %q", got.Description, want)
	}

	// Nothing usable at all.
	got = FromReceiptText("123\n456")
	if got == nil {
		t.Fatal("FromReceiptText returned nil")
	}
	if got.Description != DefaultReceiptDescription {
		t.Errorf("Description = %q, want %q", got.Description, DefaultReceiptDescription)
	}
}

func TestFromReceiptTextTakesLargestAmount(t *testing.T) {
	text := "Toko Jaya\nItem A 15.000\nItem B 9.500\nTotal 24.500"
	got := FromReceiptText(text)
	if got == nil {
		t.Fatal("FromReceiptText returned nil")
	}
	if got.Amount != 24_500 {
		t.Errorf("Amount = %d, want 24500", got.Amount)
	}
}

func ExampleFromReceiptText() {
	draft := FromReceiptText("Warung Makan Barokah\n10/01/2024\nNasi Goreng 18.000\nTotal Rp 18.000")
	fmt.Println(draft.Type, draft.Amount, draft.Description)
	// Output: Pengeluaran 18000 Warung Makan Barokah
}
