// Package testutil builds payment plan files for tests in the two layouts
// seen in the wild.
package testutil

import (
	"bytes"
	"encoding/csv"
)

// Row is one installment line as raw cell text.
type Row struct {
	No          string
	Amount      string
	Min         string
	OnTime      string
	Max         string
	Percentage  string
	PaymentDate string
}

// Fixture is the raw text of a payment plan file.
type Fixture struct {
	StartDate        string
	InstallmentCount string
	TotalAmount      string
	Rows             []Row
	// NoPercentage drops the percentage column, as some exports do.
	NoPercentage bool
	// NoPaymentDate drops the payment date column.
	NoPaymentDate bool
}

// SampleFixture is a four installment plan with distinct offsets per
// scenario.
func SampleFixture() Fixture {
	return Fixture{
		StartDate:        "2025-01-15",
		InstallmentCount: "4",
		TotalAmount:      "12000.00",
		Rows: []Row{
			{No: "1", Amount: "3000.00", Min: "0", OnTime: "5", Max: "10", Percentage: "0.25", PaymentDate: "2025-01-20"},
			{No: "2", Amount: "3000.00", Min: "28", OnTime: "31", Max: "40", Percentage: "0.25", PaymentDate: "2025-02-15"},
			{No: "3", Amount: "3000.00", Min: "55", OnTime: "59", Max: "70", Percentage: "0.25", PaymentDate: "2025-03-15"},
			{No: "4", Amount: "3000.00", Min: "85", OnTime: "90", Max: "95", Percentage: "0.25", PaymentDate: "2025-04-15"},
		},
	}
}

// VariantA renders the fixture with a blank first line, metadata on lines
// 1-3 and the Turkish column header on line 5.
func VariantA(f Fixture) []byte {
	records := [][]string{
		nil,
		{"Başlangıç", f.StartDate},
		{"Taksit Sayısı", f.InstallmentCount},
		{"Toplam Prim", f.TotalAmount},
		nil,
	}
	records = append(records, f.table("", "Taksit Tutarı", "Min.", "Tam", "Max", "Taksit Yüzdesi", "Ödeme Tarihi")...)
	return render(records)
}

// VariantB renders the fixture with metadata on lines 0-2, three blank
// lines and the alternate column spellings on line 6, behind an index
// column left by a spreadsheet export.
func VariantB(f Fixture) []byte {
	records := [][]string{
		{"Başlangıç Tarihi", f.StartDate, ""},
		{"Taksit Sayısı", f.InstallmentCount, ""},
		{"Toplam Tutar", f.TotalAmount, ""},
		nil,
		nil,
		nil,
	}
	records = append(records, f.table("Taksit No", "Tutar", "Min. Gün", "Tam Gün", "Max. Gün", "Yüzde", "Vade")...)
	return render(records)
}

func (f Fixture) table(key, amount, min, onTime, max, pct, date string) [][]string {
	header := []string{key, amount, min, onTime, max}
	if !f.NoPercentage {
		header = append(header, pct)
	}
	if !f.NoPaymentDate {
		header = append(header, date)
	}
	records := [][]string{header}
	for _, r := range f.Rows {
		record := []string{r.No, r.Amount, r.Min, r.OnTime, r.Max}
		if !f.NoPercentage {
			record = append(record, r.Percentage)
		}
		if !f.NoPaymentDate {
			record = append(record, r.PaymentDate)
		}
		records = append(records, record)
	}
	return records
}

// render writes records as CSV, keeping nil records as empty lines.
func render(records [][]string) []byte {
	var buf bytes.Buffer
	for _, record := range records {
		if record == nil {
			buf.WriteString("\n")
			continue
		}
		w := csv.NewWriter(&buf)
		_ = w.Write(record)
		w.Flush()
	}
	return buf.Bytes()
}
