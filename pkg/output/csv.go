package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/shopspring/decimal"
)

// Records lays a schedule out the way schedule.ExportProfile reads it: a
// blank line, the three metadata rows, a blank line, the canonical column
// header, then one row per installment in ascending installment order.
// Blank lines are nil records and unknown values are empty cells.
func Records(s *schedule.Schedule) [][]string {
	p := schedule.ExportProfile
	records := make([][]string, p.HeaderLine, p.HeaderLine+1+len(s.Rows))

	meta := [][]string{
		{schedule.LabelStartDate, datetime.Format(s.Metadata.StartDate)},
		{schedule.LabelInstallmentCount, strconv.Itoa(s.Metadata.InstallmentCount)},
		{schedule.LabelTotalAmount, moneyCell(decimal.NewNullDecimal(s.Metadata.TotalAmount))},
	}
	copy(records[p.MetadataStart:], meta)

	header := make([]string, len(schedule.CanonicalColumns))
	copy(header, schedule.CanonicalColumns)
	records = append(records, header)

	for _, r := range s.SortedRows() {
		records = append(records, []string{
			strconv.Itoa(r.No),
			moneyCell(r.Amount),
			r.MinOffset.String(),
			r.OnTimeOffset.String(),
			r.MaxOffset.String(),
			decimalCell(r.Percentage),
			r.PaymentDate.String(),
		})
	}
	return records
}

// moneyCell keeps at least two decimals and never drops precision.
func moneyCell(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	if d.Decimal.Exponent() >= -2 {
		return d.Decimal.StringFixed(2)
	}
	return d.Decimal.String()
}

func decimalCell(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// WriteCSV writes the schedule as UTF-8 CSV.
func WriteCSV(w io.Writer, s *schedule.Schedule) error {
	cw := csv.NewWriter(w)
	for _, record := range Records(s) {
		if record == nil {
			record = []string{}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvString returns WriteCSV output as a string.
func CsvString(s *schedule.Schedule) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}
