package schedule

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Table is the parsed tabular body of a file.
type Table struct {
	// Columns are the canonical columns found, in file order.
	Columns []string
	// Ignored are named columns that are not part of a schedule.
	Ignored  []string
	Rows     []Row
	Warnings []CellCoercionWarning
	// TotalCells and MissingCells count recognised data cells of kept rows.
	TotalCells   int
	MissingCells int
}

// MissingRatio is the fraction of recognised cells that ended up unknown,
// either blank in the file or failed coercion.
func (t Table) MissingRatio() float64 {
	if t.TotalCells == 0 {
		return 0
	}
	return float64(t.MissingCells) / float64(t.TotalCells)
}

// HasColumn reports whether a canonical column was present in the file.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AbsentColumns lists the canonical data columns the file did not have, in
// export order.
func (t Table) AbsentColumns() []string {
	var absent []string
	for _, name := range CanonicalColumns[1:] {
		if !t.HasColumn(name) {
			absent = append(absent, name)
		}
	}
	return absent
}

type tableColumn struct {
	index     int
	canonical string
}

// ParseTable reads the column header at the profile's header line and every
// row after it. The first column is the installment number. A row with a
// number and no data is kept with every field unknown; only rows blank in
// every cell are dropped. A cell that cannot be read is set to unknown and
// recorded as a warning.
func ParseTable(lines [][]string, p Profile) (Table, error) {
	if p.HeaderLine >= len(lines) || isBlankRecord(lines[p.HeaderLine]) {
		return Table{}, &MalformedTableError{Reason: fmt.Sprintf("no column header on line %d", p.HeaderLine+1)}
	}

	var t Table
	var columns []tableColumn
	var named []int
	seen := make(map[string]bool)
	for j, name := range lines[p.HeaderLine] {
		if j == 0 || isIndexArtifact(name) {
			continue
		}
		named = append(named, j)
		canonical, ok := lookupColumn(name)
		if !ok || seen[canonical] {
			t.Ignored = append(t.Ignored, strings.TrimSpace(name))
			continue
		}
		seen[canonical] = true
		columns = append(columns, tableColumn{index: j, canonical: canonical})
		t.Columns = append(t.Columns, canonical)
	}
	if len(columns) == 0 {
		return Table{}, &MalformedTableError{Reason: fmt.Sprintf("no recognised columns on line %d", p.HeaderLine+1)}
	}

	for i := p.HeaderLine + 1; i < len(lines); i++ {
		record := lines[i]
		key := strings.TrimSpace(cell(record, 0))
		if key == "" && rowIsEmpty(record, named) {
			continue
		}

		lineNo := i + 1
		no, err := parseWholeNumber(key)
		if err != nil {
			t.Warnings = append(t.Warnings, CellCoercionWarning{
				Line: lineNo, Column: ColumnInstallmentNo, Value: key, Reason: "is not an installment number, row skipped",
			})
			continue
		}

		row := Row{No: no}
		for _, c := range columns {
			raw := strings.TrimSpace(cell(record, c.index))
			t.TotalCells++
			if raw == "" {
				t.MissingCells++
				continue
			}
			if err := row.set(c.canonical, raw); err != nil {
				t.MissingCells++
				t.Warnings = append(t.Warnings, CellCoercionWarning{
					Line: lineNo, Column: c.canonical, Value: raw, Reason: err.Error(),
				})
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if len(t.Rows) == 0 {
		return Table{}, &MalformedTableError{Reason: "no installment rows after the column header"}
	}
	return t, nil
}

func rowIsEmpty(record []string, named []int) bool {
	for _, j := range named {
		if strings.TrimSpace(cell(record, j)) != "" {
			return false
		}
	}
	return true
}

// set stores a non-blank raw cell into the row field for column.
func (r *Row) set(column, raw string) error {
	switch column {
	case ColumnAmount:
		d, err := mathutil.ParseAmount(raw)
		if err != nil {
			return fmt.Errorf("is not an amount")
		}
		r.Amount = decimal.NewNullDecimal(d)
	case ColumnPercentage:
		d, err := mathutil.ParseRatio(raw)
		if err != nil {
			return fmt.Errorf("is not a percentage")
		}
		r.Percentage = decimal.NewNullDecimal(d)
	case ColumnMinOffset, ColumnOnTimeOffset, ColumnMaxOffset:
		days, err := parseWholeNumber(raw)
		if err != nil {
			return fmt.Errorf("is not a whole number of days")
		}
		switch column {
		case ColumnMinOffset:
			r.MinOffset = IntOf(days)
		case ColumnOnTimeOffset:
			r.OnTimeOffset = IntOf(days)
		default:
			r.MaxOffset = IntOf(days)
		}
	case ColumnPaymentDate:
		d, err := datetime.ParseDate(raw)
		if err != nil {
			return fmt.Errorf("is not a date")
		}
		r.PaymentDate = DateOf(d)
	}
	return nil
}
