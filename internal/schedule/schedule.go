// Package schedule parses, projects and generates installment payment
// schedules. Every function takes a schedule in and returns a schedule or a
// view out; holding the active schedule between interactions is left to the
// caller.
package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/shopspring/decimal"
)

// Canonical column names used on export and accepted on import.
const (
	ColumnInstallmentNo = "installment_no"
	ColumnAmount        = "amount"
	ColumnMinOffset     = "min_offset_days"
	ColumnOnTimeOffset  = "ontime_offset_days"
	ColumnMaxOffset     = "max_offset_days"
	ColumnPercentage    = "percentage"
	ColumnPaymentDate   = "payment_date"
)

// CanonicalColumns lists the export header in order.
var CanonicalColumns = []string{
	ColumnInstallmentNo,
	ColumnAmount,
	ColumnMinOffset,
	ColumnOnTimeOffset,
	ColumnMaxOffset,
	ColumnPercentage,
	ColumnPaymentDate,
}

// Canonical metadata labels used on export and accepted on import.
const (
	LabelStartDate        = "start_date"
	LabelInstallmentCount = "installment_count"
	LabelTotalAmount      = "total_amount"
)

// Metadata holds the scalar header of a schedule.
type Metadata struct {
	StartDate        time.Time
	InstallmentCount int
	TotalAmount      decimal.Decimal
}

type metadataJSON struct {
	StartDate        string          `json:"startDate"`
	InstallmentCount int             `json:"installmentCount"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
}

// MarshalJSON renders the start date as a plain calendar date.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(metadataJSON{
		StartDate:        datetime.Format(m.StartDate),
		InstallmentCount: m.InstallmentCount,
		TotalAmount:      m.TotalAmount,
	})
}

// UnmarshalJSON accepts any date layout understood by datetime.ParseDate.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw metadataJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := datetime.ParseDate(raw.StartDate)
	if err != nil {
		return fmt.Errorf("startDate: %w", err)
	}
	*m = Metadata{StartDate: start, InstallmentCount: raw.InstallmentCount, TotalAmount: raw.TotalAmount}
	return nil
}

// Validate checks the metadata invariants.
func (m Metadata) Validate() error {
	if m.InstallmentCount < 1 {
		return fmt.Errorf("installment count must be at least 1, got %d", m.InstallmentCount)
	}
	if !m.TotalAmount.IsPositive() {
		return fmt.Errorf("total amount must be positive, got %s", m.TotalAmount)
	}
	return nil
}

// Row is one installment. Any field read from a file may be unknown.
type Row struct {
	No           int                 `json:"installmentNo"`
	Amount       decimal.NullDecimal `json:"amount"`
	MinOffset    NullInt             `json:"minOffsetDays"`
	OnTimeOffset NullInt             `json:"onTimeOffsetDays"`
	MaxOffset    NullInt             `json:"maxOffsetDays"`
	Percentage   decimal.NullDecimal `json:"percentage"`
	PaymentDate  NullDate            `json:"paymentDate"`
}

// Offset returns the day offset of the row under a scenario.
func (r Row) Offset(s Scenario) NullInt {
	switch s {
	case Minimum:
		return r.MinOffset
	case Maximum:
		return r.MaxOffset
	default:
		return r.OnTimeOffset
	}
}

// Equal compares two rows field by field, treating decimals by value.
func (r Row) Equal(other Row) bool {
	return r.No == other.No &&
		nullDecimalEqual(r.Amount, other.Amount) &&
		r.MinOffset == other.MinOffset &&
		r.OnTimeOffset == other.OnTimeOffset &&
		r.MaxOffset == other.MaxOffset &&
		nullDecimalEqual(r.Percentage, other.Percentage) &&
		r.PaymentDate.Equal(other.PaymentDate)
}

func nullDecimalEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}

// Schedule is a metadata header and the installments it owns.
type Schedule struct {
	Metadata Metadata `json:"metadata"`
	Rows     []Row    `json:"rows"`
}

// Clone returns a deep copy.
func (s *Schedule) Clone() *Schedule {
	rows := make([]Row, len(s.Rows))
	copy(rows, s.Rows)
	return &Schedule{Metadata: s.Metadata, Rows: rows}
}

// ReplaceRows makes rows the schedule's rows verbatim; the previous rows are
// discarded.
func (s *Schedule) ReplaceRows(rows []Row) {
	s.Rows = make([]Row, len(rows))
	copy(s.Rows, rows)
}

// SortedRows returns the rows ascending by installment number. Rows sharing
// a number keep their relative order.
func (s *Schedule) SortedRows() []Row {
	rows := make([]Row, len(s.Rows))
	copy(rows, s.Rows)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].No < rows[j].No
	})
	return rows
}

// Equal compares metadata and rows in order.
func (s *Schedule) Equal(other *Schedule) bool {
	if s == nil || other == nil {
		return s == other
	}
	if !s.Metadata.StartDate.Equal(other.Metadata.StartDate) ||
		s.Metadata.InstallmentCount != other.Metadata.InstallmentCount ||
		!s.Metadata.TotalAmount.Equal(other.Metadata.TotalAmount) ||
		len(s.Rows) != len(other.Rows) {
		return false
	}
	for i := range s.Rows {
		if !s.Rows[i].Equal(other.Rows[i]) {
			return false
		}
	}
	return true
}
