package schedule

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// ViewRow is one installment as shown for a chosen scenario.
type ViewRow struct {
	No         int                 `json:"installmentNo"`
	Amount     decimal.NullDecimal `json:"amount"`
	Percentage decimal.NullDecimal `json:"percentage"`
	// DefaultDate is the on-time due date, or the stored payment date when
	// the offsets are not known yet.
	DefaultDate   NullDate `json:"defaultDate"`
	ChosenOffset  NullInt  `json:"chosenOffsetDays"`
	ChosenDate    NullDate `json:"chosenDate"`
	DayDifference NullInt  `json:"dayDifference"`
}

// View is a schedule projected onto one scenario.
type View struct {
	Scenario          Scenario  `json:"plan"`
	Metadata          Metadata  `json:"metadata"`
	Rows              []ViewRow `json:"rows"`
	MeanDayDifference NullFloat `json:"meanDayDifference"`
	Timing            Timing    `json:"timing"`
}

// Select builds the view of a schedule for a scenario. It only picks
// columns; the dates come from Project and DayDifferences.
func Select(s *Schedule, scenario Scenario) View {
	dates := Project(s)
	diffs, mean := DayDifferences(s, scenario)

	rows := make([]ViewRow, len(s.Rows))
	for i, r := range s.Rows {
		def := dates[i].OnTime
		if !def.Valid {
			def = r.PaymentDate
		}
		rows[i] = ViewRow{
			No:            r.No,
			Amount:        r.Amount,
			Percentage:    r.Percentage,
			DefaultDate:   def,
			ChosenOffset:  r.Offset(scenario),
			ChosenDate:    dates[i].For(scenario),
			DayDifference: diffs[i],
		}
	}

	return View{
		Scenario:          scenario,
		Metadata:          s.Metadata,
		Rows:              rows,
		MeanDayDifference: mean,
		Timing:            TimingOf(mean),
	}
}

// Summary describes how the chosen plan compares with paying on time.
func (v View) Summary() string {
	switch v.Timing {
	case TimingEarlier:
		return fmt.Sprintf("The %s plan pays on average %.1f days earlier than the on-time plan.",
			v.Scenario, math.Abs(v.MeanDayDifference.Float))
	case TimingLater:
		return fmt.Sprintf("The %s plan pays on average %.1f days later than the on-time plan.",
			v.Scenario, v.MeanDayDifference.Float)
	case TimingIdentical:
		return fmt.Sprintf("The %s plan pays on the same days as the on-time plan.", v.Scenario)
	default:
		return fmt.Sprintf("The %s plan cannot be compared with the on-time plan: day offsets are not known.", v.Scenario)
	}
}
