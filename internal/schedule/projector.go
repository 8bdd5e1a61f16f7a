package schedule

import (
	"time"

	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
)

// ProjectedDates holds the absolute payment dates of one row under each
// scenario.
type ProjectedDates struct {
	Min    NullDate
	OnTime NullDate
	Max    NullDate
}

// For returns the date for a scenario.
func (p ProjectedDates) For(s Scenario) NullDate {
	switch s {
	case Minimum:
		return p.Min
	case Maximum:
		return p.Max
	default:
		return p.OnTime
	}
}

// ProjectOffset returns start plus offset whole days, or an unknown date
// when the offset is unknown.
func ProjectOffset(start time.Time, offset NullInt) NullDate {
	if !offset.Valid {
		return NullDate{}
	}
	return DateOf(datetime.AddDays(start, offset.Int))
}

// Project computes the three scenario dates for every row, in row order.
func Project(s *Schedule) []ProjectedDates {
	start := s.Metadata.StartDate
	out := make([]ProjectedDates, len(s.Rows))
	for i, r := range s.Rows {
		out[i] = ProjectedDates{
			Min:    ProjectOffset(start, r.MinOffset),
			OnTime: ProjectOffset(start, r.OnTimeOffset),
			Max:    ProjectOffset(start, r.MaxOffset),
		}
	}
	return out
}

// DayDifferences returns, per row, the chosen scenario's offset minus the
// on-time offset, and the mean over rows where both are known.
func DayDifferences(s *Schedule, scenario Scenario) ([]NullInt, NullFloat) {
	diffs := make([]NullInt, len(s.Rows))
	known := make([]int, 0, len(s.Rows))
	for i, r := range s.Rows {
		chosen, base := r.Offset(scenario), r.OnTimeOffset
		if !chosen.Valid || !base.Valid {
			continue
		}
		diffs[i] = IntOf(chosen.Int - base.Int)
		known = append(known, diffs[i].Int)
	}

	mean, ok := mathutil.MeanInt(known)
	return diffs, NullFloat{Float: mean, Valid: ok}
}

// Timing classifies a plan against the on-time plan.
type Timing int

const (
	// TimingUnknown means no row had both offsets.
	TimingUnknown Timing = iota
	// TimingIdentical means the plan pays on time on average.
	TimingIdentical
	// TimingEarlier means the plan pays before the due dates on average.
	TimingEarlier
	// TimingLater means the plan pays after the due dates on average.
	TimingLater
)

func (t Timing) String() string {
	switch t {
	case TimingIdentical:
		return "identical"
	case TimingEarlier:
		return "earlier"
	case TimingLater:
		return "later"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Timing) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// TimingOf classifies a mean day difference by its sign.
func TimingOf(mean NullFloat) Timing {
	switch {
	case !mean.Valid:
		return TimingUnknown
	case mean.Float < 0:
		return TimingEarlier
	case mean.Float > 0:
		return TimingLater
	default:
		return TimingIdentical
	}
}
