package schedule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// GenerateParams describes an evenly split schedule.
type GenerateParams struct {
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	InstallmentCount int             `json:"installmentCount"`
	FirstPaymentDate time.Time       `json:"-"`
	IntervalMonths   int             `json:"intervalMonths"`
}

// Validate rejects parameters no schedule can be built from.
func (p GenerateParams) Validate() error {
	if p.InstallmentCount < 1 {
		return &InvalidParameterError{
			Param: "installment count", Value: strconv.Itoa(p.InstallmentCount), Reason: "must be at least 1",
		}
	}
	if p.InstallmentCount > constants.MaxInstallments {
		return &InvalidParameterError{
			Param: "installment count", Value: strconv.Itoa(p.InstallmentCount),
			Reason: fmt.Sprintf("must be at most %d", constants.MaxInstallments),
		}
	}
	if !p.TotalAmount.IsPositive() {
		return &InvalidParameterError{
			Param: "total amount", Value: p.TotalAmount.String(), Reason: "must be positive",
		}
	}
	if p.IntervalMonths < 1 {
		return &InvalidParameterError{
			Param: "interval", Value: strconv.Itoa(p.IntervalMonths), Reason: "must be at least 1 month",
		}
	}
	if p.IntervalMonths > constants.MaxIntervalMonths {
		return &InvalidParameterError{
			Param: "interval", Value: strconv.Itoa(p.IntervalMonths),
			Reason: fmt.Sprintf("must be at most %d months", constants.MaxIntervalMonths),
		}
	}
	if p.FirstPaymentDate.IsZero() {
		return &InvalidParameterError{
			Param: "first payment date", Value: "", Reason: "is required",
		}
	}
	return nil
}

// Generate builds a schedule of InstallmentCount rows. Each amount is the
// total divided evenly and rounded to the cent with no remainder
// correction, so the rows may not add up exactly to the total. Each
// percentage is 1/n. Payment dates step IntervalMonths calendar months from
// the first payment date, with Go's normalisation for short months. Day
// offsets are left unknown.
func Generate(p GenerateParams) (*Schedule, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	amount, share, err := mathutil.SplitEvenly(p.TotalAmount, p.InstallmentCount)
	if err != nil {
		return nil, err
	}

	first := datetime.Truncate(p.FirstPaymentDate)
	rows := make([]Row, p.InstallmentCount)
	for i := range rows {
		rows[i] = Row{
			No:          i + 1,
			Amount:      decimal.NewNullDecimal(amount),
			Percentage:  decimal.NewNullDecimal(share),
			PaymentDate: DateOf(datetime.AddMonths(first, i*p.IntervalMonths)),
		}
	}

	return &Schedule{
		Metadata: Metadata{
			StartDate:        first,
			InstallmentCount: p.InstallmentCount,
			TotalAmount:      p.TotalAmount,
		},
		Rows: rows,
	}, nil
}
