// Package output renders payment plans for terminals and writes them back
// to files.
package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/format"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const unknown = "-"

// PrettyFormat outputs the policy summary, the selected plan as a table and
// the comparison with the on-time plan.
func PrettyFormat(w io.Writer, view schedule.View) error {
	p := message.NewPrinter(language.English)

	meta := view.Metadata
	if _, err := p.Fprintf(w, "Start date:    %s\n", datetime.Display(meta.StartDate)); err != nil {
		return err
	}
	_, _ = p.Fprintf(w, "Installments:  %d\n", meta.InstallmentCount)
	_, _ = p.Fprintf(w, "Total amount:  %s\n", format.Currency(meta.TotalAmount))
	_, _ = p.Fprintf(w, "Plan:          %s\n\n", view.Scenario.Label())

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"No", "Amount", "Share", "Due date", "Plan date", "Offset", "Diff"})
	table.SetAutoFormatHeaders(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_RIGHT,   // No
		tablewriter.ALIGN_RIGHT,   // Amount
		tablewriter.ALIGN_RIGHT,   // Share
		tablewriter.ALIGN_DEFAULT, // Due date
		tablewriter.ALIGN_DEFAULT, // Plan date
		tablewriter.ALIGN_RIGHT,   // Offset
		tablewriter.ALIGN_RIGHT,   // Diff
	})
	for _, r := range view.Rows {
		table.Append([]string{
			fmt.Sprint(r.No),
			amountCell(r),
			shareCell(r),
			dateCell(r.DefaultDate),
			dateCell(r.ChosenDate),
			offsetCell(r.ChosenOffset),
			diffCell(r.DayDifference),
		})
	}
	table.Render()

	if line := totalCheck(view); line != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", line)
	}

	_, err := fmt.Fprintf(w, "\n%s\n", view.Summary())
	return err
}

// totalCheck compares the installment amounts with the total amount. It is
// empty when they agree or when an amount is unknown.
func totalCheck(view schedule.View) string {
	amounts := make([]decimal.Decimal, 0, len(view.Rows))
	for _, r := range view.Rows {
		if !r.Amount.Valid {
			return ""
		}
		amounts = append(amounts, r.Amount.Decimal)
	}

	total := view.Metadata.TotalAmount
	sum := mathutil.Sum(amounts)
	if len(amounts) == 0 || sum.Equal(total) {
		return ""
	}
	if mathutil.WithinTolerance(sum, total, mathutil.RoundingTolerance(len(amounts))) {
		return fmt.Sprintf("Installments add up to %s (rounding difference %s).",
			format.Currency(sum), format.Currency(sum.Sub(total)))
	}
	return fmt.Sprintf("Installments add up to %s, not the total amount of %s.",
		format.Currency(sum), format.Currency(total))
}

func amountCell(r schedule.ViewRow) string {
	if !r.Amount.Valid {
		return unknown
	}
	return format.Currency(r.Amount.Decimal)
}

func shareCell(r schedule.ViewRow) string {
	if !r.Percentage.Valid {
		return unknown
	}
	return format.Percent(r.Percentage.Decimal)
}

func dateCell(d schedule.NullDate) string {
	if !d.Valid {
		return unknown
	}
	return datetime.Display(d.Time)
}

func offsetCell(n schedule.NullInt) string {
	if !n.Valid {
		return unknown
	}
	return n.String()
}

func diffCell(n schedule.NullInt) string {
	if !n.Valid {
		return unknown
	}
	return format.SignedDays(n.Int)
}
