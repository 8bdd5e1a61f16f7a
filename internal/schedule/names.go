package schedule

import (
	"strings"

	"github.com/iwvelando/payment-plan/pkg/textfold"
)

// metadataLabels maps normalized header labels to canonical metadata labels.
var metadataLabels = map[string]string{
	"baslangic":         LabelStartDate,
	"baslangic tarihi":  LabelStartDate,
	"start date":        LabelStartDate,
	"start_date":        LabelStartDate,
	"taksit sayisi":     LabelInstallmentCount,
	"installment count": LabelInstallmentCount,
	"installment_count": LabelInstallmentCount,
	"toplam prim":       LabelTotalAmount,
	"toplam tutar":      LabelTotalAmount,
	"total amount":      LabelTotalAmount,
	"total_amount":      LabelTotalAmount,
}

// columnNames maps normalized header spellings of both layouts to canonical
// columns.
var columnNames = map[string]string{
	"taksit tutari":      ColumnAmount,
	"tutar":              ColumnAmount,
	"amount":             ColumnAmount,
	"min.":               ColumnMinOffset,
	"min":                ColumnMinOffset,
	"min. gun":           ColumnMinOffset,
	"min_offset_days":    ColumnMinOffset,
	"tam":                ColumnOnTimeOffset,
	"tam gun":            ColumnOnTimeOffset,
	"on time":            ColumnOnTimeOffset,
	"ontime_offset_days": ColumnOnTimeOffset,
	"max":                ColumnMaxOffset,
	"max.":               ColumnMaxOffset,
	"max. gun":           ColumnMaxOffset,
	"max_offset_days":    ColumnMaxOffset,
	"taksit yuzdesi":     ColumnPercentage,
	"yuzde":              ColumnPercentage,
	"percentage":         ColumnPercentage,
	"odeme tarihi":       ColumnPaymentDate,
	"vade":               ColumnPaymentDate,
	"payment date":       ColumnPaymentDate,
	"payment_date":       ColumnPaymentDate,
}

// normalizeName folds a label so that spellings with and without Turkish
// letters, in any case, compare equal. A trailing colon is dropped.
func normalizeName(value string) string {
	return strings.TrimSpace(strings.TrimSuffix(textfold.Fold(value), ":"))
}

// isIndexArtifact reports header cells left behind by spreadsheet exports.
func isIndexArtifact(name string) bool {
	n := normalizeName(name)
	return n == "" || strings.HasPrefix(n, "unnamed")
}

func lookupColumn(name string) (string, bool) {
	canonical, ok := columnNames[normalizeName(name)]
	return canonical, ok
}

func lookupLabel(name string) (string, bool) {
	canonical, ok := metadataLabels[normalizeName(name)]
	return canonical, ok
}
