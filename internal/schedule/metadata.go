package schedule

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
)

// ParseMetadata reads the label,value rows of the profile's metadata block.
// Only the first two columns of each row are used; unknown labels are
// ignored and a repeated label keeps its last value.
func ParseMetadata(lines [][]string, p Profile) (Metadata, error) {
	values := make(map[string]string, 3)
	for i := p.MetadataStart; i < p.MetadataStart+p.MetadataRows && i < len(lines); i++ {
		label, ok := lookupLabel(cell(lines[i], 0))
		if !ok {
			continue
		}
		values[label] = strings.TrimSpace(cell(lines[i], 1))
	}

	var meta Metadata

	raw, ok := values[LabelStartDate]
	if !ok {
		return Metadata{}, &MalformedHeaderError{Label: LabelStartDate}
	}
	start, err := datetime.ParseDate(raw)
	if err != nil {
		return Metadata{}, &MalformedHeaderError{Label: LabelStartDate, Value: raw, Err: err}
	}
	meta.StartDate = start

	raw, ok = values[LabelInstallmentCount]
	if !ok {
		return Metadata{}, &MalformedHeaderError{Label: LabelInstallmentCount}
	}
	count, err := parseWholeNumber(raw)
	if err != nil {
		return Metadata{}, &MalformedHeaderError{Label: LabelInstallmentCount, Value: raw, Err: err}
	}
	if count < 1 {
		return Metadata{}, &MalformedHeaderError{Label: LabelInstallmentCount, Value: raw, Err: fmt.Errorf("must be at least 1")}
	}
	meta.InstallmentCount = count

	raw, ok = values[LabelTotalAmount]
	if !ok {
		return Metadata{}, &MalformedHeaderError{Label: LabelTotalAmount}
	}
	total, err := mathutil.ParseAmount(raw)
	if err != nil {
		return Metadata{}, &MalformedHeaderError{Label: LabelTotalAmount, Value: raw, Err: err}
	}
	if !total.IsPositive() {
		return Metadata{}, &MalformedHeaderError{Label: LabelTotalAmount, Value: raw, Err: fmt.Errorf("must be positive")}
	}
	meta.TotalAmount = total

	return meta, nil
}

// parseWholeNumber reads an integer, accepting a float rendering with no
// fractional part ("4.0") as spreadsheet tools write it.
func parseWholeNumber(value string) (int, error) {
	d, err := mathutil.ParseAmount(value)
	if err != nil {
		return 0, err
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("%q is not a whole number", value)
	}
	return int(d.IntPart()), nil
}
