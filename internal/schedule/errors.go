package schedule

import "fmt"

// FormatHint is shown next to structural parse failures.
const FormatHint = "check that the file follows the expected payment plan layout (metadata rows, then a header row, then one row per installment)"

// MalformedHeaderError reports a required metadata label that is missing or
// whose value cannot be read.
type MalformedHeaderError struct {
	Label string
	Value string
	Err   error
}

func (e *MalformedHeaderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed header: %s is missing", e.Label)
	}
	return fmt.Sprintf("malformed header: %s value %q: %v", e.Label, e.Value, e.Err)
}

func (e *MalformedHeaderError) Unwrap() error {
	return e.Err
}

// MalformedTableError reports a table with no usable columns or rows.
type MalformedTableError struct {
	Reason string
}

func (e *MalformedTableError) Error() string {
	return "malformed table: " + e.Reason
}

// InvalidParameterError rejects generation input before any row is built.
type InvalidParameterError struct {
	Param  string
	Value  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

// CellCoercionWarning records a cell that could not be read and was set to
// missing. It never aborts a parse.
type CellCoercionWarning struct {
	Line   int    `json:"line"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (w CellCoercionWarning) String() string {
	return fmt.Sprintf("line %d, column %s: %q %s", w.Line, w.Column, w.Value, w.Reason)
}
