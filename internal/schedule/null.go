package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/iwvelando/payment-plan/pkg/datetime"
)

var jsonNull = []byte("null")

// NullInt is an integer that may be unknown. An unknown offset is never
// treated as zero days.
type NullInt struct {
	Int   int
	Valid bool
}

// IntOf returns a known integer.
func IntOf(v int) NullInt {
	return NullInt{Int: v, Valid: true}
}

// String renders the value, or an empty string when unknown.
func (n NullInt) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.Itoa(n.Int)
}

// MarshalJSON implements json.Marshaler.
func (n NullInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return json.Marshal(n.Int)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *NullInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*n = NullInt{}
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid day count %s: %w", data, err)
	}
	*n = IntOf(v)
	return nil
}

// NullDate is a calendar date that may be unknown.
type NullDate struct {
	Time  time.Time
	Valid bool
}

// DateOf returns a known date truncated to the calendar day.
func DateOf(t time.Time) NullDate {
	return NullDate{Time: datetime.Truncate(t), Valid: true}
}

// String renders the date in ISO layout, or an empty string when unknown.
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return datetime.Format(d.Time)
}

// Equal reports whether both dates are unknown or fall on the same day.
func (d NullDate) Equal(other NullDate) bool {
	if d.Valid != other.Valid {
		return false
	}
	return !d.Valid || d.Time.Equal(other.Time)
}

// MarshalJSON implements json.Marshaler.
func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return jsonNull, nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. Empty strings are unknown.
func (d *NullDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), jsonNull) {
		*d = NullDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s: %w", data, err)
	}
	if s == "" {
		*d = NullDate{}
		return nil
	}
	t, err := datetime.ParseDate(s)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

// NullFloat is a float that may be unknown, used for averages over rows
// that may all be missing.
type NullFloat struct {
	Float float64
	Valid bool
}

// MarshalJSON implements json.Marshaler.
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return jsonNull, nil
	}
	return json.Marshal(f.Float)
}
