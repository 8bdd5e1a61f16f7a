package schedule

import (
	"fmt"
	"strings"
)

// Scenario is one of the three payment timing assumptions.
type Scenario int

const (
	// Minimum pays each installment as early as allowed.
	Minimum Scenario = iota
	// OnTime pays on the contractual due date; the baseline for comparisons.
	OnTime
	// Maximum pays each installment as late as allowed.
	Maximum
)

// Scenarios lists every scenario in display order.
func Scenarios() []Scenario {
	return []Scenario{Minimum, OnTime, Maximum}
}

func (s Scenario) String() string {
	switch s {
	case Minimum:
		return "minimum"
	case OnTime:
		return "on_time"
	case Maximum:
		return "maximum"
	default:
		return fmt.Sprintf("scenario(%d)", int(s))
	}
}

// Label is the human readable name of the scenario.
func (s Scenario) Label() string {
	switch s {
	case Minimum:
		return "Minimum (earliest)"
	case Maximum:
		return "Maximum (latest)"
	default:
		return "On time"
	}
}

// ParseScenario accepts the canonical names and their short forms.
func ParseScenario(value string) (Scenario, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "minimum", "min", "earliest":
		return Minimum, nil
	case "on_time", "ontime", "on-time", "tam", "":
		return OnTime, nil
	case "maximum", "max", "latest":
		return Maximum, nil
	default:
		names := make([]string, 0, len(Scenarios()))
		for _, sc := range Scenarios() {
			names = append(names, sc.String())
		}
		return OnTime, fmt.Errorf("unknown plan %q, expected one of %s", value, strings.Join(names, ", "))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Scenario) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scenario) UnmarshalText(text []byte) error {
	parsed, err := ParseScenario(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
