package schedule

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/payment-plan/pkg/datetime"
)

func TestSelect(t *testing.T) {
	s := sampleSchedule(t)

	view := Select(s, Maximum)
	if view.Scenario != Maximum {
		t.Errorf("Scenario = %s, want maximum", view.Scenario)
	}
	if len(view.Rows) != 4 {
		t.Fatalf("len(Rows) = %d, want 4", len(view.Rows))
	}

	row := view.Rows[0]
	if row.ChosenOffset != IntOf(10) {
		t.Errorf("ChosenOffset = %v, want 10", row.ChosenOffset)
	}
	if row.ChosenDate.String() != "2025-01-25" {
		t.Errorf("ChosenDate = %s, want 2025-01-25", row.ChosenDate)
	}
	if row.DefaultDate.String() != "2025-01-20" {
		t.Errorf("DefaultDate = %s, want 2025-01-20", row.DefaultDate)
	}
	if row.DayDifference != IntOf(5) {
		t.Errorf("DayDifference = %v, want 5", row.DayDifference)
	}
	if !row.Amount.Decimal.Equal(mustDecimal("3000")) || !row.Percentage.Decimal.Equal(mustDecimal("0.25")) {
		t.Errorf("Amount/Percentage = %s/%s", row.Amount.Decimal, row.Percentage.Decimal)
	}
	if view.Timing != TimingLater {
		t.Errorf("Timing = %s, want later", view.Timing)
	}
}

func TestSelectGeneratedSchedule(t *testing.T) {
	s, err := Generate(GenerateParams{
		TotalAmount:      mustDecimal("1000"),
		InstallmentCount: 2,
		FirstPaymentDate: datetime.MustParseDate("2025-06-15"),
		IntervalMonths:   1,
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	view := Select(s, OnTime)
	if got := view.Rows[1].DefaultDate.String(); got != "2025-07-15" {
		t.Errorf("DefaultDate = %s, want the stored payment date 2025-07-15", got)
	}
	if view.Rows[1].ChosenDate.Valid {
		t.Error("ChosenDate should be unknown without offsets")
	}
	if view.Timing != TimingUnknown {
		t.Errorf("Timing = %s, want unknown", view.Timing)
	}
}

func TestViewSummary(t *testing.T) {
	s := sampleSchedule(t)

	tests := []struct {
		scenario Scenario
		want     string
	}{
		{scenario: Minimum, want: "4.2 days earlier"},
		{scenario: Maximum, want: "7.5 days later"},
		{scenario: OnTime, want: "same days"},
	}

	for _, tt := range tests {
		t.Run(tt.scenario.String(), func(t *testing.T) {
			if got := Select(s, tt.scenario).Summary(); !strings.Contains(got, tt.want) {
				t.Errorf("Summary() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestViewJSON(t *testing.T) {
	s := sampleSchedule(t)
	s.Rows[2].MaxOffset = NullInt{}

	data, err := json.Marshal(Select(s, Maximum))
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	var decoded struct {
		Plan     string `json:"plan"`
		Timing   string `json:"timing"`
		Metadata struct {
			StartDate string `json:"startDate"`
		} `json:"metadata"`
		Rows []struct {
			ChosenDate    *string `json:"chosenDate"`
			DayDifference *int    `json:"dayDifference"`
		} `json:"rows"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if decoded.Plan != "maximum" || decoded.Timing != "later" {
		t.Errorf("plan/timing = %s/%s", decoded.Plan, decoded.Timing)
	}
	if decoded.Metadata.StartDate != "2025-01-15" {
		t.Errorf("startDate = %s, want 2025-01-15", decoded.Metadata.StartDate)
	}
	if decoded.Rows[2].ChosenDate != nil || decoded.Rows[2].DayDifference != nil {
		t.Error("unknown values should marshal as null")
	}
	if decoded.Rows[0].DayDifference == nil || *decoded.Rows[0].DayDifference != 5 {
		t.Errorf("dayDifference = %v, want 5", decoded.Rows[0].DayDifference)
	}
}

func TestParseScenario(t *testing.T) {
	tests := []struct {
		input   string
		want    Scenario
		wantErr bool
	}{
		{input: "minimum", want: Minimum},
		{input: "MIN", want: Minimum},
		{input: "on_time", want: OnTime},
		{input: "Tam", want: OnTime},
		{input: "", want: OnTime},
		{input: "max", want: Maximum},
		{input: "sometime", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScenario(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseScenario(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseScenario(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}

	_, err := ParseScenario("sometime")
	if err == nil || !strings.Contains(err.Error(), "minimum, on_time, maximum") {
		t.Errorf("error should list the plans, got %v", err)
	}
}

func TestScenariosRoundTrip(t *testing.T) {
	for _, sc := range Scenarios() {
		got, err := ParseScenario(sc.String())
		if err != nil || got != sc {
			t.Errorf("ParseScenario(%q) = %v, %v", sc.String(), got, err)
		}
	}
}
