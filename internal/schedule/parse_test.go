package schedule

import (
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/text/encoding/charmap"
)

func mustLines(t *testing.T, data []byte) [][]string {
	t.Helper()
	lines, err := SplitLines(data)
	if err != nil {
		t.Fatalf("SplitLines() error = %v", err)
	}
	return lines
}

func TestParseMetadataBothProfiles(t *testing.T) {
	fixture := testutil.SampleFixture()
	want := Metadata{
		StartDate:        datetime.MustParseDate("2025-01-15"),
		InstallmentCount: 4,
		TotalAmount:      decimal.RequireFromString("12000"),
	}

	tests := []struct {
		name    string
		data    []byte
		profile Profile
	}{
		{name: "variant A", data: testutil.VariantA(fixture), profile: ProfileA},
		{name: "variant B", data: testutil.VariantB(fixture), profile: ProfileB},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMetadata(mustLines(t, tt.data), tt.profile)
			if err != nil {
				t.Fatalf("ParseMetadata() error = %v", err)
			}
			if !got.StartDate.Equal(want.StartDate) {
				t.Errorf("StartDate = %v, want %v", got.StartDate, want.StartDate)
			}
			if got.InstallmentCount != want.InstallmentCount {
				t.Errorf("InstallmentCount = %d, want %d", got.InstallmentCount, want.InstallmentCount)
			}
			if !got.TotalAmount.Equal(want.TotalAmount) {
				t.Errorf("TotalAmount = %s, want %s", got.TotalAmount, want.TotalAmount)
			}
		})
	}
}

func TestParseMetadataLocaleValues(t *testing.T) {
	fixture := testutil.SampleFixture()
	fixture.StartDate = "15.01.2025"
	fixture.InstallmentCount = "4.0"
	fixture.TotalAmount = "12.000,50 TL"

	got, err := ParseMetadata(mustLines(t, testutil.VariantA(fixture)), ProfileA)
	if err != nil {
		t.Fatalf("ParseMetadata() error = %v", err)
	}
	if datetime.Format(got.StartDate) != "2025-01-15" {
		t.Errorf("StartDate = %s, want 2025-01-15", datetime.Format(got.StartDate))
	}
	if got.InstallmentCount != 4 {
		t.Errorf("InstallmentCount = %d, want 4", got.InstallmentCount)
	}
	if !got.TotalAmount.Equal(decimal.RequireFromString("12000.50")) {
		t.Errorf("TotalAmount = %s, want 12000.50", got.TotalAmount)
	}
}

func TestParseMetadataErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*testutil.Fixture)
		wantLabel string
		wantValue bool
	}{
		{
			name:      "missing start date",
			mutate:    func(f *testutil.Fixture) { f.StartDate = "" },
			wantLabel: LabelStartDate,
			wantValue: true,
		},
		{
			name:      "unparsable start date",
			mutate:    func(f *testutil.Fixture) { f.StartDate = "next tuesday" },
			wantLabel: LabelStartDate,
			wantValue: true,
		},
		{
			name:      "fractional count",
			mutate:    func(f *testutil.Fixture) { f.InstallmentCount = "2.5" },
			wantLabel: LabelInstallmentCount,
			wantValue: true,
		},
		{
			name:      "zero count",
			mutate:    func(f *testutil.Fixture) { f.InstallmentCount = "0" },
			wantLabel: LabelInstallmentCount,
			wantValue: true,
		},
		{
			name:      "negative total",
			mutate:    func(f *testutil.Fixture) { f.TotalAmount = "-5" },
			wantLabel: LabelTotalAmount,
			wantValue: true,
		},
		{
			name:      "text total",
			mutate:    func(f *testutil.Fixture) { f.TotalAmount = "lots" },
			wantLabel: LabelTotalAmount,
			wantValue: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := testutil.SampleFixture()
			tt.mutate(&fixture)

			_, err := ParseMetadata(mustLines(t, testutil.VariantA(fixture)), ProfileA)
			var headerErr *MalformedHeaderError
			if !errors.As(err, &headerErr) {
				t.Fatalf("ParseMetadata() error = %v, want *MalformedHeaderError", err)
			}
			if headerErr.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", headerErr.Label, tt.wantLabel)
			}
			if tt.wantValue && headerErr.Err == nil {
				t.Errorf("expected an underlying parse error for %q", headerErr.Value)
			}
		})
	}
}

func TestParseMetadataMissingLabel(t *testing.T) {
	data := []byte("\nBaşlangıç,2025-01-15\nSomething,4\nToplam Prim,1000\n")

	_, err := ParseMetadata(mustLines(t, data), ProfileA)
	var headerErr *MalformedHeaderError
	if !errors.As(err, &headerErr) {
		t.Fatalf("ParseMetadata() error = %v, want *MalformedHeaderError", err)
	}
	if headerErr.Label != LabelInstallmentCount || headerErr.Err != nil {
		t.Errorf("got %+v, want missing installment count", headerErr)
	}
	if !strings.Contains(err.Error(), "is missing") {
		t.Errorf("Error() = %q, want mention of missing label", err.Error())
	}
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable(mustLines(t, testutil.VariantB(testutil.SampleFixture())), ProfileB)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}

	wantColumns := []string{ColumnAmount, ColumnMinOffset, ColumnOnTimeOffset, ColumnMaxOffset, ColumnPercentage, ColumnPaymentDate}
	if strings.Join(table.Columns, ",") != strings.Join(wantColumns, ",") {
		t.Errorf("Columns = %v, want %v", table.Columns, wantColumns)
	}
	if len(table.Rows) != 4 {
		t.Fatalf("len(Rows) = %d, want 4", len(table.Rows))
	}
	if len(table.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", table.Warnings)
	}

	second := table.Rows[1]
	if second.No != 2 {
		t.Errorf("No = %d, want 2", second.No)
	}
	if !second.Amount.Valid || !second.Amount.Decimal.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Amount = %v, want 3000", second.Amount)
	}
	if second.MinOffset != IntOf(28) || second.OnTimeOffset != IntOf(31) || second.MaxOffset != IntOf(40) {
		t.Errorf("offsets = %v/%v/%v, want 28/31/40", second.MinOffset, second.OnTimeOffset, second.MaxOffset)
	}
	if !second.Percentage.Valid || !second.Percentage.Decimal.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("Percentage = %v, want 0.25", second.Percentage)
	}
	if second.PaymentDate.String() != "2025-02-15" {
		t.Errorf("PaymentDate = %s, want 2025-02-15", second.PaymentDate)
	}
}

func TestParseTableMissingCells(t *testing.T) {
	fixture := testutil.SampleFixture()
	fixture.Rows[0].Amount = "n/a"
	fixture.Rows[1].OnTime = ""
	fixture.Rows[2].Percentage = "25%"
	fixture.Rows[3].PaymentDate = "someday"

	table, err := ParseTable(mustLines(t, testutil.VariantA(fixture)), ProfileA)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(table.Rows) != 4 {
		t.Fatalf("len(Rows) = %d, want 4", len(table.Rows))
	}

	if table.Rows[0].Amount.Valid {
		t.Error("non-numeric amount should be missing")
	}
	if table.Rows[1].OnTimeOffset.Valid {
		t.Error("blank on-time offset should be missing")
	}
	if !table.Rows[2].Percentage.Decimal.Equal(decimal.RequireFromString("0.25")) {
		t.Errorf("Percentage = %s, want 0.25", table.Rows[2].Percentage.Decimal)
	}
	if table.Rows[3].PaymentDate.Valid {
		t.Error("unparsable payment date should be missing")
	}

	if len(table.Warnings) != 2 {
		t.Fatalf("len(Warnings) = %d, want 2: %v", len(table.Warnings), table.Warnings)
	}
	first := table.Warnings[0]
	if first.Line != 7 || first.Column != ColumnAmount || first.Value != "n/a" {
		t.Errorf("Warnings[0] = %+v, want line 7 amount n/a", first)
	}
	if table.MissingCells != 3 || table.TotalCells != 24 {
		t.Errorf("missing %d of %d cells, want 3 of 24", table.MissingCells, table.TotalCells)
	}
}

func TestParseTableSkipsBlankAndBadRows(t *testing.T) {
	data := []byte("\n" +
		"Başlangıç,2025-01-15\n" +
		"Taksit Sayısı,3\n" +
		"Toplam Prim,900\n" +
		"\n" +
		"Unnamed: 0,Taksit Tutarı,Tam,Notes,Unnamed: 4\n" +
		"1,300,0,first,\n" +
		",,,,\n" +
		"7,,,,x\n" +
		"x,300,30,second,\n" +
		"3,300,60,,\n")

	table, err := ParseTable(mustLines(t, data), ProfileA)
	if err != nil {
		t.Fatalf("ParseTable() error = %v", err)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(table.Rows))
	}
	if table.Rows[0].No != 1 || table.Rows[1].No != 7 || table.Rows[2].No != 3 {
		t.Errorf("row keys = %d,%d,%d, want 1,7,3", table.Rows[0].No, table.Rows[1].No, table.Rows[2].No)
	}
	if !table.Rows[1].Equal(Row{No: 7}) {
		t.Errorf("numbered row without data should be kept with unknown fields, got %+v", table.Rows[1])
	}
	if len(table.Ignored) != 1 || table.Ignored[0] != "Notes" {
		t.Errorf("Ignored = %v, want [Notes]", table.Ignored)
	}
	if len(table.Warnings) != 1 || table.Warnings[0].Column != ColumnInstallmentNo {
		t.Errorf("Warnings = %v, want one installment number warning", table.Warnings)
	}
	if table.HasColumn(ColumnPercentage) {
		t.Error("percentage column should be absent")
	}
	wantAbsent := []string{ColumnMinOffset, ColumnMaxOffset, ColumnPercentage, ColumnPaymentDate}
	if got := table.AbsentColumns(); strings.Join(got, ",") != strings.Join(wantAbsent, ",") {
		t.Errorf("AbsentColumns() = %v, want %v", got, wantAbsent)
	}
}

func TestParseTableErrors(t *testing.T) {
	meta := "\nBaşlangıç,2025-01-15\nTaksit Sayısı,1\nToplam Prim,900\n\n"

	tests := []struct {
		name string
		data string
	}{
		{name: "no header", data: meta},
		{name: "no recognised columns", data: meta + ",Foo,Bar\n1,2,3\n"},
		{name: "no rows", data: meta + ",Taksit Tutarı,Tam\n"},
		{name: "only blank rows", data: meta + ",Taksit Tutarı,Tam\n,,\n,,\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable(mustLines(t, []byte(tt.data)), ProfileA)
			var tableErr *MalformedTableError
			if !errors.As(err, &tableErr) {
				t.Fatalf("ParseTable() error = %v, want *MalformedTableError", err)
			}
		})
	}
}

func TestDetectProfile(t *testing.T) {
	fixture := testutil.SampleFixture()

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{name: "variant A", data: testutil.VariantA(fixture), want: ProfileA.Name},
		{name: "variant B", data: testutil.VariantB(fixture), want: ProfileB.Name},
		{name: "unreadable leading blank", data: []byte("\nfoo\n"), want: ProfileA.Name},
		{name: "unreadable", data: []byte("foo\nbar\n"), want: ProfileB.Name},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectProfile(mustLines(t, tt.data)); got.Name != tt.want {
				t.Errorf("DetectProfile() = %s, want %s", got.Name, tt.want)
			}
		})
	}
}

func TestLookupProfile(t *testing.T) {
	if _, fixed, err := LookupProfile("auto"); err != nil || fixed {
		t.Errorf("LookupProfile(auto) = %v, %v; want not fixed", fixed, err)
	}
	if p, fixed, err := LookupProfile(" B "); err != nil || !fixed || p != ProfileB {
		t.Errorf("LookupProfile(B) = %+v, %v, %v", p, fixed, err)
	}
	if _, _, err := LookupProfile("c"); err == nil {
		t.Error("LookupProfile(c) should fail")
	}
}

func TestParse(t *testing.T) {
	fixture := testutil.SampleFixture()
	variantA := testutil.VariantA(fixture)

	tests := []struct {
		name        string
		data        []byte
		profile     string
		wantProfile string
	}{
		{name: "auto A", data: variantA, profile: "auto", wantProfile: "a"},
		{name: "auto B", data: testutil.VariantB(fixture), profile: "", wantProfile: "b"},
		{name: "fixed A", data: variantA, profile: "a", wantProfile: "a"},
		{name: "byte order mark", data: append([]byte("\xEF\xBB\xBF"), variantA...), profile: "a", wantProfile: "a"},
		{name: "semicolons", data: []byte(strings.ReplaceAll(string(variantA), ",", ";")), profile: "auto", wantProfile: "a"},
		{name: "tabs", data: []byte(strings.ReplaceAll(string(variantA), ",", "\t")), profile: "auto", wantProfile: "a"},
		{name: "tabs fixed B", data: []byte(strings.ReplaceAll(string(testutil.VariantB(fixture)), ",", "\t")), profile: "b", wantProfile: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.data, tt.profile)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if res.Profile.Name != tt.wantProfile {
				t.Errorf("Profile = %s, want %s", res.Profile.Name, tt.wantProfile)
			}
			if res.Schedule.Metadata.InstallmentCount != 4 || len(res.Schedule.Rows) != 4 {
				t.Errorf("got count %d and %d rows, want 4 and 4",
					res.Schedule.Metadata.InstallmentCount, len(res.Schedule.Rows))
			}
		})
	}
}

func TestParseWindows1254(t *testing.T) {
	encoded, err := charmap.Windows1254.NewEncoder().Bytes(testutil.VariantA(testutil.SampleFixture()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	res, err := Parse(encoded, "auto")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Profile.Name != ProfileA.Name || !res.Table.HasColumn(ColumnPercentage) {
		t.Errorf("profile %s, columns %v", res.Profile.Name, res.Table.Columns)
	}
}

func TestParseStructuralFailure(t *testing.T) {
	res, err := Parse([]byte("just,some\ntext,here\n"), "a")
	if err == nil {
		t.Fatal("expected an error")
	}
	if res != nil {
		t.Error("no result should be returned on failure")
	}
}

func TestLogResult(t *testing.T) {
	fixture := testutil.SampleFixture()
	fixture.Rows[0].Amount = "bad"
	res, err := Parse(testutil.VariantA(fixture), "a")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	core, logs := observer.New(zap.DebugLevel)
	LogResult(zap.New(core), "schedule.TestLogResult", res)

	parsed := logs.FilterMessage("schedule parsed").All()
	if len(parsed) != 1 {
		t.Fatalf("expected one parse summary entry, got %d", len(parsed))
	}
	if got := parsed[0].ContextMap()["profile"]; got != ProfileA.Name {
		t.Errorf("profile field = %v, want %q", got, ProfileA.Name)
	}
	if n := logs.FilterMessage("columns not in file").Len(); n != 0 {
		t.Errorf("a file with every column should not report absent columns, got %d entries", n)
	}
	if n := logs.FilterMessage("schedule has missing cells").Len(); n != 1 {
		t.Errorf("expected one missing-cell entry, got %d", n)
	}
	if n := logs.FilterMessageSnippet("cell set to missing").Len(); n != len(res.Table.Warnings) {
		t.Errorf("expected %d warning entries, got %d", len(res.Table.Warnings), n)
	}

	LogResult(nil, "schedule.TestLogResult", res)
	LogResult(zap.New(core), "schedule.TestLogResult", nil)
}
