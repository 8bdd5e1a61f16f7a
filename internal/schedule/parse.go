package schedule

import (
	"fmt"

	"go.uber.org/zap"
)

// Result is a parsed schedule together with what was learned while reading
// it.
type Result struct {
	Schedule *Schedule
	Table    Table
	Profile  Profile
}

// Parse reads raw file content with the named profile ("a", "b", or "auto"
// to probe). On a structural failure no schedule is returned.
func Parse(data []byte, profile string) (*Result, error) {
	lines, err := SplitLines(data)
	if err != nil {
		return nil, err
	}

	p, fixed, err := LookupProfile(profile)
	if err != nil {
		return nil, err
	}
	if !fixed {
		p = DetectProfile(lines)
	}
	return parseLines(lines, p)
}

// ParseWithProfile reads raw file content with a fixed profile.
func ParseWithProfile(data []byte, p Profile) (*Result, error) {
	lines, err := SplitLines(data)
	if err != nil {
		return nil, err
	}
	return parseLines(lines, p)
}

func parseLines(lines [][]string, p Profile) (*Result, error) {
	meta, err := ParseMetadata(lines, p)
	if err != nil {
		return nil, err
	}
	table, err := ParseTable(lines, p)
	if err != nil {
		return nil, err
	}
	return &Result{
		Schedule: &Schedule{Metadata: meta, Rows: table.Rows},
		Table:    table,
		Profile:  p,
	}, nil
}

// LogResult reports how a parse went: the layout used, ignored columns and
// every cell that was set to unknown.
func LogResult(logger *zap.Logger, op string, res *Result) {
	if logger == nil || res == nil {
		return
	}
	logger.Info("schedule parsed",
		zap.String("op", op),
		zap.String("profile", res.Profile.Name),
		zap.Int("rows", len(res.Table.Rows)),
		zap.Strings("columns", res.Table.Columns),
	)
	if absent := res.Table.AbsentColumns(); len(absent) > 0 {
		logger.Info("columns not in file",
			zap.String("op", op),
			zap.Strings("columns", absent),
		)
	}
	if len(res.Table.Ignored) > 0 {
		logger.Debug("ignored columns",
			zap.String("op", op),
			zap.Strings("columns", res.Table.Ignored),
		)
	}
	for _, w := range res.Table.Warnings {
		logger.Warn(fmt.Sprintf("cell set to missing: %s", w),
			zap.String("op", op),
		)
	}
	if res.Table.MissingCells > 0 {
		logger.Warn("schedule has missing cells",
			zap.String("op", op),
			zap.Int("missing", res.Table.MissingCells),
			zap.Int("total", res.Table.TotalCells),
			zap.Float64("ratio", res.Table.MissingRatio()),
		)
	}
}
