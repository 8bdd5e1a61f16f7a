package schedule

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	zipMagic = []byte("PK\x03\x04")
)

// decodeText returns the content as UTF-8. Bytes that are not valid UTF-8
// are read as Windows-1254, the code page Turkish spreadsheet tools export.
func decodeText(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return data, nil
	}
	decoded, _, err := transform.Bytes(charmap.Windows1254.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode file: %w", err)
	}
	return decoded, nil
}

// delimiters are the separators seen in plan exports, in order of
// preference on a tie.
var delimiters = []rune{',', ';', '\t'}

// detectDelimiter picks the separator used most often on the first lines.
// Locale spreadsheet exports use ';' and some tools write tabs.
func detectDelimiter(text []byte) rune {
	counts := make(map[rune]int, len(delimiters))
	for i, line := range bytes.Split(text, []byte("\n")) {
		if i >= 10 {
			break
		}
		for _, d := range delimiters {
			counts[d] += bytes.Count(line, []byte(string(d)))
		}
	}
	best := delimiters[0]
	for _, d := range delimiters[1:] {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return best
}

// SplitLines decodes raw file content and returns its records indexed by
// physical line, so that fixed line offsets survive blank lines. Blank
// lines are nil entries. Excel workbooks are read from their first sheet.
func SplitLines(data []byte) ([][]string, error) {
	if bytes.HasPrefix(data, zipMagic) {
		return workbookLines(data)
	}

	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = detectDelimiter(text)
	r.FieldsPerRecord = -1 // metadata rows are narrower than the table
	r.LazyQuotes = true

	var lines [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &MalformedTableError{Reason: err.Error()}
		}
		line, _ := r.FieldPos(0)
		for len(lines) < line-1 {
			lines = append(lines, nil)
		}
		lines = append(lines, record)
	}
	return lines, nil
}

func workbookLines(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedTableError{Reason: fmt.Sprintf("cannot open workbook: %v", err)}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &MalformedTableError{Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &MalformedTableError{Reason: fmt.Sprintf("reading sheet %s: %v", sheets[0], err)}
	}

	lines := make([][]string, len(rows))
	for i, row := range rows {
		if !isBlankRecord(row) {
			lines[i] = row
		}
	}
	return lines, nil
}

func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
