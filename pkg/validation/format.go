// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iwvelando/payment-plan/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatXLSX:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatXLSX, format)
}

// ValidateExportFormat checks a file export format; pretty output cannot be
// written to a file.
func ValidateExportFormat(format string) error {
	if format != constants.OutputFormatCSV && format != constants.OutputFormatXLSX {
		return fmt.Errorf("expected export format of %s or %s, got %s",
			constants.OutputFormatCSV, constants.OutputFormatXLSX, format)
	}
	return nil
}

// ExportFormatFromPath derives the export format from a file extension.
func ExportFormatFromPath(path string) (string, error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := ValidateExportFormat(format); err != nil {
		return "", fmt.Errorf("cannot export to %s: %w", path, err)
	}
	return format, nil
}
