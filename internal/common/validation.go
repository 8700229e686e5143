package common

import (
	"fmt"
	"slices"
)

// ValidateOutputFormat validates format against configured supported formats.
// An empty supported list allows any format.
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}
