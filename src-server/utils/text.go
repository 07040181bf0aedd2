package utils

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText strips surrounding spaces and composes the string to NFC, so
// the same name typed on two keyboards has the same bytes. Length limits are
// checked on the result.
func NormalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
