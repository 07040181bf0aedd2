package ical

import (
	"io"
	"strings"
	"unicode/utf8"
)

const maxLineOctets = 75

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

// escapeText escapes a TEXT value.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// quoteParam quotes a parameter value, dropping the characters that can't
// appear inside quotes.
func quoteParam(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '"' || r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
	return `"` + s + `"`
}

// lineWriter writes content lines folded at 75 octets, never inside a
// multi-byte rune. The first error sticks and later writes are skipped.
type lineWriter struct {
	w   io.Writer
	err error
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: w}
}

func (lw *lineWriter) write(s string) {
	if lw.err != nil {
		return
	}
	_, lw.err = io.WriteString(lw.w, s)
}

func (lw *lineWriter) line(s string) {
	limit := maxLineOctets
	for len(s) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		if cut == 0 { // not utf-8
			cut = limit
		}
		lw.write(s[:cut])
		lw.write("\r\n ")
		s = s[cut:]
		// the leading space of a continuation line counts
		limit = maxLineOctets - 1
	}
	lw.write(s)
	lw.write("\r\n")
}
