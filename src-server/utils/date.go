package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"bdayinvite/src-server/birthday"

	"github.com/olebedev/when"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate accepts unix seconds, a few fixed layouts read in loc, or
// anything the natural language parser understands ("tomorrow 7pm").
// Unreadable input is birthday.ErrInvalidDate.
func ParseDate(w *when.Parser, input string, loc *time.Location, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, birthday.ErrInvalidDate
	}

	if unix, err := strconv.ParseInt(input, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, input, loc); err == nil {
			return parsed, nil
		}
	}

	result, err := w.Parse(input, now.In(loc))
	switch {
	case err != nil:
		return time.Time{}, fmt.Errorf("ParseDate: %w: %s", birthday.ErrInvalidDate, err.Error())
	case result == nil:
		return time.Time{}, birthday.ErrInvalidDate
	}
	return result.Time, nil
}
