// The `ical` package serializes birthday events to iCalendar so they can be
// subscribed to from any calendar app.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
// - Write only. Every event is a single VEVENT without recurrence.
// - All datetimes are written in UTC.
//
// # Example usage:
//
//	calendar := ical.NewCalendar("Party")
//	calendar.AddEvent(ical.Event{...})
//	_ = calendar.ToIcal(w)
package ical

import (
	"fmt"
	"io"
	"time"
)

const prodID = "-//bdayinvite//birthday events//EN"

type Calendar struct {
	name   string
	events []Event
}

// Initialize a new Calendar{} struct
func NewCalendar(name string) Calendar {
	return Calendar{name: name}
}

func (cal *Calendar) AddEvent(event Event) error {
	switch {
	case event.UID == "":
		return fmt.Errorf("(*Calendar).AddEvent: uid is blank")
	case event.Summary == "":
		return fmt.Errorf("(*Calendar).AddEvent: summary is blank")
	case event.Start.IsZero():
		return fmt.Errorf("(*Calendar).AddEvent: start is zero")
	case event.Stamp.IsZero():
		return fmt.Errorf("(*Calendar).AddEvent: stamp is zero")
	}
	cal.events = append(cal.events, event)
	return nil
}

// Marshal a Calendar{} struct into iCalendar, folded and CRLF terminated.
func (cal *Calendar) ToIcal(w io.Writer) error {
	writer := newLineWriter(w)

	writer.line("BEGIN:VCALENDAR")
	writer.line("VERSION:2.0")
	writer.line("PRODID:" + prodID)
	writer.line("CALSCALE:GREGORIAN")
	writer.line("METHOD:PUBLISH")
	if cal.name != "" {
		writer.line("X-WR-CALNAME:" + escapeText(cal.name))
	}
	for _, event := range cal.events {
		event.marshal(writer)
	}
	writer.line("END:VCALENDAR")

	return writer.err
}

func formatDatetime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}
