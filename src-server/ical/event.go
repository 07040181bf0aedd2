package ical

import (
	"time"
)

type Event struct {
	UID         string    // required
	Summary     string    // required
	Start       time.Time // required, ends DefaultDuration later
	Stamp       time.Time // required, when the feed was generated
	Description string
	Organizer   string
	Attendees   []Attendee
}

// PARTSTAT values used by Attendee
const (
	PartStatAccepted = "ACCEPTED"
	PartStatDeclined = "DECLINED"
)

type Attendee struct {
	Name     string
	PartStat string
}

const DefaultDuration = 2 * time.Hour

func (e *Event) marshal(writer *lineWriter) {
	writer.line("BEGIN:VEVENT")
	writer.line("UID:" + escapeText(e.UID))
	writer.line("DTSTAMP:" + formatDatetime(e.Stamp))
	writer.line("DTSTART:" + formatDatetime(e.Start))
	writer.line("DTEND:" + formatDatetime(e.Start.Add(DefaultDuration)))
	writer.line("SUMMARY:" + escapeText(e.Summary))
	if e.Description != "" {
		writer.line("DESCRIPTION:" + escapeText(e.Description))
	}
	if e.Organizer != "" {
		writer.line("ORGANIZER;CN=" + quoteParam(e.Organizer) + ":urn:discord:" + escapeText(e.Organizer))
	}
	for _, attendee := range e.Attendees {
		writer.line("ATTENDEE;CN=" + quoteParam(attendee.Name) +
			";PARTSTAT=" + attendee.PartStat +
			":urn:discord:" + escapeText(attendee.Name))
	}
	writer.line("END:VEVENT")
}
