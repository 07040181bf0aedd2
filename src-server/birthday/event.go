package birthday

import (
	"fmt"
	"time"
)

const (
	MaxEventNameBytes = 32
	MaxCommentBytes   = 500
	MaxRSVPs          = 5
	MaxComments       = 5
)

// ValidEventName reports whether name fits the 1 to MaxEventNameBytes range.
func ValidEventName(name string) bool {
	return len(name) >= 1 && len(name) <= MaxEventNameBytes
}

// Identity is an already-authenticated caller. It is only ever compared for
// equality.
type Identity string

// RSVP is one participant's current decision. IsComing false means busy.
type RSVP struct {
	InvitedPerson Identity `json:"invitedPerson"`
	IsComing      bool     `json:"isComing"`
}

type Comment struct {
	CommentAuthor Identity `json:"commentAuthor"`
	CommentID     uint64   `json:"commentId"`
	Content       string   `json:"content"`
}

// Key identifies a record in storage.
type Key struct {
	Creator   Identity
	EventName string
}

// Event is one birthday event. The fields are private so the counters can only
// move through the transitions in attendance.go and comment.go.
type Event struct {
	creator     Identity
	eventName   string
	eventDate   int64
	comingCount uint32
	busyCount   uint32
	rsvps       []RSVP
	comments    []Comment
}

// State is the exported, serializable form of an Event.
type State struct {
	Creator     Identity  `json:"creator"`
	EventName   string    `json:"eventName"`
	EventDate   int64     `json:"eventDate"`
	ComingCount uint32    `json:"comingCount"`
	BusyCount   uint32    `json:"busyCount"`
	RSVPs       []RSVP    `json:"rsvps"`
	Comments    []Comment `json:"comments"`
}

// FromState rebuilds an Event from its persisted form, rejecting states that
// break an invariant.
func FromState(s State) (Event, error) {
	e := Event{
		creator:     s.Creator,
		eventName:   s.EventName,
		eventDate:   s.EventDate,
		comingCount: s.ComingCount,
		busyCount:   s.BusyCount,
		rsvps:       append([]RSVP(nil), s.RSVPs...),
		comments:    append([]Comment(nil), s.Comments...),
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (e Event) State() State {
	return State{
		Creator:     e.creator,
		EventName:   e.eventName,
		EventDate:   e.eventDate,
		ComingCount: e.comingCount,
		BusyCount:   e.busyCount,
		RSVPs:       e.RSVPs(),
		Comments:    e.Comments(),
	}
}

// Validate checks every record invariant.
func (e Event) Validate() error {
	if !ValidEventName(e.eventName) {
		return fmt.Errorf("(Event).Validate: event name is %d bytes", len(e.eventName))
	}
	if len(e.rsvps) > MaxRSVPs {
		return fmt.Errorf("(Event).Validate: %d rsvps", len(e.rsvps))
	}
	if len(e.comments) > MaxComments {
		return fmt.Errorf("(Event).Validate: %d comments", len(e.comments))
	}

	var coming, busy uint32
	seen := make(map[Identity]struct{}, len(e.rsvps))
	for _, rsvp := range e.rsvps {
		if _, ok := seen[rsvp.InvitedPerson]; ok {
			return fmt.Errorf("(Event).Validate: duplicate rsvp for %q", rsvp.InvitedPerson)
		}
		seen[rsvp.InvitedPerson] = struct{}{}
		if rsvp.IsComing {
			coming++
		} else {
			busy++
		}
	}
	if coming != e.comingCount || busy != e.busyCount {
		return fmt.Errorf(
			"(Event).Validate: counters coming=%d busy=%d don't match rsvps coming=%d busy=%d",
			e.comingCount, e.busyCount, coming, busy,
		)
	}

	for _, comment := range e.comments {
		if n := len(comment.Content); n < 1 || n > MaxCommentBytes {
			return fmt.Errorf("(Event).Validate: comment %d is %d bytes", comment.CommentID, n)
		}
	}
	return nil
}

func (e Event) Creator() Identity { return e.creator }
func (e Event) EventName() string { return e.eventName }
func (e Event) EventDate() int64 { return e.eventDate }
func (e Event) ComingCount() uint32 { return e.comingCount }
func (e Event) BusyCount() uint32 { return e.busyCount }

func (e Event) Key() Key {
	return Key{Creator: e.creator, EventName: e.eventName}
}

// RSVPs returns a copy of the rsvp list in insertion order.
func (e Event) RSVPs() []RSVP {
	return append([]RSVP{}, e.rsvps...)
}

// Comments returns a copy of the comment list in insertion order.
func (e Event) Comments() []Comment {
	return append([]Comment{}, e.comments...)
}

// HasPassed reports whether voting is closed at now.
func (e Event) HasPassed(now time.Time) bool {
	return e.eventDate <= now.Unix()
}

// Comment returns the first comment carrying id.
func (e Event) Comment(id uint64) (Comment, bool) {
	if pos := e.commentPosition(id); pos >= 0 {
		return e.comments[pos], true
	}
	return Comment{}, false
}

// RSVPStatus is what a single identity currently answered.
type RSVPStatus string

const (
	RSVPStatusNone   RSVPStatus = "none"
	RSVPStatusComing RSVPStatus = "coming"
	RSVPStatusBusy   RSVPStatus = "busy"
)

func (e Event) RSVPOf(who Identity) RSVPStatus {
	pos := e.rsvpPosition(who)
	switch {
	case pos < 0:
		return RSVPStatusNone
	case e.rsvps[pos].IsComing:
		return RSVPStatusComing
	default:
		return RSVPStatusBusy
	}
}

func (e Event) rsvpPosition(who Identity) int {
	for i, rsvp := range e.rsvps {
		if rsvp.InvitedPerson == who {
			return i
		}
	}
	return -1
}

func (e Event) commentPosition(id uint64) int {
	for i, comment := range e.comments {
		if comment.CommentID == id {
			return i
		}
	}
	return -1
}

// clone gives the transitions a copy whose slices don't alias the receiver.
func (e Event) clone() Event {
	e.rsvps = append([]RSVP(nil), e.rsvps...)
	e.comments = append([]Comment(nil), e.comments...)
	return e
}
