package birthday

import "time"

// ConfirmAttendance records that caller is coming.
//
//   - no rsvp yet: append one (fails with ErrTooManyRSVPs when full)
//   - already coming: the rsvp is removed, confirming twice is a retraction
//   - busy: switched to coming in place
func (e Event) ConfirmAttendance(caller Identity, now time.Time) (Event, error) {
	return e.vote(caller, true, now)
}

// DeclineAttendance records that caller is busy. Mirror of ConfirmAttendance.
func (e Event) DeclineAttendance(caller Identity, now time.Time) (Event, error) {
	return e.vote(caller, false, now)
}

func (e Event) vote(caller Identity, coming bool, now time.Time) (Event, error) {
	if e.HasPassed(now) {
		return Event{}, ErrEventPassed
	}

	pos := e.rsvpPosition(caller)
	if pos < 0 && len(e.rsvps) >= MaxRSVPs {
		return Event{}, ErrTooManyRSVPs
	}

	next := e.clone()
	switch {
	case pos < 0:
		next.rsvps = append(next.rsvps, RSVP{InvitedPerson: caller, IsComing: coming})
		*next.counter(coming)++
	case next.rsvps[pos].IsComing == coming:
		// toggle off
		next.rsvps = append(next.rsvps[:pos], next.rsvps[pos+1:]...)
		decrement(next.counter(coming))
	default:
		// switch sides
		next.rsvps[pos].IsComing = coming
		decrement(next.counter(!coming))
		*next.counter(coming)++
	}
	return next, nil
}

func (e *Event) counter(coming bool) *uint32 {
	if coming {
		return &e.comingCount
	}
	return &e.busyCount
}

// saturating decrement
func decrement(n *uint32) {
	if *n > 0 {
		*n--
	}
}
