package birthday

import "time"

// Create validates the name and date and returns a fresh record owned by
// creator. Uniqueness of (creator, eventName) is checked by the store before
// this is called.
func Create(eventName string, eventDate int64, creator Identity, now time.Time) (Event, error) {
	if !ValidEventName(eventName) {
		return Event{}, ErrInvalidEventName
	}
	if eventDate <= now.Unix() {
		return Event{}, ErrPastDateNotAllowed
	}
	return Event{
		creator:   creator,
		eventName: eventName,
		eventDate: eventDate,
	}, nil
}
