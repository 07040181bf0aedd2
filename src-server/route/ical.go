package route

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bdayinvite/src-server/ical"
	"bdayinvite/src-server/store"
	"bdayinvite/src-server/utils"
)

// Ical serves one event as a calendar feed. Calendar apps subscribe without
// a session, so this route is public.
func Ical(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /ical/{creator}/{name}", func(w http.ResponseWriter, r *http.Request) {
		key := keyFrom(r)
		event, err := as.Store.Get(r.Context(), key)
		if err != nil {
			writeError(w, err)
			return
		}

		icalEvent := ical.Event{
			UID:       store.KeyString(key),
			Summary:   event.EventName(),
			Start:     time.Unix(event.EventDate(), 0).UTC(),
			Stamp:     as.Now(),
			Organizer: string(event.Creator()),
		}
		comments := make([]string, 0, len(event.Comments()))
		for _, comment := range event.Comments() {
			comments = append(comments, string(comment.CommentAuthor)+": "+comment.Content)
		}
		icalEvent.Description = strings.Join(comments, "\n")
		for _, rsvp := range event.RSVPs() {
			partStat := ical.PartStatDeclined
			if rsvp.IsComing {
				partStat = ical.PartStatAccepted
			}
			icalEvent.Attendees = append(icalEvent.Attendees, ical.Attendee{
				Name:     string(rsvp.InvitedPerson),
				PartStat: partStat,
			})
		}
		calendar := ical.NewCalendar(event.EventName())
		if err := calendar.AddEvent(icalEvent); err != nil {
			writeError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if err := calendar.ToIcal(w); err != nil {
			slog.Warn("can't write to response", "where", "route/ical.go", "error", err)
		}
	})
}
