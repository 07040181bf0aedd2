package birthday_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"bdayinvite/src-server/birthday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyScenario(t *testing.T) {
	event, err := birthday.Create("Party", now.Unix()+1000, "creator", now)
	require.NoError(t, err)
	assertCounters(t, event, 0, 0)

	event, err = event.ConfirmAttendance("A", now)
	require.NoError(t, err)
	assertCounters(t, event, 1, 0)

	event, err = event.ConfirmAttendance("A", now)
	require.NoError(t, err)
	assertCounters(t, event, 0, 0)
	assert.Equal(t, birthday.RSVPStatusNone, event.RSVPOf("A"))

	event, err = event.DeclineAttendance("A", now)
	require.NoError(t, err)
	assertCounters(t, event, 0, 1)

	event, err = event.AddComment("B", "Excited!")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), event.Comments()[0].CommentID)

	event, err = event.AddComment("A", "Me too")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.Comments()[1].CommentID)

	event, err = event.RemoveComment("A", 1)
	require.NoError(t, err)
	require.Len(t, event.Comments(), 1)
	assert.Equal(t, birthday.Identity("B"), event.Comments()[0].CommentAuthor)

	_, err = event.RemoveComment("A", 1)
	assert.ErrorIs(t, err, birthday.ErrCommentNotFound)

	// time moves past the event
	later := now.Add(2000 * time.Second)
	before := event.State()
	_, err = event.ConfirmAttendance("A", later)
	assert.ErrorIs(t, err, birthday.ErrEventPassed)
	assert.Equal(t, before, event.State())
}

func TestFromStateRoundTrip(t *testing.T) {
	event, err := newEvent(t).ConfirmAttendance("bob", now)
	require.NoError(t, err)
	event, err = event.DeclineAttendance("carol", now)
	require.NoError(t, err)
	event, err = event.AddComment("bob", "hi")
	require.NoError(t, err)

	restored, err := birthday.FromState(event.State())
	require.NoError(t, err)
	assert.Equal(t, event.State(), restored.State())
	assert.Equal(t, birthday.Key{Creator: "alice", EventName: "Party"}, restored.Key())
}

func TestFromStateRejectsBrokenInvariants(t *testing.T) {
	valid := func() birthday.State {
		return birthday.State{
			Creator:     "alice",
			EventName:   "Party",
			EventDate:   now.Unix() + 1000,
			ComingCount: 1,
			BusyCount:   1,
			RSVPs: []birthday.RSVP{
				{InvitedPerson: "bob", IsComing: true},
				{InvitedPerson: "carol", IsComing: false},
			},
		}
	}
	_, err := birthday.FromState(valid())
	require.NoError(t, err)

	for name, mutate := range map[string]func(s *birthday.State){
		"empty name": func(s *birthday.State) {
			s.EventName = ""
		},
		"counter mismatch": func(s *birthday.State) {
			s.ComingCount = 2
		},
		"swapped counters": func(s *birthday.State) {
			s.ComingCount, s.BusyCount = 0, 2
		},
		"duplicate voter": func(s *birthday.State) {
			s.RSVPs[1].InvitedPerson = "bob"
		},
		"too many rsvps": func(s *birthday.State) {
			for i := range 4 {
				s.RSVPs = append(s.RSVPs, birthday.RSVP{InvitedPerson: birthday.Identity(fmt.Sprint(i)), IsComing: true})
			}
			s.ComingCount += 4
		},
		"too many comments": func(s *birthday.State) {
			for i := range 6 {
				s.Comments = append(s.Comments, birthday.Comment{CommentAuthor: "bob", CommentID: uint64(i), Content: "x"})
			}
		},
		"empty comment": func(s *birthday.State) {
			s.Comments = []birthday.Comment{{CommentAuthor: "bob"}}
		},
	} {
		t.Run(name, func(t *testing.T) {
			state := valid()
			mutate(&state)
			_, err := birthday.FromState(state)
			assert.Error(t, err)
			assert.Empty(t, birthday.CodeOf(err), "storage corruption is not a domain error")
		})
	}
}

func TestErrorCodes(t *testing.T) {
	wrapped := fmt.Errorf("store: %w", birthday.ErrTooManyRSVPs)
	assert.True(t, errors.Is(wrapped, birthday.ErrTooManyRSVPs))
	assert.False(t, errors.Is(wrapped, birthday.ErrTooManyComments))
	assert.Equal(t, birthday.CodeTooManyRSVPs, birthday.CodeOf(wrapped))
	assert.Equal(t, birthday.Code(""), birthday.CodeOf(errors.New("boom")))
	assert.Equal(t, "Maximum 5 RSVPs allowed for this event", wrapped.(interface{ Unwrap() error }).Unwrap().Error())
}
