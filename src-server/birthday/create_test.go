package birthday_test

import (
	"strings"
	"testing"
	"time"

	"bdayinvite/src-server/birthday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Unix(1_700_000_000, 0).UTC()

func TestCreate(t *testing.T) {
	event, err := birthday.Create("Party", now.Unix()+1000, "alice", now)
	require.NoError(t, err)

	assert.Equal(t, birthday.Identity("alice"), event.Creator())
	assert.Equal(t, "Party", event.EventName())
	assert.Equal(t, now.Unix()+1000, event.EventDate())
	assert.Zero(t, event.ComingCount())
	assert.Zero(t, event.BusyCount())
	assert.Empty(t, event.RSVPs())
	assert.Empty(t, event.Comments())
	assert.NoError(t, event.Validate())
}

func TestCreateRejectsBadNames(t *testing.T) {
	for name, eventName := range map[string]string{
		"empty":      "",
		"33 bytes":   strings.Repeat("a", 33),
		"multi-byte": strings.Repeat("é", 17), // 17 runes, 34 bytes
	} {
		t.Run(name, func(t *testing.T) {
			_, err := birthday.Create(eventName, now.Unix()+1000, "alice", now)
			assert.ErrorIs(t, err, birthday.ErrInvalidEventName)
		})
	}

	_, err := birthday.Create(strings.Repeat("a", 32), now.Unix()+1000, "alice", now)
	assert.NoError(t, err, "32 bytes is the limit")
	_, err = birthday.Create(strings.Repeat("é", 16), now.Unix()+1000, "alice", now)
	assert.NoError(t, err, "16 two-byte runes fit")
}

func TestCreateRejectsPastDates(t *testing.T) {
	for _, date := range []int64{now.Unix(), now.Unix() - 1, 0} {
		_, err := birthday.Create("Party", date, "alice", now)
		assert.ErrorIs(t, err, birthday.ErrPastDateNotAllowed, "date %d", date)
	}
}

func TestCreateChecksNameBeforeDate(t *testing.T) {
	_, err := birthday.Create("", now.Unix()-1, "alice", now)
	assert.ErrorIs(t, err, birthday.ErrInvalidEventName)
}
