package scheduler_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"bdayinvite/src-server/model"
	"bdayinvite/src-server/scheduler"
	"bdayinvite/src-server/store"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var now = time.Unix(1_700_000_000, 0).UTC()

func newStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	bundb := bun.NewDB(db, sqlitedialect.New())
	t.Cleanup(func() { bundb.Close() })
	require.NoError(t, model.CreateSchema(context.Background(), bundb))
	return store.New(bundb)
}

type sent struct {
	channelID string
	msg       *discordgo.MessageSend
}

func TestNotifyDue(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	for _, tc := range []struct {
		name      string
		in        time.Duration
		channelID string
	}{
		{"Soon", 10 * time.Minute, "chan-a"},
		{"Sooner", 5 * time.Minute, "chan-b"},
		{"Later", 2 * time.Hour, "chan-a"},
		{"Web", 5 * time.Minute, ""},
	} {
		_, err := s.Create(ctx, "alice", tc.name, now.Add(tc.in).Unix(), now, tc.channelID)
		require.NoError(t, err)
	}

	var outbox []sent
	send := func(channelID string, msg *discordgo.MessageSend) error {
		outbox = append(outbox, sent{channelID, msg})
		return nil
	}

	count, err := scheduler.NotifyDue(ctx, s, now, 15*time.Minute, send)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, outbox, 2)
	channels := []string{outbox[0].channelID, outbox[1].channelID}
	assert.ElementsMatch(t, []string{"chan-a", "chan-b"}, channels)
	for _, s := range outbox {
		require.Len(t, s.msg.Embeds, 1)
		assert.NotEmpty(t, s.msg.Components)
	}

	// announced once
	count, err = scheduler.NotifyDue(ctx, s, now, 15*time.Minute, send)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Len(t, outbox, 2)
}

func TestNotifyDueRetriesFailedSend(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	_, err := s.Create(ctx, "alice", "Soon", now.Add(10*time.Minute).Unix(), now, "chan")
	require.NoError(t, err)

	failing := func(string, *discordgo.MessageSend) error { return errors.New("discord is down") }
	count, err := scheduler.NotifyDue(ctx, s, now, 15*time.Minute, failing)
	assert.ErrorContains(t, err, "discord is down")
	assert.Zero(t, count)

	var calls int
	ok := func(string, *discordgo.MessageSend) error { calls++; return nil }
	count, err = scheduler.NotifyDue(ctx, s, now, 15*time.Minute, ok)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, calls)
}
