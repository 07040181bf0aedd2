// The `store` package persists birthday records and is the only place they
// get written.
//
// Every read-modify-write on one (creator, event name) key runs under that
// key's mutex and inside one transaction: load the row, hand the record to a
// birthday transition, persist the result. A failed transition writes
// nothing. Different keys don't block each other.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/model"

	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/uptrace/bun"
)

// ErrEventExists is returned by Create when the creator already has an event
// with that name.
var ErrEventExists = errors.New("event already exists")

// Operation names handed to OnOperation.
const (
	OpCreate        = "create"
	OpConfirm       = "confirm"
	OpDecline       = "decline"
	OpAddComment    = "add_comment"
	OpRemoveComment = "remove_comment"
)

type Store struct {
	db    *bun.DB
	locks *xsync.MapOf[birthday.Key, *keyLock]

	// observers, nil-safe
	OnRead      func(time.Duration)
	OnWrite     func(time.Duration)
	OnOperation func(op string, err error)
}

func New(db *bun.DB) *Store {
	return &Store{
		db:    db,
		locks: xsync.NewMapOf[birthday.Key, *keyLock](),
	}
}

// keyLock lives in the map only while someone holds or waits for it. refs
// is only touched inside Compute.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

func (s *Store) lock(key birthday.Key) func() {
	l, _ := s.locks.Compute(key, func(old *keyLock, loaded bool) (*keyLock, bool) {
		if !loaded {
			old = &keyLock{}
		}
		old.refs++
		return old, false
	})
	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locks.Compute(key, func(old *keyLock, loaded bool) (*keyLock, bool) {
			old.refs--
			return old, old.refs == 0
		})
	}
}

func (s *Store) observe(fn func(time.Duration), start time.Time) {
	if fn != nil {
		fn(time.Since(start))
	}
}

func (s *Store) record(op string, err error) {
	if s.OnOperation != nil {
		s.OnOperation(op, err)
	}
}

// Create rejects a taken key with ErrEventExists, then validates and inserts
// a new record. channelID may be blank.
func (s *Store) Create(ctx context.Context, creator birthday.Identity, eventName string, eventDate int64, now time.Time, channelID string) (event birthday.Event, err error) {
	defer func() { s.record(OpCreate, err) }()
	if !birthday.ValidEventName(eventName) {
		return birthday.Event{}, fmt.Errorf("(*Store).Create: %w", birthday.ErrInvalidEventName)
	}
	defer s.lock(birthday.Key{Creator: creator, EventName: eventName})()

	startTimer := time.Now()
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*model.BirthdayEvent)(nil)).
			Where("creator = ?", string(creator)).
			Where("event_name = ?", eventName).
			Exists(ctx)
		switch {
		case err != nil:
			return fmt.Errorf("can't check if event exists: %w", err)
		case exists:
			return ErrEventExists
		}

		event, err = birthday.Create(eventName, eventDate, creator, now)
		if err != nil {
			return err
		}

		eventModel := model.BirthdayEvent{
			ID:        uuid.NewString(),
			ChannelID: channelID,
			CreatedAt: now.UTC().Unix(),
		}
		eventModel.Apply(event)
		return eventModel.Insert(ctx, tx)
	}); err != nil {
		return birthday.Event{}, fmt.Errorf("(*Store).Create: %w", err)
	}
	s.observe(s.OnWrite, startTimer)
	return event, nil
}

// Get returns birthday.ErrEventNotFound when the key doesn't resolve.
func (s *Store) Get(ctx context.Context, key birthday.Key) (birthday.Event, error) {
	startTimer := time.Now()
	eventModel, err := s.load(ctx, s.db, key)
	if err != nil {
		return birthday.Event{}, fmt.Errorf("(*Store).Get: %w", err)
	}
	s.observe(s.OnRead, startTimer)

	event, err := eventModel.ToDomain()
	if err != nil {
		return birthday.Event{}, fmt.Errorf("(*Store).Get: %w", err)
	}
	return event, nil
}

// ListByCreator returns the creator's events, soonest first.
func (s *Store) ListByCreator(ctx context.Context, creator birthday.Identity) ([]birthday.Event, error) {
	startTimer := time.Now()
	eventModels := make([]model.BirthdayEvent, 0)
	if err := s.db.NewSelect().
		Model(&eventModels).
		Apply(model.SelectWithChildren).
		Where("creator = ?", string(creator)).
		Order("event_date ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("(*Store).ListByCreator: %w", err)
	}
	s.observe(s.OnRead, startTimer)

	events := make([]birthday.Event, 0, len(eventModels))
	for _, eventModel := range eventModels {
		event, err := eventModel.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("(*Store).ListByCreator: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *Store) ConfirmAttendance(ctx context.Context, key birthday.Key, caller birthday.Identity, now time.Time) (birthday.Event, error) {
	return s.update(ctx, OpConfirm, key, func(e birthday.Event) (birthday.Event, error) {
		return e.ConfirmAttendance(caller, now)
	})
}

func (s *Store) DeclineAttendance(ctx context.Context, key birthday.Key, caller birthday.Identity, now time.Time) (birthday.Event, error) {
	return s.update(ctx, OpDecline, key, func(e birthday.Event) (birthday.Event, error) {
		return e.DeclineAttendance(caller, now)
	})
}

func (s *Store) AddComment(ctx context.Context, key birthday.Key, author birthday.Identity, content string) (birthday.Event, error) {
	return s.update(ctx, OpAddComment, key, func(e birthday.Event) (birthday.Event, error) {
		return e.AddComment(author, content)
	})
}

func (s *Store) RemoveComment(ctx context.Context, key birthday.Key, caller birthday.Identity, commentID uint64) (birthday.Event, error) {
	return s.update(ctx, OpRemoveComment, key, func(e birthday.Event) (birthday.Event, error) {
		return e.RemoveComment(caller, commentID)
	})
}

func (s *Store) update(ctx context.Context, op string, key birthday.Key, transition func(birthday.Event) (birthday.Event, error)) (next birthday.Event, err error) {
	defer func() { s.record(op, err) }()
	// no record can have such a name
	if !birthday.ValidEventName(key.EventName) {
		return birthday.Event{}, fmt.Errorf("(*Store).update: %w", birthday.ErrEventNotFound)
	}
	defer s.lock(key)()

	startTimer := time.Now()
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		eventModel, err := s.load(ctx, tx, key)
		if err != nil {
			return err
		}
		current, err := eventModel.ToDomain()
		if err != nil {
			return err
		}
		if next, err = transition(current); err != nil {
			return err
		}
		eventModel.Apply(next)
		return eventModel.Save(ctx, tx)
	}); err != nil {
		return birthday.Event{}, fmt.Errorf("(*Store).update: %w", err)
	}
	s.observe(s.OnWrite, startTimer)
	return next, nil
}

func (s *Store) load(ctx context.Context, db bun.IDB, key birthday.Key) (*model.BirthdayEvent, error) {
	eventModel := new(model.BirthdayEvent)
	if err := db.NewSelect().
		Model(eventModel).
		Apply(model.SelectWithChildren).
		Where("creator = ?", string(key.Creator)).
		Where("event_name = ?", key.EventName).
		Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, birthday.ErrEventNotFound
		}
		return nil, err
	}
	return eventModel, nil
}

// Reminder is an event that should be announced in a Discord channel.
type Reminder struct {
	ID        string
	ChannelID string
	Event     birthday.Event
}

// DueForReminder returns events with a channel that start within (from, to]
// and haven't been announced yet.
func (s *Store) DueForReminder(ctx context.Context, from, to time.Time) ([]Reminder, error) {
	eventModels := make([]model.BirthdayEvent, 0)
	if err := s.db.NewSelect().
		Model(&eventModels).
		Apply(model.SelectWithChildren).
		Where("notification_sent = ?", false).
		Where("channel_id != ?", "").
		Where("event_date > ?", from.Unix()).
		Where("event_date <= ?", to.Unix()).
		Order("event_date ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("(*Store).DueForReminder: %w", err)
	}

	reminders := make([]Reminder, 0, len(eventModels))
	for _, eventModel := range eventModels {
		event, err := eventModel.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("(*Store).DueForReminder: %w", err)
		}
		reminders = append(reminders, Reminder{
			ID:        eventModel.ID,
			ChannelID: eventModel.ChannelID,
			Event:     event,
		})
	}
	return reminders, nil
}

// MarkNotified flags the given reminders as sent.
func (s *Store) MarkNotified(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.db.NewUpdate().
		Model((*model.BirthdayEvent)(nil)).
		Set("notification_sent = ?", true).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Store).MarkNotified: %w", err)
	}
	return nil
}

// Probe runs an empty read, used as a database latency metric.
func (s *Store) Probe(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if _, err := s.db.NewSelect().
		Model((*model.BirthdayEvent)(nil)).
		Where("creator = ?", "").
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// KeyString is a printable form of a key for logs.
func KeyString(key birthday.Key) string {
	return strings.Join([]string{string(key.Creator), key.EventName}, "/")
}
