package model

import (
	"context"
	"fmt"
	"time"

	"bdayinvite/src-server/birthday"

	"github.com/uptrace/bun"
)

type BirthdayEvent struct {
	bun.BaseModel `bun:"table:birthday_events"`

	ID               string `bun:"id,pk"`                                        // required
	Creator          string `bun:"creator,notnull,unique:creator_event_name"`    // required
	EventName        string `bun:"event_name,notnull,unique:creator_event_name"` // required
	EventDateUnixUTC int64  `bun:"event_date,notnull"`                           // required
	ComingCount      uint32 `bun:"coming_count,notnull"`
	BusyCount        uint32 `bun:"busy_count,notnull"`

	// where the Discord front end posts the reminder, blank for events
	// created over HTTP
	ChannelID        string `bun:"channel_id"`
	NotificationSent bool   `bun:"notification_sent"`

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`

	Rsvps    []*Rsvp    `bun:"rel:has-many,join:id=event_id"`
	Comments []*Comment `bun:"rel:has-many,join:id=event_id"`
}

// SelectWithChildren loads the rsvps and comments in their stored order.
func SelectWithChildren(q *bun.SelectQuery) *bun.SelectQuery {
	return q.
		Relation("Rsvps", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}).
		Relation("Comments", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		})
}

// ToDomain converts the row and its loaded children into a record.
func (e *BirthdayEvent) ToDomain() (birthday.Event, error) {
	state := birthday.State{
		Creator:     birthday.Identity(e.Creator),
		EventName:   e.EventName,
		EventDate:   e.EventDateUnixUTC,
		ComingCount: e.ComingCount,
		BusyCount:   e.BusyCount,
	}
	for _, rsvp := range e.Rsvps {
		state.RSVPs = append(state.RSVPs, birthday.RSVP{
			InvitedPerson: birthday.Identity(rsvp.InvitedPerson),
			IsComing:      rsvp.IsComing,
		})
	}
	for _, comment := range e.Comments {
		state.Comments = append(state.Comments, birthday.Comment{
			CommentAuthor: birthday.Identity(comment.Author),
			CommentID:     comment.CommentID,
			Content:       comment.Content,
		})
	}

	event, err := birthday.FromState(state)
	if err != nil {
		return birthday.Event{}, fmt.Errorf("(*BirthdayEvent).ToDomain: row %s: %w", e.ID, err)
	}
	return event, nil
}

// Apply copies the record's mutable state onto the row. Creator, name and
// date never change after creation so they are only set when blank.
func (e *BirthdayEvent) Apply(event birthday.Event) {
	if e.Creator == "" {
		e.Creator = string(event.Creator())
		e.EventName = event.EventName()
		e.EventDateUnixUTC = event.EventDate()
	}
	e.ComingCount = event.ComingCount()
	e.BusyCount = event.BusyCount()

	e.Rsvps = e.Rsvps[:0]
	for i, rsvp := range event.RSVPs() {
		e.Rsvps = append(e.Rsvps, &Rsvp{
			EventID:       e.ID,
			Position:      i,
			InvitedPerson: string(rsvp.InvitedPerson),
			IsComing:      rsvp.IsComing,
		})
	}
	e.Comments = e.Comments[:0]
	for i, comment := range event.Comments() {
		e.Comments = append(e.Comments, &Comment{
			EventID:   e.ID,
			Position:  i,
			CommentID: comment.CommentID,
			Author:    string(comment.CommentAuthor),
			Content:   comment.Content,
		})
	}
}

// Insert writes a new row and its children. The unique index on
// (creator, event_name) rejects duplicates.
func (e *BirthdayEvent) Insert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("(*BirthdayEvent).Insert: id is blank")
	case e.Creator == "":
		return fmt.Errorf("(*BirthdayEvent).Insert: creator is blank")
	case e.EventName == "":
		return fmt.Errorf("(*BirthdayEvent).Insert: event name is blank")
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UTC().Unix()
	}

	if _, err := db.NewInsert().
		Model(e).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*BirthdayEvent).Insert: %w", err)
	}
	if err := e.insertChildren(ctx, db); err != nil {
		return fmt.Errorf("(*BirthdayEvent).Insert: %w", err)
	}
	return nil
}

// Save overwrites the counters and replaces every child row. Run it inside a
// transaction so readers never see a half written record.
func (e *BirthdayEvent) Save(ctx context.Context, db bun.IDB) error {
	if e.ID == "" {
		return fmt.Errorf("(*BirthdayEvent).Save: id is blank")
	}
	e.UpdatedAt = time.Now().UTC().Unix()

	if _, err := db.NewUpdate().
		Model(e).
		Column("coming_count", "busy_count", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return fmt.Errorf("(*BirthdayEvent).Save: %w", err)
	}

	if _, err := db.NewDelete().
		Model((*Rsvp)(nil)).
		Where("event_id = ?", e.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*BirthdayEvent).Save: can't delete rsvps: %w", err)
	}
	if _, err := db.NewDelete().
		Model((*Comment)(nil)).
		Where("event_id = ?", e.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("(*BirthdayEvent).Save: can't delete comments: %w", err)
	}
	if err := e.insertChildren(ctx, db); err != nil {
		return fmt.Errorf("(*BirthdayEvent).Save: %w", err)
	}
	return nil
}

func (e *BirthdayEvent) insertChildren(ctx context.Context, db bun.IDB) error {
	if len(e.Rsvps) > 0 {
		if _, err := db.NewInsert().
			Model(&e.Rsvps).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't insert rsvps: %w", err)
		}
	}
	if len(e.Comments) > 0 {
		if _, err := db.NewInsert().
			Model(&e.Comments).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't insert comments: %w", err)
		}
	}
	return nil
}
