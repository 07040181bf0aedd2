package model

import (
	"github.com/uptrace/bun"
)

// One row per rsvp; position keeps the list order of the record.
type Rsvp struct {
	bun.BaseModel `bun:"table:rsvps"`

	EventID       string `bun:"event_id,pk"`            // required
	Position      int    `bun:"position,pk"`            // required
	InvitedPerson string `bun:"invited_person,notnull"` // required
	IsComing      bool   `bun:"is_coming,notnull"`

	BirthdayEvent *BirthdayEvent `bun:"rel:belongs-to,join:event_id=id"`
}
