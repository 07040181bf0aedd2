package model

import (
	"github.com/uptrace/bun"
)

type Comment struct {
	bun.BaseModel `bun:"table:comments"`

	EventID   string `bun:"event_id,pk"`        // required
	Position  int    `bun:"position,pk"`        // required
	CommentID uint64 `bun:"comment_id,notnull"` // required
	Author    string `bun:"author,notnull"`     // required
	Content   string `bun:"content,notnull"`    // required

	BirthdayEvent *BirthdayEvent `bun:"rel:belongs-to,join:event_id=id"`
}
