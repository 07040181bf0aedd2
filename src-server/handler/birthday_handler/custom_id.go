package birthday_handler

import (
	"encoding/base64"
	"fmt"
	"strings"

	"bdayinvite/src-server/birthday"
)

// Prefixes of the custom IDs carried by buttons and modals. The dispatcher
// routes on the part before the first ':'.
const (
	componentComing       = "birthday-coming"
	componentBusy         = "birthday-busy"
	componentComment      = "birthday-comment"
	componentCommentModal = "birthday-comment-modal"

	commentInputID = "content"
)

// encodeCustomID packs an event key as "prefix:creator:base64url(name)". The
// name is encoded because it may contain ':'. The longest result stays under
// Discord's 100 character limit.
func encodeCustomID(prefix string, key birthday.Key) string {
	return strings.Join([]string{
		prefix,
		string(key.Creator),
		base64.RawURLEncoding.EncodeToString([]byte(key.EventName)),
	}, ":")
}

func decodeCustomID(customID string) (prefix string, key birthday.Key, err error) {
	parts := strings.SplitN(customID, ":", 3)
	if len(parts) != 3 || parts[1] == "" {
		return "", birthday.Key{}, fmt.Errorf("decodeCustomID: malformed custom id %q", customID)
	}
	name, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return "", birthday.Key{}, fmt.Errorf("decodeCustomID: %w", err)
	}
	return parts[0], birthday.Key{
		Creator:   birthday.Identity(parts[1]),
		EventName: string(name),
	}, nil
}
