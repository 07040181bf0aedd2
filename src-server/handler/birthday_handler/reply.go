package birthday_handler

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/store"
	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

var errNoUser = errors.New("can't get user from interaction")

// caller is the identity behind the interaction.
func caller(i *discordgo.InteractionCreate) (birthday.Identity, error) {
	user := utils.InteractionUser(i)
	if user == nil || user.ID == "" {
		return "", errNoUser
	}
	return birthday.Identity(user.ID), nil
}

// eventKey reads the "name" and "creator" options, the creator defaulting to
// the caller.
func eventKey(options map[string]*discordgo.ApplicationCommandInteractionDataOption, callerID birthday.Identity) birthday.Key {
	key := birthday.Key{Creator: callerID}
	if opt, ok := options["name"]; ok {
		key.EventName = utils.NormalizeText(opt.StringValue())
	}
	if opt, ok := options["creator"]; ok {
		if user := opt.UserValue(nil); user != nil && user.ID != "" {
			key.Creator = birthday.Identity(user.ID)
		}
	}
	return key
}

// userMessage is what Discord users see for a failure that is their fault,
// "" when the backend is to blame.
func userMessage(err error) string {
	var domainErr *birthday.Error
	switch {
	case errors.As(err, &domainErr):
		return domainErr.Message
	case errors.Is(err, store.ErrEventExists):
		return "You already have an event with that name."
	case errors.Is(err, errNoUser):
		return "Can't tell who you are from this interaction."
	}
	return ""
}

// replyError answers a failed operation with a hidden reply. Only backend
// faults are returned.
func replyError(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	if msg := userMessage(err); msg != "" {
		as.InteractRespHiddenReply(s, i, msg)
		return nil
	}
	as.InteractRespHiddenReply(s, i, "Something went wrong, try again later.")
	return err
}

// respondEvent shows an event, publicly or only to the caller.
func respondEvent(as *utils.AppState, s *discordgo.Session, i *discordgo.InteractionCreate, event birthday.Event, content string, hidden bool) {
	data := eventMessage(event, as.Now())
	data.Content = content
	if hidden {
		data.Flags = discordgo.MessageFlagsEphemeral
	}

	startTimer := time.Now()
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	}); err != nil {
		slog.Warn("respondEvent: can't respond", "event", store.KeyString(event.Key()), "error", err)
		return
	}
	as.MetricChans.RecordDiscordSend(startTimer)
}

func commentNotice(event birthday.Event, id uint64) string {
	return fmt.Sprintf("Comment #%d posted on **%s**.", id, event.EventName())
}
