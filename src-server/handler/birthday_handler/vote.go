package birthday_handler

import (
	"context"
	"fmt"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

type voteFunc func(ctx context.Context, key birthday.Key, caller birthday.Identity) (birthday.Event, error)

func confirmVote(as *utils.AppState) voteFunc {
	return func(ctx context.Context, key birthday.Key, caller birthday.Identity) (birthday.Event, error) {
		return as.Store.ConfirmAttendance(ctx, key, caller, as.Now())
	}
}

func declineVote(as *utils.AppState) voteFunc {
	return func(ctx context.Context, key birthday.Key, caller birthday.Identity) (birthday.Event, error) {
		return as.Store.DeclineAttendance(ctx, key, caller, as.Now())
	}
}

// vote registers /birthday confirm, /birthday decline and the two RSVP
// buttons. Voting the same way twice takes the vote back.
func vote(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler subcommandHandlers) {
	*cmdInfo = append(*cmdInfo,
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "confirm",
			Description: "Say you're coming. Run it again to take it back.",
			Options:     eventOptions,
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "decline",
			Description: "Say you're busy. Run it again to take it back.",
			Options:     eventOptions,
		},
	)
	cmdHandler["confirm"] = voteCmdHandler(as, confirmVote(as))
	cmdHandler["decline"] = voteCmdHandler(as, declineVote(as))

	as.AddAppCmdHandler(componentComing, voteButtonHandler(as, confirmVote(as)))
	as.AddAppCmdHandler(componentBusy, voteButtonHandler(as, declineVote(as)))
}

func voteCmdHandler(as *utils.AppState, apply voteFunc) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		callerID, err := caller(i)
		if err != nil {
			return replyError(as, s, i, err)
		}
		key := eventKey(subcommandOptions(i), callerID)

		event, err := apply(context.Background(), key, callerID)
		if err != nil {
			return replyError(as, s, i, fmt.Errorf("voteCmdHandler: %w", err))
		}
		respondEvent(as, s, i, event, rsvpNotice(event, callerID), true)
		return nil
	}
}

func voteButtonHandler(as *utils.AppState, apply voteFunc) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		callerID, err := caller(i)
		if err != nil {
			return replyError(as, s, i, err)
		}
		_, key, err := decodeCustomID(i.MessageComponentData().CustomID)
		if err != nil {
			return replyError(as, s, i, err)
		}

		event, err := apply(context.Background(), key, callerID)
		if err != nil {
			return replyError(as, s, i, fmt.Errorf("voteButtonHandler: %w", err))
		}
		as.InteractRespUpdateMessage(s, i, eventMessage(event, as.Now()))
		return nil
	}
}

func rsvpNotice(event birthday.Event, callerID birthday.Identity) string {
	switch event.RSVPOf(callerID) {
	case birthday.RSVPStatusComing:
		return fmt.Sprintf("You're coming to **%s**.", event.EventName())
	case birthday.RSVPStatusBusy:
		return fmt.Sprintf("You're busy for **%s**.", event.EventName())
	default:
		return fmt.Sprintf("Your RSVP for **%s** was taken back.", event.EventName())
	}
}
