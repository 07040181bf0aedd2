package birthday_handler

import (
	"context"
	"fmt"

	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func show(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler subcommandHandlers) {
	id := "show"
	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        id,
		Description: "Post an event with its RSVP buttons.",
		Options:     eventOptions,
	})
	cmdHandler[id] = showHandler(as)
}

func showHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		callerID, err := caller(i)
		if err != nil {
			return replyError(as, s, i, err)
		}
		key := eventKey(subcommandOptions(i), callerID)

		event, err := as.Store.Get(context.Background(), key)
		if err != nil {
			return replyError(as, s, i, fmt.Errorf("showHandler: %w", err))
		}
		respondEvent(as, s, i, event, "", false)
		return nil
	}
}
