package birthday_handler

import (
	"context"
	"fmt"

	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

func create(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler subcommandHandlers) {
	id := "create"
	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        id,
		Description: "Create a birthday event in this channel.",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "The name of the event, up to 32 bytes.",
				Required:    true,
				MaxLength:   64,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "date",
				Description: `When it starts, e.g. "2025-06-01 19:00" or "next friday 7pm".`,
				Required:    true,
			},
		},
	})
	cmdHandler[id] = createHandler(as)
}

func createHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		creator, err := caller(i)
		if err != nil {
			return replyError(as, s, i, err)
		}
		options := subcommandOptions(i)
		now := as.Now()

		name := ""
		if opt, ok := options["name"]; ok {
			name = utils.NormalizeText(opt.StringValue())
		}
		rawDate := ""
		if opt, ok := options["date"]; ok {
			rawDate = opt.StringValue()
		}
		date, err := utils.ParseDate(as.When, rawDate, as.Config.GetLocation(), now)
		if err != nil {
			return replyError(as, s, i, err)
		}

		event, err := as.Store.Create(context.Background(), creator, name, date.Unix(), now, i.ChannelID)
		if err != nil {
			return replyError(as, s, i, fmt.Errorf("createHandler: %w", err))
		}

		respondEvent(as, s, i, event, "", false)
		return nil
	}
}
