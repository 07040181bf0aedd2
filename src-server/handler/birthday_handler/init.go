// The `birthday_handler` package puts birthday events on Discord: one
// `/birthday` slash command with a subcommand per operation, plus the
// Coming/Busy/Comment buttons under every event message and the comment
// modal.
//
// The creator of an event is a Discord user ID, so `creator` options are
// user pickers and default to whoever runs the command.
package birthday_handler

import (
	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

type subcommandHandlers map[string]utils.InteractionHandler

// Init injects the "birthday" slash command with its subcommands, and the
// component/modal handlers, into AppState.
func Init(as *utils.AppState) {
	localCmdInfo := make([]*discordgo.ApplicationCommandOption, 0)
	localCmdHandler := make(subcommandHandlers)

	create(as, &localCmdInfo, localCmdHandler)
	show(as, &localCmdInfo, localCmdHandler)
	vote(as, &localCmdInfo, localCmdHandler)
	comment(as, &localCmdInfo, localCmdHandler)
	mine(as, &localCmdInfo, localCmdHandler)

	id := "birthday"
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Birthday events: create one, RSVP, leave a comment.",
		Options:     localCmdInfo,
	})
	as.AddAppCmdHandler(id, func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		data := i.ApplicationCommandData()
		if len(data.Options) == 0 {
			return nil
		}
		if handler, ok := localCmdHandler[data.Options[0].Name]; ok {
			return handler(s, i)
		}
		return nil
	})
}

// the event picked by the "name" and "creator" options
var eventOptions = []*discordgo.ApplicationCommandOption{
	{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "The name of the event.",
		Required:    true,
		MaxLength:   64,
	},
	{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "creator",
		Description: "Who created the event, defaults to you.",
		Required:    false,
	},
}

func subcommandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	data := i.ApplicationCommandData()
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	if len(data.Options) == 0 {
		return optionMap
	}
	for _, opt := range data.Options[0].Options {
		optionMap[opt.Name] = opt
	}
	return optionMap
}
