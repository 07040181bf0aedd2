package birthday_handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

const maxDescription = 4096

func mine(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler subcommandHandlers) {
	id := "mine"
	*cmdInfo = append(*cmdInfo, &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        id,
		Description: "List the events you created.",
	})
	cmdHandler[id] = mineHandler(as)
}

func mineHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		callerID, err := caller(i)
		if err != nil {
			return replyError(as, s, i, err)
		}
		events, err := as.Store.ListByCreator(context.Background(), callerID)
		if err != nil {
			return replyError(as, s, i, fmt.Errorf("mineHandler: %w", err))
		}

		startTimer := time.Now()
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags:  discordgo.MessageFlagsEphemeral,
				Embeds: []*discordgo.MessageEmbed{listEmbed(events, as.Now())},
			},
		}); err != nil {
			slog.Warn("mineHandler: can't respond", "error", err)
			return nil
		}
		as.MetricChans.RecordDiscordSend(startTimer)
		return nil
	}
}

// listEmbed is one line per event, cut off before Discord's description limit.
func listEmbed(events []birthday.Event, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "Your birthday events",
		Color: colorOpen,
	}
	if len(events) == 0 {
		embed.Description = "Nothing yet, try `/birthday create`."
		return embed
	}

	var sb strings.Builder
	for n, event := range events {
		line := fmt.Sprintf("**%s** <t:%d:R> · %d coming · %d busy · %d comments",
			event.EventName(), event.EventDate(),
			event.ComingCount(), event.BusyCount(), len(event.Comments()),
		)
		if event.HasPassed(now) {
			line += " · passed"
		}
		line += "\n"
		if sb.Len()+len(line) > maxDescription-32 {
			fmt.Fprintf(&sb, "…and %d more", len(events)-n)
			break
		}
		sb.WriteString(line)
	}
	embed.Description = strings.TrimSuffix(sb.String(), "\n")
	return embed
}
