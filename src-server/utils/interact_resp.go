package utils

import (
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
)

// =========================================================
// Pre-built discordgo interaction responses for convenience
// =========================================================

// Send a hidden reply to the interaction.
func (as *AppState) InteractRespHiddenReply(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	startTimer := time.Now()
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags:   discordgo.MessageFlagsEphemeral,
			Content: content,
		},
	}); err != nil {
		slog.Warn("can't send hidden reply", "error", err)
		return
	}
	as.MetricChans.RecordDiscordSend(startTimer)
}

// Replace the message the component was attached to.
func (as *AppState) InteractRespUpdateMessage(s *discordgo.Session, i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	startTimer := time.Now()
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}); err != nil {
		slog.Warn("can't update message", "error", err)
		return
	}
	as.MetricChans.RecordDiscordSend(startTimer)
}

// The Discord user behind an interaction, in guilds and DMs alike.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	switch {
	case i == nil || i.Interaction == nil:
		return nil
	case i.Member != nil && i.Member.User != nil:
		return i.Member.User
	default:
		return i.User
	}
}
