package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bdayinvite/src-server/model"
	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

func Login(as *utils.AppState) {
	id := "login"
	as.AddAppCmdHandler(id, loginHandler(as))
	as.AddAppCmdInfo(id, &discordgo.ApplicationCommand{
		Name:        id,
		Description: "Get a one-time key to manage your birthday events from the web API",
	})
}

func loginHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		interaction := i.Interaction

		// #region - respond to the original request
		startTimer := time.Now()
		if err := s.InteractionRespond(interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags: discordgo.MessageFlagsEphemeral,
			},
		}); err != nil {
			slog.Warn("loginHandler: can't send defer message", "error", err)
			return nil
		}
		as.MetricChans.RecordDiscordSend(startTimer)
		// #endregion

		// #region - get the user ID from interaction
		user := utils.InteractionUser(i)
		if user == nil {
			msg := "Can't get user ID from interaction."
			if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
				Content: &msg,
			}); err != nil {
				slog.Warn("loginHandler: can't send message about login", "error", err)
			}
			return fmt.Errorf("loginHandler: can't get user ID from interaction")
		}
		// #endregion

		// #region - insert temp key to DB
		secret := uuid.NewString()
		startTimer = time.Now()
		if _, err := as.BunDB.
			NewInsert().
			Model(&model.Session{
				Secret:           secret,
				Purpose:          model.SESSION_MODEL_PURPOSE_TEMP,
				UserID:           user.ID,
				ChannelID:        i.ChannelID,
				CreatedAtUnixUTC: as.Now().UTC().Unix(),
			}).
			Exec(context.Background()); err != nil {
			msg := "Can't create a login key, try again later."
			if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
				Content: &msg,
			}); err != nil {
				slog.Warn("loginHandler: can't send message about can't insert session", "error", err)
			}
			return fmt.Errorf("loginHandler: can't insert session: %w", err)
		}
		as.MetricChans.RecordDatabaseWrite(time.Since(startTimer))
		// #endregion

		msg := fmt.Sprintf("```%s```\nValid for 5 minutes, trade it at `POST /auth`.", secret)
		if _, err := s.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
			Content: &msg,
		}); err != nil {
			slog.Warn("loginHandler: can't respond about login successful", "error", err)
		}

		return nil
	}
}
