package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bdayinvite/src-server/handler/birthday_handler"
	"bdayinvite/src-server/store"
	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// SendFunc posts a message to a Discord channel.
type SendFunc func(channelID string, msg *discordgo.MessageSend) error

// EventNotify announces events starting within the reminder lead in the
// channel they were created from, until GracefulShutdown.
func EventNotify(as *utils.AppState) {
	send := func(channelID string, msg *discordgo.MessageSend) error {
		startTimer := time.Now()
		defer as.MetricChans.RecordDiscordSend(startTimer)
		_, err := as.DgSession.ChannelMessageSendComplex(channelID, msg)
		return err
	}

	ticker := time.NewTicker(as.Config.GetReminderInterval())
	defer ticker.Stop()
	shutdown := as.CreateGracefulShutdownChan()
	for {
		select {
		case <-shutdown:
			slog.Info("EventNotify: stopped")
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), as.Config.GetReminderInterval())
			sent, err := NotifyDue(ctx, as.Store, as.Now(), as.Config.GetReminderLead(), send)
			cancel()
			if err != nil {
				slog.Error("EventNotify: can't notify", "error", err)
			}
			if sent > 0 {
				slog.Info("EventNotify: reminders sent", "count", sent)
			}
		}
	}
}

// NotifyDue sends one reminder per event starting in (now, now+lead] and
// marks the sent ones. An event whose send failed stays pending for the next
// round.
func NotifyDue(ctx context.Context, st *store.Store, now time.Time, lead time.Duration, send SendFunc) (int, error) {
	reminders, err := st.DueForReminder(ctx, now, now.Add(lead))
	if err != nil {
		return 0, fmt.Errorf("NotifyDue: %w", err)
	}

	var errs []error
	sentIDs := make([]string, 0, len(reminders))
	for _, reminder := range reminders {
		if err := send(reminder.ChannelID, birthday_handler.EventMessage(reminder.Event, now)); err != nil {
			errs = append(errs, fmt.Errorf("can't send reminder for %s: %w", store.KeyString(reminder.Event.Key()), err))
			continue
		}
		sentIDs = append(sentIDs, reminder.ID)
	}

	if err := st.MarkNotified(ctx, sentIDs...); err != nil {
		errs = append(errs, fmt.Errorf("can't mark events as notified: %w", err))
	}
	if len(errs) > 0 {
		return len(sentIDs), fmt.Errorf("NotifyDue: %w", errors.Join(errs...))
	}
	return len(sentIDs), nil
}
