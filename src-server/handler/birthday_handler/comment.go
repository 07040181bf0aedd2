package birthday_handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bdayinvite/src-server/birthday"
	"bdayinvite/src-server/utils"

	"github.com/bwmarrin/discordgo"
)

// comment registers /birthday comment, /birthday uncomment, the Comment
// button and the modal it opens.
func comment(as *utils.AppState, cmdInfo *[]*discordgo.ApplicationCommandOption, cmdHandler subcommandHandlers) {
	minID := 0.0
	*cmdInfo = append(*cmdInfo,
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "comment",
			Description: "Leave a comment on an event.",
			Options: append([]*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "content",
					Description: "Up to 500 bytes.",
					Required:    true,
					MaxLength:   birthday.MaxCommentBytes,
				},
			}, eventOptions...),
		},
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "uncomment",
			Description: "Delete one of your comments.",
			Options: append([]*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "The comment number shown on the event.",
					Required:    true,
					MinValue:    &minID,
				},
			}, eventOptions...),
		},
	)
	cmdHandler["comment"] = commentCmdHandler(as)
	cmdHandler["uncomment"] = uncommentCmdHandler(as)

	as.AddAppCmdHandler(componentComment, commentButtonHandler(as))
	as.AddAppCmdHandler(componentCommentModal, commentModalHandler(as))
}

func commentCmdHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		callerID, err := caller(i)
		if err != nil {
			return replyError(as, s, i, err)
		}
		options := subcommandOptions(i)
		key := eventKey(options, callerID)
		content := ""
		if opt, ok := options["content"]; ok {
			content = utils.NormalizeText(opt.StringValue())
		}

		event, err := as.Store.AddComment(context.Background(), key, callerID, content)
		if err != nil {
			return replyError(as, s, i, fmt.Errorf("commentCmdHandler: %w", err))
		}
		comments := event.Comments()
		respondEvent(as, s, i, event, commentNotice(event, comments[len(comments)-1].CommentID), true)
		return nil
	}
}

func uncommentCmdHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		callerID, err := caller(i)
		if err != nil {
			return replyError(as, s, i, err)
		}
		options := subcommandOptions(i)
		key := eventKey(options, callerID)
		var commentID uint64
		if opt, ok := options["id"]; ok && opt.IntValue() >= 0 {
			commentID = uint64(opt.IntValue())
		}

		event, err := as.Store.RemoveComment(context.Background(), key, callerID, commentID)
		if err != nil {
			return replyError(as, s, i, fmt.Errorf("uncommentCmdHandler: %w", err))
		}
		respondEvent(as, s, i, event, fmt.Sprintf("Comment #%d deleted.", commentID), true)
		return nil
	}
}

func commentButtonHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		_, key, err := decodeCustomID(i.MessageComponentData().CustomID)
		if err != nil {
			return replyError(as, s, i, err)
		}

		startTimer := time.Now()
		if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseModal,
			Data: commentModal(key),
		}); err != nil {
			slog.Warn("commentButtonHandler: can't open modal", "error", err)
			return nil
		}
		as.MetricChans.RecordDiscordSend(startTimer)
		return nil
	}
}

func commentModal(key birthday.Key) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: encodeCustomID(componentCommentModal, key),
		Title:    "Comment on " + key.EventName,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:  commentInputID,
						Label:     "Comment",
						Style:     discordgo.TextInputParagraph,
						Required:  true,
						MinLength: 1,
						MaxLength: birthday.MaxCommentBytes,
					},
				},
			},
		},
	}
}

// modalText finds a text input's value in a submitted modal.
func modalText(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			if input, ok := component.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

func commentModalHandler(as *utils.AppState) utils.InteractionHandler {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) error {
		callerID, err := caller(i)
		if err != nil {
			return replyError(as, s, i, err)
		}
		data := i.ModalSubmitData()
		_, key, err := decodeCustomID(data.CustomID)
		if err != nil {
			return replyError(as, s, i, err)
		}
		content := utils.NormalizeText(modalText(data, commentInputID))

		event, err := as.Store.AddComment(context.Background(), key, callerID, content)
		if err != nil {
			return replyError(as, s, i, fmt.Errorf("commentModalHandler: %w", err))
		}
		// the modal was opened from the event message, refresh it
		if i.Message != nil {
			as.InteractRespUpdateMessage(s, i, eventMessage(event, as.Now()))
			return nil
		}
		comments := event.Comments()
		respondEvent(as, s, i, event, commentNotice(event, comments[len(comments)-1].CommentID), true)
		return nil
	}
}
