package birthday_handler

import (
	"fmt"
	"strings"
	"time"

	"bdayinvite/src-server/birthday"

	"github.com/bwmarrin/discordgo"
)

const (
	colorOpen   = 0xf4a261
	colorClosed = 0x6c757d
)

func mention(identity birthday.Identity) string {
	return "<@" + string(identity) + ">"
}

func listOrDash(people []string) string {
	if len(people) == 0 {
		return "-"
	}
	return strings.Join(people, "\n")
}

// eventEmbed renders a record. Discord timestamps show the date in every
// reader's own timezone.
func eventEmbed(event birthday.Event, now time.Time) *discordgo.MessageEmbed {
	var coming, busy []string
	for _, rsvp := range event.RSVPs() {
		if rsvp.IsComing {
			coming = append(coming, mention(rsvp.InvitedPerson))
		} else {
			busy = append(busy, mention(rsvp.InvitedPerson))
		}
	}

	embed := &discordgo.MessageEmbed{
		Title:       event.EventName(),
		Description: "Hosted by " + mention(event.Creator()),
		Color:       colorOpen,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "When",
				Value: fmt.Sprintf("<t:%d:F> (<t:%d:R>)", event.EventDate(), event.EventDate()),
			},
			{
				Name:   fmt.Sprintf("Coming (%d)", event.ComingCount()),
				Value:  listOrDash(coming),
				Inline: true,
			},
			{
				Name:   fmt.Sprintf("Busy (%d)", event.BusyCount()),
				Value:  listOrDash(busy),
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d/%d RSVPs · %d/%d comments",
				len(event.RSVPs()), birthday.MaxRSVPs,
				len(event.Comments()), birthday.MaxComments,
			),
		},
	}
	// one field per comment, a field value holds at most 1024 characters
	for _, comment := range event.Comments() {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("Comment #%d", comment.CommentID),
			Value: mention(comment.CommentAuthor) + ": " + comment.Content,
		})
	}
	if event.HasPassed(now) {
		embed.Color = colorClosed
		embed.Footer.Text += " · RSVP closed"
	}
	return embed
}

// eventComponents are the buttons under an event message, disabled once the
// event has started.
func eventComponents(event birthday.Event, now time.Time) []discordgo.MessageComponent {
	closed := event.HasPassed(now)
	full := len(event.Comments()) >= birthday.MaxComments
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Coming",
					Style:    discordgo.SuccessButton,
					CustomID: encodeCustomID(componentComing, event.Key()),
					Disabled: closed,
				},
				discordgo.Button{
					Label:    "Busy",
					Style:    discordgo.SecondaryButton,
					CustomID: encodeCustomID(componentBusy, event.Key()),
					Disabled: closed,
				},
				discordgo.Button{
					Label:    "Comment",
					Style:    discordgo.PrimaryButton,
					CustomID: encodeCustomID(componentComment, event.Key()),
					Disabled: full,
				},
			},
		},
	}
}

func eventMessage(event birthday.Event, now time.Time) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		Embeds:     []*discordgo.MessageEmbed{eventEmbed(event, now)},
		Components: eventComponents(event, now),
	}
}

// EventMessage is what the reminder posts to the event's channel.
func EventMessage(event birthday.Event, now time.Time) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:    fmt.Sprintf("%s starts <t:%d:R>!", event.EventName(), event.EventDate()),
		Embeds:     []*discordgo.MessageEmbed{eventEmbed(event, now)},
		Components: eventComponents(event, now),
	}
}
