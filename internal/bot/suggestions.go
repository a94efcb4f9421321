package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) handleSuggestCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.interactionUser(interaction)
	text := optionMap(options)["text"].StringValue()

	settings := b.guildSettings(interaction.GuildID)
	channelID := settings.SuggestionsChannel
	if channelID == "" {
		channelID = interaction.ChannelID
	}

	embed := b.commandEmbed("Suggestion", text, b.cfg.Embeds.Action, []*discordgo.MessageEmbedField{
		{Name: "Author", Value: "<@" + user.ID + ">", Inline: true},
		{Name: "Votes", Value: "👍 0 | 👎 0", Inline: true},
	})
	msg, err := session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Upvote", Style: discordgo.SuccessButton, CustomID: "suggest_up"},
				discordgo.Button{Label: "Downvote", Style: discordgo.DangerButton, CustomID: "suggest_down"},
			}},
		},
	})
	if err != nil {
		b.respondError(session, interaction, "Could not post the suggestion.")
		return
	}

	b.suggestMu.Lock()
	b.suggestVotes[msg.ID] = &suggestionTally{voters: make(map[string]bool)}
	b.suggestMu.Unlock()

	b.respond(session, interaction, fmt.Sprintf("Suggestion posted in <#%s>.", channelID), true)
}

func (b *Bot) handleSuggestionVote(session *discordgo.Session, interaction *discordgo.InteractionCreate, up bool) {
	user := b.interactionUser(interaction)
	if interaction.Message == nil {
		return
	}
	messageID := interaction.Message.ID

	b.suggestMu.Lock()
	tally, ok := b.suggestVotes[messageID]
	if !ok {
		// Counts survive a restart on the embed itself; voter identities
		// do not, so seed from the posted field instead of zero.
		upvotes, downvotes := embedVoteCounts(interaction.Message)
		tally = &suggestionTally{up: upvotes, down: downvotes, voters: make(map[string]bool)}
		b.suggestVotes[messageID] = tally
	}
	if tally.voters[user.ID] {
		b.suggestMu.Unlock()
		b.respondError(session, interaction, "You already voted on this suggestion.")
		return
	}
	tally.voters[user.ID] = true
	if up {
		tally.up++
	} else {
		tally.down++
	}
	upvotes, downvotes := tally.up, tally.down
	b.suggestMu.Unlock()

	if len(interaction.Message.Embeds) > 0 {
		embed := interaction.Message.Embeds[0]
		for _, field := range embed.Fields {
			if field.Name == "Votes" {
				field.Value = fmt.Sprintf("👍 %d | 👎 %d", upvotes, downvotes)
			}
		}
		_, err := session.ChannelMessageEditEmbed(interaction.ChannelID, messageID, embed)
		if err != nil {
			b.logger.Warn("suggestion tally edit failed", zap.String("message_id", messageID), zap.Error(err))
		}
	}

	b.respond(session, interaction, "Vote counted.", true)
}

func embedVoteCounts(message *discordgo.Message) (int, int) {
	if message == nil || len(message.Embeds) == 0 {
		return 0, 0
	}
	for _, field := range message.Embeds[0].Fields {
		if field.Name != "Votes" {
			continue
		}
		var up, down int
		if _, err := fmt.Sscanf(field.Value, "👍 %d | 👎 %d", &up, &down); err != nil {
			return 0, 0
		}
		return up, down
	}
	return 0, 0
}
