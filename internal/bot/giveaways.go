package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"concord-community/internal/modules/modlog"
	"concord-community/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const giveawaySweepInterval = 30 * time.Second

func (b *Bot) handleGiveawayCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Missing subcommand.")
		return
	}
	sub := options[0]
	switch sub.Name {
	case "start":
		b.handleGiveawayStart(ctx, session, interaction, optionMap(sub.Options))
	case "end":
		b.handleGiveawayEnd(session, interaction, optionMap(sub.Options))
	}
}

func (b *Bot) handleGiveawayStart(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	host := b.interactionUser(interaction)
	prize := opts["prize"].StringValue()
	minutes := int(opts["minutes"].IntValue())
	winners := 1
	if opts["winners"] != nil {
		winners = int(opts["winners"].IntValue())
	}
	endsAt := time.Now().Add(time.Duration(minutes) * time.Minute)

	embed := b.commandEmbed("Giveaway", fmt.Sprintf("**%s**", prize), b.cfg.Embeds.Action, []*discordgo.MessageEmbedField{
		{Name: "Hosted by", Value: "<@" + host.ID + ">", Inline: true},
		{Name: "Winners", Value: fmt.Sprintf("%d", winners), Inline: true},
		{Name: "Ends", Value: fmt.Sprintf("<t:%d:R>", endsAt.Unix()), Inline: true},
	})
	msg, err := session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "🎉 Enter", Style: discordgo.PrimaryButton, CustomID: "giveaway_enter"},
			}},
		},
	})
	if err != nil {
		b.respondError(session, interaction, "Could not post the giveaway.")
		return
	}

	giveaway, err := b.store.CreateGiveaway(interaction.GuildID, interaction.ChannelID, msg.ID, host.ID, prize, winners, endsAt)
	if err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}

	b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, host.ID, "giveaway_started", giveaway.Prize)
	b.respond(session, interaction, "Giveaway started.", true)
}

func (b *Bot) handleGiveawayEnterButton(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	user := b.interactionUser(interaction)
	if interaction.Message == nil {
		return
	}

	entered, err := b.store.EnterGiveaway(interaction.GuildID, interaction.Message.ID, user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrGiveawayEnded) {
			b.respondError(session, interaction, "This giveaway has ended.")
			return
		}
		b.respondError(session, interaction, "This is not a running giveaway.")
		return
	}
	if !entered {
		b.respond(session, interaction, "You are already entered.", true)
		return
	}

	message := "You are in. Good luck!"
	if giveaway, err := b.store.GiveawayByMessage(interaction.GuildID, interaction.Message.ID); err == nil {
		message = fmt.Sprintf("You are in (%d entrants so far). Good luck!", len(giveaway.Entrants))
	}
	b.respond(session, interaction, message, true)
}

func (b *Bot) handleGiveawayEnd(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	messageID := opts["message_id"].StringValue()

	giveaway, err := b.store.EndGiveaway(interaction.GuildID, messageID)
	if err != nil {
		if errors.Is(err, storage.ErrGiveawayEnded) {
			b.respondError(session, interaction, "That giveaway already ended.")
			return
		}
		b.respondError(session, interaction, "No giveaway with that message id.")
		return
	}

	b.announceWinners(giveaway)
	b.respond(session, interaction, "Giveaway ended.", true)
}

// startGiveawaySweeper finishes overdue giveaways in the background so a
// restart never strands a running draw.
func (b *Bot) startGiveawaySweeper() {
	go func() {
		ticker := time.NewTicker(giveawaySweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-b.sweepStop:
				return
			case now := <-ticker.C:
				b.sweepGiveaways(now)
			}
		}
	}()
}

func (b *Bot) sweepGiveaways(now time.Time) {
	for _, due := range b.store.DueGiveaways(now) {
		giveaway, err := b.store.EndGiveaway(due.GuildID, due.MessageID)
		if err != nil {
			continue
		}
		b.announceWinners(giveaway)
	}
}

func (b *Bot) announceWinners(giveaway storage.Giveaway) {
	var content string
	if len(giveaway.Entrants) == 0 {
		content = fmt.Sprintf("The giveaway for **%s** ended with no entrants.", giveaway.Prize)
	} else {
		winners := drawWinners(giveaway.Entrants, giveaway.Winners)
		mentions := make([]string, 0, len(winners))
		for _, winner := range winners {
			mentions = append(mentions, "<@"+winner+">")
		}
		content = fmt.Sprintf("🎉 Congratulations %s, you won **%s**!", strings.Join(mentions, ", "), giveaway.Prize)
	}
	if _, err := b.session.ChannelMessageSend(giveaway.ChannelID, content); err != nil {
		b.logger.Warn("giveaway announce failed", zap.String("giveaway_id", giveaway.ID), zap.Error(err))
	}
}

func drawWinners(entrants []string, count int) []string {
	if count < 1 {
		count = 1
	}
	pool := append([]string(nil), entrants...)
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}
