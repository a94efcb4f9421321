package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"concord-community/internal/modules/modlog"
	"concord-community/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) handleTicketCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Missing subcommand.")
		return
	}
	sub := options[0]
	switch sub.Name {
	case "panel":
		b.handleTicketPanel(session, interaction)
	case "claim":
		b.handleTicketClaim(ctx, session, interaction)
	case "rename":
		b.handleTicketRename(session, interaction, optionMap(sub.Options))
	case "close":
		b.handleTicketClose(ctx, session, interaction)
	}
}

func (b *Bot) handleTicketPanel(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	embed := b.commandEmbed("Support",
		"Need help? Press the button below and a private ticket channel will be opened for you.",
		b.cfg.Embeds.Action, nil)
	_, err := session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Open a ticket", Style: discordgo.PrimaryButton, CustomID: "ticket_open"},
			}},
		},
	})
	if err != nil {
		b.respondError(session, interaction, "Could not post the panel here.")
		return
	}
	b.respond(session, interaction, "Panel posted.", true)
}

func (b *Bot) handleTicketOpenButton(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	user := b.interactionUser(interaction)
	if user == nil || interaction.GuildID == "" {
		return
	}

	for _, ticket := range b.store.OpenTickets(interaction.GuildID) {
		if ticket.OpenerID == user.ID {
			b.respondError(session, interaction, fmt.Sprintf("You already have a ticket: <#%s>.", ticket.ChannelID))
			return
		}
	}

	settings := b.guildSettings(interaction.GuildID)
	channel, err := session.GuildChannelCreateComplex(interaction.GuildID, discordgo.GuildChannelCreateData{
		Name:     ticketChannelName(user.Username),
		Type:     discordgo.ChannelTypeGuildText,
		ParentID: settings.TicketCategory,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: interaction.GuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: user.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
			{ID: session.State.User.ID, Type: discordgo.PermissionOverwriteTypeMember, Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages},
		},
	})
	if err != nil {
		b.respondError(session, interaction, "Could not create a ticket channel.")
		return
	}

	ticket, err := b.store.CreateTicket(interaction.GuildID, user.ID, channel.ID, "support", time.Now())
	if err != nil {
		if errors.Is(err, storage.ErrTicketExists) {
			_, _ = session.ChannelDelete(channel.ID)
			b.respondError(session, interaction, "You already have an open ticket.")
			return
		}
		b.respondError(session, interaction, "An error occurred.")
		return
	}

	embed := b.commandEmbed("Ticket",
		fmt.Sprintf("<@%s>, a moderator will be with you shortly. Ticket id: `%s`.", user.ID, ticket.ID),
		b.cfg.Embeds.Action, nil)
	_, err = session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Claim", Style: discordgo.SecondaryButton, CustomID: "ticket_claim"},
				discordgo.Button{Label: "Close", Style: discordgo.DangerButton, CustomID: "ticket_close"},
			}},
		},
	})
	if err != nil {
		b.logger.Warn("ticket intro failed", zap.Error(err))
	}

	b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, user.ID, "ticket_opened", ticket.ID)
	b.respond(session, interaction, fmt.Sprintf("Your ticket is ready: <#%s>.", channel.ID), true)
}

func (b *Bot) handleTicketClaim(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.claimTicket(ctx, session, interaction)
}

func (b *Bot) handleTicketClaimButton(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.claimTicket(ctx, session, interaction)
}

func (b *Bot) claimTicket(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	moderator := b.interactionUser(interaction)
	ticket, err := b.store.ClaimTicket(interaction.GuildID, interaction.ChannelID, moderator.ID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTicketNotFound):
			b.respondError(session, interaction, "This channel is not a ticket.")
		case errors.Is(err, storage.ErrTicketClaimed):
			b.respondError(session, interaction, "This ticket is already claimed.")
		case errors.Is(err, storage.ErrTicketClosed):
			b.respondError(session, interaction, "This ticket is closed.")
		default:
			b.respondError(session, interaction, "An error occurred.")
		}
		return
	}

	b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, moderator.ID, "ticket_claimed", ticket.ID)
	b.respondEmbed(session, interaction, b.commandEmbed("Ticket",
		fmt.Sprintf("<@%s> claimed this ticket.", moderator.ID), b.cfg.Embeds.Success, nil), false)
}

func (b *Bot) handleTicketRename(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	topic := opts["topic"].StringValue()
	ticket, err := b.store.RenameTicket(interaction.GuildID, interaction.ChannelID, topic)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTicketNotFound):
			b.respondError(session, interaction, "This channel is not a ticket.")
		case errors.Is(err, storage.ErrTicketClosed):
			b.respondError(session, interaction, "This ticket is closed.")
		default:
			b.respondError(session, interaction, "An error occurred.")
		}
		return
	}

	if _, err := session.ChannelEdit(interaction.ChannelID, &discordgo.ChannelEdit{Name: ticketChannelName(topic)}); err != nil {
		b.logger.Warn("ticket channel rename failed", zap.Error(err))
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Ticket",
		fmt.Sprintf("Topic set to %q.", ticket.Topic), b.cfg.Embeds.Success, nil), false)
}

func (b *Bot) handleTicketClose(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.closeTicket(ctx, session, interaction)
}

func (b *Bot) handleTicketCloseButton(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	b.closeTicket(ctx, session, interaction)
}

func (b *Bot) closeTicket(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	actor := b.interactionUser(interaction)
	ticket, err := b.store.CloseTicket(interaction.GuildID, interaction.ChannelID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTicketNotFound):
			b.respondError(session, interaction, "This channel is not a ticket.")
		case errors.Is(err, storage.ErrTicketClosed):
			b.respondError(session, interaction, "This ticket is already closed.")
		default:
			b.respondError(session, interaction, "An error occurred.")
		}
		return
	}

	b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, actor.ID, "ticket_closed", ticket.ID)
	b.respondEmbed(session, interaction, b.commandEmbed("Ticket",
		"Ticket closed. This channel will be removed shortly.", b.cfg.Embeds.Warning, nil), false)

	time.AfterFunc(10*time.Second, func() {
		if _, err := session.ChannelDelete(interaction.ChannelID); err != nil {
			b.logger.Warn("ticket channel delete failed", zap.Error(err))
		}
	})
}

func ticketChannelName(topic string) string {
	name := strings.ToLower(strings.TrimSpace(topic))
	name = strings.ReplaceAll(name, " ", "-")
	if name == "" {
		name = "support"
	}
	if len(name) > 90 {
		name = name[:90]
	}
	return "ticket-" + name
}
