package bot

import (
	"bytes"
	"context"
	"fmt"

	"concord-community/internal/modules/modlog"
	"concord-community/internal/verification"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) handleVerifyCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	user := b.interactionUser(interaction)
	settings := b.guildSettings(interaction.GuildID)

	if !settings.VerificationEnabled {
		b.respondError(session, interaction, "Verification is not enabled on this server.")
		return
	}
	if b.store.IsBlacklisted(interaction.GuildID, user.ID) {
		b.respondError(session, interaction, "You cannot verify on this server.")
		return
	}
	if b.store.IsVerified(interaction.GuildID, user.ID) {
		b.respondEmbed(session, interaction, b.commandEmbed("Verification", "You are already verified.", b.cfg.Embeds.Success, nil), true)
		return
	}

	_, img, err := b.verify.Begin(interaction.GuildID, user.ID)
	if err != nil {
		b.logger.Warn("captcha render failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondError(session, interaction, "An error occurred.")
		return
	}

	err = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Read the code from the image, then press the button to enter it.",
			Flags:   discordgo.MessageFlagsEphemeral,
			Files:   []*discordgo.File{{Name: "captcha.png", ContentType: "image/png", Reader: bytes.NewReader(img)}},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Enter code", Style: discordgo.PrimaryButton, CustomID: "verify_enter"},
				}},
			},
		},
	})
	if err != nil {
		b.logger.Warn("verification prompt failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (b *Bot) handleVerifyEnterButton(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: "verify_modal",
			Title:    "Verification",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "verify_code",
						Label:       "Code from the image",
						Style:       discordgo.TextInputShort,
						Required:    true,
						MaxLength:   10,
						Placeholder: "ABC12",
					},
				}},
			},
		},
	})
	if err != nil {
		b.logger.Warn("verification modal failed", zap.Error(err))
	}
}

func (b *Bot) handleVerifyModal(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	user := b.interactionUser(interaction)
	answer := modalInput(interaction.ModalSubmitData(), "verify_code")

	verdict, attemptsLeft := b.verify.Verify(interaction.GuildID, user.ID, answer)
	switch verdict {
	case verification.VerdictVerified:
		b.completeVerification(ctx, session, interaction, user.ID)
	case verification.VerdictMismatch:
		b.respondError(session, interaction, fmt.Sprintf("Wrong code. %d attempts left.", attemptsLeft))
	case verification.VerdictExpired:
		b.respondError(session, interaction, "Your challenge expired. Run /verify to get a new one.")
	case verification.VerdictExhausted:
		b.modlog.Log(ctx, modlog.LevelWarn, interaction.GuildID, user.ID, "verification_failed", "attempts exhausted")
		b.respondError(session, interaction, "Too many wrong answers. Run /verify to start over.")
	}
}

func (b *Bot) completeVerification(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, userID string) {
	if err := b.grantVerified(session, interaction.GuildID, userID); err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, userID, "verification_passed", "")
	b.respondEmbed(session, interaction, b.commandEmbed("Verification", "You are verified. Welcome!", b.cfg.Embeds.Success, nil), true)
}

func (b *Bot) grantVerified(session *discordgo.Session, guildID, userID string) error {
	if err := b.store.MarkVerified(guildID, userID); err != nil {
		return err
	}
	settings := b.guildSettings(guildID)
	if settings.VerifiedRole != "" {
		if err := session.GuildMemberRoleAdd(guildID, userID, settings.VerifiedRole); err != nil {
			b.logger.Warn("verified role grant failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return nil
}

func (b *Bot) handleVerificationAdmin(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Missing subcommand.")
		return
	}
	sub := options[0]
	opts := optionMap(sub.Options)
	target := opts["user"].UserValue(session)
	if target == nil {
		b.respondError(session, interaction, "Could not resolve that member.")
		return
	}

	switch sub.Name {
	case "check":
		status := "not verified"
		if b.store.IsVerified(interaction.GuildID, target.ID) {
			status = "verified"
		}
		if b.store.IsBlacklisted(interaction.GuildID, target.ID) {
			status += ", blacklisted"
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Verification",
			fmt.Sprintf("<@%s> is %s.", target.ID, status), b.cfg.Embeds.Action, nil), true)
	case "manual":
		if err := b.grantVerified(session, interaction.GuildID, target.ID); err != nil {
			b.respondError(session, interaction, "An error occurred.")
			return
		}
		b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, target.ID, "verification_manual", "verified by moderator")
		b.respondEmbed(session, interaction, b.commandEmbed("Verification",
			fmt.Sprintf("<@%s> manually verified.", target.ID), b.cfg.Embeds.Success, nil), true)
	case "blacklist":
		action := opts["action"].StringValue()
		var err error
		if action == "add" {
			err = b.store.AddBlacklist(interaction.GuildID, target.ID)
		} else {
			_, err = b.store.RemoveBlacklist(interaction.GuildID, target.ID)
		}
		if err != nil {
			b.respondError(session, interaction, "An error occurred.")
			return
		}
		b.modlog.Log(ctx, modlog.LevelWarn, interaction.GuildID, target.ID, "verification_blacklist", action)
		b.respondEmbed(session, interaction, b.commandEmbed("Verification",
			fmt.Sprintf("Blacklist %s for <@%s>.", action, target.ID), b.cfg.Embeds.Warning, nil), true)
	}
}

func modalInput(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionsRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, component := range actionsRow.Components {
			input, ok := component.(*discordgo.TextInput)
			if ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
