package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"concord-community/internal/economy"
	"concord-community/internal/modules/modlog"
	"concord-community/internal/storage"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(session, interaction)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(session, interaction)
	case discordgo.InteractionModalSubmit:
		b.handleModal(session, interaction)
	}
}

func (b *Bot) handleCommand(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" {
		b.respondError(session, interaction, "This command only works in a server.")
		return
	}

	ctx := context.Background()
	data := interaction.ApplicationCommandData()
	switch data.Name {
	case "balance":
		b.handleBalance(session, interaction, data.Options)
	case "deposit":
		b.handleDeposit(session, interaction, data.Options)
	case "withdraw":
		b.handleWithdraw(session, interaction, data.Options)
	case "pay":
		b.handlePay(session, interaction, data.Options)
	case "daily":
		b.handleClaim(session, interaction, storage.RewardDaily, b.daily, "Daily reward")
	case "weekly":
		b.handleClaim(session, interaction, storage.RewardWeekly, b.weekly, "Weekly reward")
	case "work":
		b.handleClaim(session, interaction, storage.RewardWork, b.work, "Work")
	case "leaderboard":
		b.handleLeaderboard(session, interaction)
	case "rank":
		b.handleRank(session, interaction, data.Options)
	case "levels":
		b.handleLevels(session, interaction)
	case "autoreply":
		b.handleAutoReplyCommand(ctx, session, interaction, data.Options)
	case "ticket":
		b.handleTicketCommand(ctx, session, interaction, data.Options)
	case "verify":
		b.handleVerifyCommand(session, interaction)
	case "verification":
		b.handleVerificationAdmin(ctx, session, interaction, data.Options)
	case "warn":
		b.handleWarnCommand(ctx, session, interaction, data.Options)
	case "mute":
		b.handleMuteCommand(ctx, session, interaction, data.Options)
	case "suggest":
		b.handleSuggestCommand(session, interaction, data.Options)
	case "giveaway":
		b.handleGiveawayCommand(ctx, session, interaction, data.Options)
	case "settings":
		b.handleSettingsCommand(ctx, session, interaction, data.Options)
	case "report":
		b.handleReport(session, interaction, data.Options)
	}
}

func (b *Bot) handleComponent(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx := context.Background()
	customID := interaction.MessageComponentData().CustomID
	switch customID {
	case "ticket_open":
		b.handleTicketOpenButton(ctx, session, interaction)
	case "ticket_claim":
		b.handleTicketClaimButton(ctx, session, interaction)
	case "ticket_close":
		b.handleTicketCloseButton(ctx, session, interaction)
	case "verify_enter":
		b.handleVerifyEnterButton(session, interaction)
	case "suggest_up", "suggest_down":
		b.handleSuggestionVote(session, interaction, customID == "suggest_up")
	case "giveaway_enter":
		b.handleGiveawayEnterButton(session, interaction)
	}
}

func (b *Bot) handleModal(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ctx := context.Background()
	if interaction.ModalSubmitData().CustomID == "verify_modal" {
		b.handleVerifyModal(ctx, session, interaction)
	}
}

func (b *Bot) interactionUser(interaction *discordgo.InteractionCreate) *discordgo.User {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User
	}
	return interaction.User
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		out[option.Name] = option
	}
	return out
}

func (b *Bot) handleBalance(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	target := b.interactionUser(interaction)
	if opts := optionMap(options); opts["user"] != nil {
		target = opts["user"].UserValue(session)
	}
	if target == nil {
		b.respondError(session, interaction, "Could not resolve that member.")
		return
	}

	account, err := b.store.Account(interaction.GuildID, target.ID)
	if err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Wallet", Value: fmt.Sprintf("%d", account.Wallet), Inline: true},
		{Name: "Bank", Value: fmt.Sprintf("%d", account.Bank), Inline: true},
		{Name: "Total", Value: fmt.Sprintf("%d", account.Wallet+account.Bank), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Balance", "<@"+target.ID+">", b.cfg.Embeds.Action, fields), false)
}

func (b *Bot) handleDeposit(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.interactionUser(interaction)
	amount := int(optionMap(options)["amount"].IntValue())

	account, ok, err := b.store.Deposit(interaction.GuildID, user.ID, amount)
	if err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	if !ok {
		b.respondError(session, interaction, fmt.Sprintf("You only have %d coins in your wallet.", account.Wallet))
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Deposit",
		fmt.Sprintf("Deposited %d coins. Wallet: %d, bank: %d.", amount, account.Wallet, account.Bank),
		b.cfg.Embeds.Success, nil), false)
}

func (b *Bot) handleWithdraw(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.interactionUser(interaction)
	amount := int(optionMap(options)["amount"].IntValue())

	account, ok, err := b.store.Withdraw(interaction.GuildID, user.ID, amount)
	if err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	if !ok {
		b.respondError(session, interaction, fmt.Sprintf("You only have %d coins in your bank.", account.Bank))
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Withdraw",
		fmt.Sprintf("Withdrew %d coins. Wallet: %d, bank: %d.", amount, account.Wallet, account.Bank),
		b.cfg.Embeds.Success, nil), false)
}

func (b *Bot) handlePay(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	user := b.interactionUser(interaction)
	opts := optionMap(options)
	target := opts["user"].UserValue(session)
	amount := int(opts["amount"].IntValue())

	if target == nil || target.ID == user.ID || target.Bot {
		b.respondError(session, interaction, "Pick another (human) member to pay.")
		return
	}

	ok, err := b.store.Transfer(interaction.GuildID, user.ID, target.ID, amount)
	if err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	if !ok {
		b.respondError(session, interaction, "You do not have that many coins in your wallet.")
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Payment",
		fmt.Sprintf("Sent %d coins to <@%s>.", amount, target.ID),
		b.cfg.Embeds.Success, nil), false)
}

func (b *Bot) handleClaim(session *discordgo.Session, interaction *discordgo.InteractionCreate, kind storage.RewardKind, reward economy.Reward, title string) {
	user := b.interactionUser(interaction)
	now := time.Now()

	last, streak := b.store.RewardState(interaction.GuildID, user.ID, kind)
	result := reward.Claim(economy.ClaimState{Last: last, Streak: streak}, now)
	if !result.Granted {
		b.respondError(session, interaction, fmt.Sprintf("Too soon. Come back in %s.", formatDuration(result.Remaining)))
		return
	}

	account, err := b.store.RecordReward(interaction.GuildID, user.ID, kind, now, result.Streak, result.Amount+result.Bonus)
	if err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}

	description := fmt.Sprintf("You earned %d coins.", result.Amount)
	if result.Bonus > 0 {
		description += fmt.Sprintf(" Streak bonus: %d coins!", result.Bonus)
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Streak", Value: fmt.Sprintf("%d", result.Streak), Inline: true},
		{Name: "Wallet", Value: fmt.Sprintf("%d", account.Wallet), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed(title, description, b.cfg.Embeds.Success, fields), false)
}

func (b *Bot) handleLeaderboard(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	entries := b.store.Leaderboard(interaction.GuildID, 10)
	if len(entries) == 0 {
		b.respondError(session, interaction, "Nobody has any coins yet.")
		return
	}
	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("%d. <@%s> - %d coins", i+1, entry.UserID, entry.Total()))
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Leaderboard", strings.Join(lines, "\n"), b.cfg.Embeds.Action, nil), false)
}

func (b *Bot) handleRank(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	target := b.interactionUser(interaction)
	if opts := optionMap(options); opts["user"] != nil {
		target = opts["user"].UserValue(session)
	}
	if target == nil {
		b.respondError(session, interaction, "Could not resolve that member.")
		return
	}

	record, err := b.store.Rank(interaction.GuildID, target.ID)
	if err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	progress := b.curve.ProgressFor(record.XP)
	fields := []*discordgo.MessageEmbedField{
		{Name: "Level", Value: fmt.Sprintf("%d", progress.Level), Inline: true},
		{Name: "XP", Value: fmt.Sprintf("%d", progress.XP), Inline: true},
		{Name: "Next level", Value: fmt.Sprintf("%d/%d", progress.Into, progress.Needed), Inline: true},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Rank", "<@"+target.ID+">", b.cfg.Embeds.Action, fields), false)
}

func (b *Bot) handleLevels(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	entries := b.store.RankLeaderboard(interaction.GuildID, 10)
	if len(entries) == 0 {
		b.respondError(session, interaction, "Nobody has earned XP yet.")
		return
	}
	lines := make([]string, 0, len(entries))
	for i, entry := range entries {
		lines = append(lines, fmt.Sprintf("%d. <@%s> - level %d (%d XP)", i+1, entry.UserID, entry.Level, entry.XP))
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Levels", strings.Join(lines, "\n"), b.cfg.Embeds.Action, nil), false)
}

func (b *Bot) handleWarnCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Missing subcommand.")
		return
	}
	sub := options[0]
	opts := optionMap(sub.Options)
	moderator := b.interactionUser(interaction)
	target := opts["user"].UserValue(session)
	if target == nil {
		b.respondError(session, interaction, "Could not resolve that member.")
		return
	}

	switch sub.Name {
	case "add":
		reason := opts["reason"].StringValue()
		count, err := b.store.AddWarning(interaction.GuildID, target.ID, storage.Warning{
			ModeratorID: moderator.ID,
			Reason:      reason,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			b.respondError(session, interaction, "An error occurred.")
			return
		}
		b.modlog.Log(ctx, modlog.LevelWarn, interaction.GuildID, target.ID, "warning_added", reason)
		b.respondEmbed(session, interaction, b.commandEmbed("Warning",
			fmt.Sprintf("<@%s> warned (%d total).", target.ID, count), b.cfg.Embeds.Warning, nil), false)
	case "list":
		warnings := b.store.Warnings(interaction.GuildID, target.ID)
		if len(warnings) == 0 {
			b.respondEmbed(session, interaction, b.commandEmbed("Warnings", "No warnings on record.", b.cfg.Embeds.Action, nil), true)
			return
		}
		lines := make([]string, 0, len(warnings))
		for i, warning := range warnings {
			lines = append(lines, fmt.Sprintf("%d. %s (by <@%s>, %s)", i+1, warning.Reason, warning.ModeratorID, warning.CreatedAt.Format("2006-01-02")))
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Warnings", strings.Join(lines, "\n"), b.cfg.Embeds.Warning, nil), true)
	case "clear":
		cleared, err := b.store.ClearWarnings(interaction.GuildID, target.ID)
		if err != nil {
			b.respondError(session, interaction, "An error occurred.")
			return
		}
		b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, target.ID, "warnings_cleared", fmt.Sprintf("count=%d", cleared))
		b.respondEmbed(session, interaction, b.commandEmbed("Warnings",
			fmt.Sprintf("Cleared %d warnings for <@%s>.", cleared, target.ID), b.cfg.Embeds.Success, nil), false)
	}
}

func (b *Bot) handleMuteCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Missing subcommand.")
		return
	}
	sub := options[0]
	opts := optionMap(sub.Options)
	moderator := b.interactionUser(interaction)
	target := opts["user"].UserValue(session)
	if target == nil {
		b.respondError(session, interaction, "Could not resolve that member.")
		return
	}

	switch sub.Name {
	case "set":
		minutes := int(opts["minutes"].IntValue())
		reason := ""
		if opts["reason"] != nil {
			reason = opts["reason"].StringValue()
		}
		until := time.Now().Add(time.Duration(minutes) * time.Minute)
		err := b.store.SetMute(interaction.GuildID, target.ID, storage.Mute{
			ModeratorID: moderator.ID,
			Reason:      reason,
			Until:       until,
			CreatedAt:   time.Now(),
		})
		if err != nil {
			b.respondError(session, interaction, "An error occurred.")
			return
		}
		if err := session.GuildMemberTimeout(interaction.GuildID, target.ID, &until); err != nil {
			b.logger.Warn("timeout apply failed", zap.String("user_id", target.ID), zap.Error(err))
		}
		b.modlog.Log(ctx, modlog.LevelWarn, interaction.GuildID, target.ID, "mute_set", reason)
		b.respondEmbed(session, interaction, b.commandEmbed("Mute",
			fmt.Sprintf("<@%s> muted until <t:%d:f>.", target.ID, until.Unix()), b.cfg.Embeds.Warning, nil), false)
	case "clear":
		cleared, err := b.store.ClearMute(interaction.GuildID, target.ID)
		if err != nil {
			b.respondError(session, interaction, "An error occurred.")
			return
		}
		if !cleared {
			b.respondError(session, interaction, "That member is not muted.")
			return
		}
		if err := session.GuildMemberTimeout(interaction.GuildID, target.ID, nil); err != nil {
			b.logger.Warn("timeout lift failed", zap.String("user_id", target.ID), zap.Error(err))
		}
		b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, target.ID, "mute_cleared", "")
		b.respondEmbed(session, interaction, b.commandEmbed("Mute",
			fmt.Sprintf("Timeout lifted for <@%s>.", target.ID), b.cfg.Embeds.Success, nil), false)
	case "status":
		mute, ok := b.store.Mute(interaction.GuildID, target.ID)
		if !ok {
			b.respondEmbed(session, interaction, b.commandEmbed("Mute",
				fmt.Sprintf("<@%s> is not muted.", target.ID), b.cfg.Embeds.Action, nil), true)
			return
		}
		fields := []*discordgo.MessageEmbedField{
			{Name: "Until", Value: fmt.Sprintf("<t:%d:f>", mute.Until.Unix()), Inline: true},
			{Name: "By", Value: "<@" + mute.ModeratorID + ">", Inline: true},
		}
		if mute.Reason != "" {
			fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: mute.Reason, Inline: false})
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Mute", "<@"+target.ID+">", b.cfg.Embeds.Warning, fields), true)
	}
}

func (b *Bot) handleSettingsCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Missing subcommand.")
		return
	}
	sub := options[0]
	opts := optionMap(sub.Options)
	settings := b.guildSettings(interaction.GuildID)

	switch sub.Name {
	case "view":
		fields := []*discordgo.MessageEmbedField{
			{Name: "Welcome channel", Value: channelOrUnset(settings.WelcomeChannel), Inline: true},
			{Name: "Log channel", Value: channelOrUnset(settings.LogChannel), Inline: true},
			{Name: "Suggestions channel", Value: channelOrUnset(settings.SuggestionsChannel), Inline: true},
			{Name: "Ticket category", Value: channelOrUnset(settings.TicketCategory), Inline: true},
			{Name: "Verification", Value: fmt.Sprintf("%t", settings.VerificationEnabled), Inline: true},
			{Name: "Verified role", Value: roleOrUnset(settings.VerifiedRole), Inline: true},
		}
		b.respondEmbed(session, interaction, b.commandEmbed("Settings", "", b.cfg.Embeds.Action, fields), true)
		return
	case "welcome":
		settings.WelcomeChannel = opts["channel"].ChannelValue(session).ID
		if opts["message"] != nil {
			settings.WelcomeMessage = opts["message"].StringValue()
		}
	case "logs":
		settings.LogChannel = opts["channel"].ChannelValue(session).ID
	case "suggestions":
		settings.SuggestionsChannel = opts["channel"].ChannelValue(session).ID
	case "tickets":
		settings.TicketCategory = opts["category"].ChannelValue(session).ID
	case "verification":
		settings.VerificationEnabled = opts["enabled"].BoolValue()
		if opts["role"] != nil {
			settings.VerifiedRole = opts["role"].RoleValue(session, interaction.GuildID).ID
		}
	default:
		b.respondError(session, interaction, "Unknown subcommand.")
		return
	}

	if err := b.store.UpdateGuildSettings(settings); err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, b.interactionUser(interaction).ID, "settings_updated", sub.Name)
	b.respondEmbed(session, interaction, b.commandEmbed("Settings", "Updated.", b.cfg.Embeds.Success, nil), true)
}

func (b *Bot) handleReport(session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	period := optionMap(options)["period"].StringValue()
	since := time.Now().AddDate(0, 0, -1)
	if period == "week" {
		since = time.Now().AddDate(0, 0, -7)
	}

	report := b.analytics.Report(interaction.GuildID, since)
	description := fmt.Sprintf("Total: %d | INFO: %d | WARN: %d | CRIT: %d",
		report.Total, report.ByLevel[modlog.LevelInfo], report.ByLevel[modlog.LevelWarn], report.ByLevel[modlog.LevelCrit])
	b.respondEmbed(session, interaction, b.commandEmbed("Moderation report", description, b.cfg.Embeds.Action, nil), true)
}

func channelOrUnset(id string) string {
	if id == "" {
		return "not set"
	}
	return "<#" + id + ">"
}

func roleOrUnset(id string) string {
	if id == "" {
		return "not set"
	}
	return "<@&" + id + ">"
}
