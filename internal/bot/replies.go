package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"concord-community/internal/autoreply"
	"concord-community/internal/modules/modlog"
	"concord-community/internal/storage"

	"github.com/bwmarrin/discordgo"
)

func (b *Bot) handleAutoReplyCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if len(options) == 0 {
		b.respondError(session, interaction, "Missing subcommand.")
		return
	}
	sub := options[0]
	switch sub.Name {
	case "add":
		b.handleAutoReplyAdd(ctx, session, interaction, optionMap(sub.Options))
	case "list":
		b.handleAutoReplyList(session, interaction)
	case "remove":
		b.handleAutoReplyRemove(ctx, session, interaction, optionMap(sub.Options))
	case "edit":
		b.handleAutoReplyEdit(session, interaction, optionMap(sub.Options))
	case "restrict":
		b.handleAutoReplyRestrict(session, interaction, optionMap(sub.Options))
	}
}

func (b *Bot) handleAutoReplyAdd(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	match := opts["match"].StringValue()
	if !autoreply.ValidMatchType(match) {
		b.respondError(session, interaction, "Unknown match mode.")
		return
	}

	rule := autoreply.Rule{
		GuildID:   interaction.GuildID,
		Trigger:   opts["trigger"].StringValue(),
		Response:  opts["response"].StringValue(),
		MatchType: autoreply.MatchType(match),
		Chance:    100,
		Enabled:   true,
	}
	if opts["chance"] != nil {
		rule.Chance = clampChance(int(opts["chance"].IntValue()))
	}
	if opts["cooldown"] != nil {
		rule.CooldownSeconds = int(opts["cooldown"].IntValue())
	}
	if opts["case_sensitive"] != nil {
		rule.CaseSensitive = opts["case_sensitive"].BoolValue()
	}
	if opts["delete_trigger"] != nil {
		rule.DeleteTrigger = opts["delete_trigger"].BoolValue()
	}
	if opts["dm"] != nil {
		rule.ReplyInDM = opts["dm"].BoolValue()
	}

	stored, err := b.store.AddReply(rule)
	if err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, b.interactionUser(interaction).ID, "autoreply_added", stored.Trigger)
	b.respondEmbed(session, interaction, b.commandEmbed("Auto-reply",
		fmt.Sprintf("Rule `%s` added for trigger %q.", stored.ID, stored.Trigger), b.cfg.Embeds.Success, nil), true)
}

func (b *Bot) handleAutoReplyList(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	rules := b.store.Replies(interaction.GuildID)
	if len(rules) == 0 {
		b.respondEmbed(session, interaction, b.commandEmbed("Auto-replies", "No rules configured.", b.cfg.Embeds.Action, nil), true)
		return
	}

	lines := make([]string, 0, len(rules))
	for _, rule := range rules {
		state := "on"
		if !rule.Enabled {
			state = "off"
		}
		lines = append(lines, fmt.Sprintf("`%s` [%s] %s %q (chance %d%%, used %d)",
			rule.ID, state, rule.MatchType, rule.Trigger, rule.Chance, rule.UseCount))
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Auto-replies", strings.Join(lines, "\n"), b.cfg.Embeds.Action, nil), true)
}

func (b *Bot) handleAutoReplyRemove(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ruleID := opts["id"].StringValue()
	if err := b.store.RemoveReply(interaction.GuildID, ruleID); err != nil {
		if errors.Is(err, storage.ErrReplyNotFound) {
			b.respondError(session, interaction, "No rule with that id.")
			return
		}
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	b.modlog.Log(ctx, modlog.LevelInfo, interaction.GuildID, b.interactionUser(interaction).ID, "autoreply_removed", ruleID)
	b.respondEmbed(session, interaction, b.commandEmbed("Auto-reply", "Rule removed.", b.cfg.Embeds.Success, nil), true)
}

func (b *Bot) handleAutoReplyEdit(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ruleID := opts["id"].StringValue()

	var patch autoreply.Patch
	if opts["enabled"] != nil {
		enabled := opts["enabled"].BoolValue()
		patch.Enabled = &enabled
	}
	if opts["response"] != nil {
		response := opts["response"].StringValue()
		patch.Response = &response
	}
	if opts["chance"] != nil {
		chance := clampChance(int(opts["chance"].IntValue()))
		patch.Chance = &chance
	}
	if opts["cooldown"] != nil {
		cooldown := int(opts["cooldown"].IntValue())
		patch.CooldownSeconds = &cooldown
	}

	rule, err := b.store.EditReply(interaction.GuildID, ruleID, patch)
	if err != nil {
		if errors.Is(err, storage.ErrReplyNotFound) {
			b.respondError(session, interaction, "No rule with that id.")
			return
		}
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Auto-reply",
		fmt.Sprintf("Rule `%s` updated.", rule.ID), b.cfg.Embeds.Success, nil), true)
}

func (b *Bot) handleAutoReplyRestrict(session *discordgo.Session, interaction *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	ruleID := opts["id"].StringValue()
	list := opts["list"].StringValue()
	clear := opts["clear"] != nil && opts["clear"].BoolValue()

	var channelID, roleID string
	if opts["channel"] != nil {
		channelID = opts["channel"].ChannelValue(session).ID
	}
	if opts["role"] != nil {
		roleID = opts["role"].RoleValue(session, interaction.GuildID).ID
	}

	current := findRule(b.store.Replies(interaction.GuildID), ruleID)
	if current == nil {
		b.respondError(session, interaction, "No rule with that id.")
		return
	}

	var patch autoreply.Patch
	switch list {
	case "allow-channels":
		next := updateScopeList(current.AllowedChannels, channelID, clear)
		patch.AllowedChannels = &next
	case "exclude-channels":
		next := updateScopeList(current.ExcludedChannels, channelID, clear)
		patch.ExcludedChannels = &next
	case "allow-roles":
		next := updateScopeList(current.AllowedRoles, roleID, clear)
		patch.AllowedRoles = &next
	case "exclude-roles":
		next := updateScopeList(current.ExcludedRoles, roleID, clear)
		patch.ExcludedRoles = &next
	default:
		b.respondError(session, interaction, "Unknown list.")
		return
	}

	if _, err := b.store.EditReply(interaction.GuildID, ruleID, patch); err != nil {
		b.respondError(session, interaction, "An error occurred.")
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("Auto-reply", "Scope updated.", b.cfg.Embeds.Success, nil), true)
}

func updateScopeList(current []string, id string, clear bool) []string {
	if clear {
		return nil
	}
	if id == "" {
		return current
	}
	for _, existing := range current {
		if existing == id {
			return current
		}
	}
	return append(append([]string(nil), current...), id)
}

func findRule(rules []autoreply.Rule, ruleID string) *autoreply.Rule {
	for i := range rules {
		if rules[i].ID == ruleID {
			return &rules[i]
		}
	}
	return nil
}

func clampChance(chance int) int {
	if chance < 1 {
		return 1
	}
	if chance > 100 {
		return 100
	}
	return chance
}
