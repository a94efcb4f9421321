package bot

import "github.com/bwmarrin/discordgo"

func (b *Bot) registerCommands() error {
	minAmount := float64(1)
	matchChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "exact", Value: "exact"},
		{Name: "contains", Value: "contains"},
		{Name: "startswith", Value: "startswith"},
		{Name: "endswith", Value: "endswith"},
		{Name: "regex", Value: "regex"},
	}

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Show wallet and bank balance",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member to inspect", Required: false},
			},
		},
		{
			Name:        "deposit",
			Description: "Move coins from wallet to bank",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "amount to deposit", Required: true, MinValue: &minAmount},
			},
		},
		{
			Name:        "withdraw",
			Description: "Move coins from bank to wallet",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "amount to withdraw", Required: true, MinValue: &minAmount},
			},
		},
		{
			Name:        "pay",
			Description: "Send coins to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "recipient", Required: true},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "amount to send", Required: true, MinValue: &minAmount},
			},
		},
		{Name: "daily", Description: "Claim the daily reward"},
		{Name: "weekly", Description: "Claim the weekly reward"},
		{Name: "work", Description: "Work for coins"},
		{Name: "leaderboard", Description: "Richest members"},
		{
			Name:        "rank",
			Description: "Show level and XP",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member to inspect", Required: false},
			},
		},
		{Name: "levels", Description: "XP leaderboard"},
		{
			Name:        "autoreply",
			Description: "Manage auto-reply rules",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add", Description: "Add a rule",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "trigger", Description: "trigger text", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "response", Description: "reply text", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "match", Description: "match mode", Required: true, Choices: matchChoices},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "chance", Description: "fire probability 1-100", Required: false},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "cooldown", Description: "cooldown seconds", Required: false},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "case_sensitive", Description: "match case", Required: false},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "delete_trigger", Description: "delete the triggering message", Required: false},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "dm", Description: "reply in a direct message", Required: false},
					},
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "List rules"},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove", Description: "Remove a rule",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "rule id", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "edit", Description: "Edit a rule",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "rule id", Required: true},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "enabled", Description: "enable or disable", Required: false},
						{Type: discordgo.ApplicationCommandOptionString, Name: "response", Description: "new reply text", Required: false},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "chance", Description: "fire probability 1-100", Required: false},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "cooldown", Description: "cooldown seconds", Required: false},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "restrict", Description: "Scope a rule to channels or roles",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "id", Description: "rule id", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "list", Description: "which list", Required: true, Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "allow-channels", Value: "allow-channels"},
							{Name: "exclude-channels", Value: "exclude-channels"},
							{Name: "allow-roles", Value: "allow-roles"},
							{Name: "exclude-roles", Value: "exclude-roles"},
						}},
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "channel to add", Required: false},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "role to add", Required: false},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "clear", Description: "clear the list", Required: false},
					},
				},
			},
		},
		{
			Name:        "ticket",
			Description: "Support ticket desk",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "panel", Description: "Post the ticket panel here"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "claim", Description: "Claim this ticket"},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "rename", Description: "Rename this ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "topic", Description: "new topic", Required: true},
					},
				},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "close", Description: "Close this ticket"},
			},
		},
		{Name: "verify", Description: "Start or continue member verification"},
		{
			Name:        "verification",
			Description: "Verification administration",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "check", Description: "Check a member's status",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "manual", Description: "Verify a member manually",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "blacklist", Description: "Manage the verification blacklist",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "add or remove", Required: true, Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "add", Value: "add"},
							{Name: "remove", Value: "remove"},
						}},
					},
				},
			},
		},
		{
			Name:        "warn",
			Description: "Member warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add", Description: "Warn a member",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "reason", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "List a member's warnings",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "clear", Description: "Clear a member's warnings",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
					},
				},
			},
		},
		{
			Name:        "mute",
			Description: "Member timeouts",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "set", Description: "Time a member out",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "duration in minutes", Required: true, MinValue: &minAmount},
						{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "reason", Required: false},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "clear", Description: "Lift a member's timeout",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Show a member's timeout",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "member", Required: true},
					},
				},
			},
		},
		{
			Name:        "suggest",
			Description: "Submit a suggestion",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "text", Description: "your suggestion", Required: true},
			},
		},
		{
			Name:        "giveaway",
			Description: "Run giveaways",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "start", Description: "Start a giveaway here",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "prize", Description: "prize", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "minutes", Description: "duration in minutes", Required: true, MinValue: &minAmount},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "winners", Description: "number of winners", Required: false, MinValue: &minAmount},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "end", Description: "End a giveaway early",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "message_id", Description: "giveaway message id", Required: true},
					},
				},
			},
		},
		{
			Name:        "settings",
			Description: "Guild configuration",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "view", Description: "Show current settings"},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "welcome", Description: "Set the welcome channel and message",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "welcome channel", Required: true},
						{Type: discordgo.ApplicationCommandOptionString, Name: "message", Description: "template with {user}, {user-mention}, {server}, {member-count}", Required: false},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "logs", Description: "Set the moderation log channel",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "log channel", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "suggestions", Description: "Set the suggestions channel",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "channel", Description: "suggestions channel", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "tickets", Description: "Set the ticket category",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "category", Description: "category for ticket channels", Required: true},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "verification", Description: "Configure member verification",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "enabled", Description: "require verification", Required: true},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "role granted on success", Required: false},
					},
				},
			},
		},
		{
			Name:        "report",
			Description: "Moderation activity report",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "period", Description: "day or week", Required: true, Choices: []*discordgo.ApplicationCommandOptionChoice{
					{Name: "day", Value: "day"},
					{Name: "week", Value: "week"},
				}},
			},
		},
	}

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{})
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		_ = b.session.ApplicationCommandDelete(appID, "", cmd.ID)
	}

	return nil
}
