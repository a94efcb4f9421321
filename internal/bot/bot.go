package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"concord-community/internal/analytics"
	"concord-community/internal/autoreply"
	"concord-community/internal/config"
	"concord-community/internal/economy"
	"concord-community/internal/modules/modlog"
	"concord-community/internal/ranks"
	"concord-community/internal/storage"
	"concord-community/internal/utils"
	"concord-community/internal/verification"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type Bot struct {
	cfg       config.Config
	logger    *zap.Logger
	store     *storage.Store
	replies   *autoreply.Engine
	verify    *verification.Manager
	modlog    *modlog.Logger
	analytics *analytics.Service
	session   *discordgo.Session

	curve  ranks.Curve
	xpGate *utils.CooldownGate
	daily  economy.Reward
	weekly economy.Reward
	work   economy.Reward

	suggestMu    sync.Mutex
	suggestVotes map[string]*suggestionTally

	sweepStop chan struct{}
}

type suggestionTally struct {
	up     int
	down   int
	voters map[string]bool
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, replyEngine *autoreply.Engine, verifyManager *verification.Manager, modLogger *modlog.Logger, analyticsService *analytics.Service) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsMessageContent |
		discordgo.IntentsDirectMessages

	b := &Bot{
		cfg:          cfg,
		logger:       logger,
		store:        store,
		replies:      replyEngine,
		verify:       verifyManager,
		modlog:       modLogger,
		analytics:    analyticsService,
		session:      session,
		curve:        ranks.NewCurve(cfg.Leveling.BaseXP),
		xpGate:       utils.NewCooldownGate(time.Duration(cfg.Leveling.XPCooldownSeconds) * time.Second),
		daily:        economy.FromConfig(cfg.Economy.Daily),
		weekly:       economy.FromConfig(cfg.Economy.Weekly),
		work:         economy.FromConfig(cfg.Economy.Work),
		suggestVotes: make(map[string]*suggestionTally),
		sweepStop:    make(chan struct{}),
	}

	if b.modlog != nil {
		b.modlog.SetNotifier(func(ctx context.Context, entry storage.LogEntry) {
			b.notifyLog(ctx, entry)
		})
	}

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onGuildMemberAdd)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}

	if err := b.registerCommands(); err != nil {
		return err
	}

	b.startGiveawaySweeper()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	close(b.sweepStop)
	if b.verify != nil {
		b.verify.Stop()
	}
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.Author.Bot {
		return
	}
	if msg.GuildID == "" {
		return
	}

	b.handleAutoReplies(session, msg)
	b.awardMessageXP(session, msg)
}

func (b *Bot) handleAutoReplies(session *discordgo.Session, msg *discordgo.MessageCreate) {
	var roleIDs []string
	if msg.Member != nil {
		roleIDs = msg.Member.Roles
	}

	matches := b.replies.FindMatches(msg.GuildID, msg.Content, msg.Author.ID, msg.ChannelID, roleIDs)
	for _, rule := range matches {
		if err := b.store.MarkReplyUsed(msg.GuildID, rule.ID, time.Now()); err != nil {
			b.logger.Warn("mark reply used failed", zap.String("rule_id", rule.ID), zap.Error(err))
		}

		if rule.DeleteTrigger {
			if err := session.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
				b.logger.Warn("trigger delete failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
			}
		}

		if rule.ReplyInDM {
			channel, err := session.UserChannelCreate(msg.Author.ID)
			if err != nil {
				b.logger.Warn("dm channel create failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
				continue
			}
			if _, err := session.ChannelMessageSend(channel.ID, rule.Response); err != nil {
				b.logger.Warn("dm reply failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
			}
			continue
		}

		if _, err := session.ChannelMessageSend(msg.ChannelID, rule.Response); err != nil {
			b.logger.Warn("auto reply failed", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		}
	}
}

func (b *Bot) awardMessageXP(session *discordgo.Session, msg *discordgo.MessageCreate) {
	key := msg.GuildID + ":" + msg.Author.ID
	if !b.xpGate.Allow(key, time.Now()) {
		return
	}

	record, err := b.store.Rank(msg.GuildID, msg.Author.ID)
	if err != nil {
		b.logger.Warn("rank read failed", zap.Error(err))
		return
	}
	record.XP += b.cfg.Leveling.XPPerMessage
	newLevel := b.curve.LevelFor(record.XP)
	leveledUp := newLevel > record.Level
	record.Level = newLevel
	if err := b.store.SaveRank(msg.GuildID, msg.Author.ID, record); err != nil {
		b.logger.Warn("rank save failed", zap.Error(err))
		return
	}

	if leveledUp {
		content := fmt.Sprintf("<@%s> reached level %d!", msg.Author.ID, newLevel)
		if _, err := session.ChannelMessageSend(msg.ChannelID, content); err != nil {
			b.logger.Warn("level up message failed", zap.Error(err))
		}
	}
}

func (b *Bot) onGuildMemberAdd(session *discordgo.Session, event *discordgo.GuildMemberAdd) {
	if event.GuildID == "" || event.User == nil {
		return
	}
	ctx := context.Background()

	settings := b.guildSettings(event.GuildID)

	if settings.WelcomeChannel != "" && settings.WelcomeMessage != "" {
		guildName := event.GuildID
		memberCount := 0
		if guild, err := session.State.Guild(event.GuildID); err == nil && guild != nil {
			guildName = guild.Name
			memberCount = guild.MemberCount
		}
		content := formatWelcome(settings.WelcomeMessage, event.User, guildName, memberCount)
		if _, err := session.ChannelMessageSend(settings.WelcomeChannel, content); err != nil {
			b.logger.Warn("welcome message failed", zap.String("guild_id", event.GuildID), zap.Error(err))
		}
	}

	if settings.VerificationEnabled {
		if b.store.IsBlacklisted(event.GuildID, event.User.ID) {
			b.modlog.Log(ctx, modlog.LevelWarn, event.GuildID, event.User.ID, "verification_blocked", "blacklisted member joined")
			return
		}
		b.sendVerificationPrompt(session, event.GuildID, event.User.ID)
	}
}

// sendVerificationPrompt points the new member at /verify. The challenge
// itself is only issued there; a code sent here would be replaced the moment
// the member runs the command. A closed DM never blocks the join.
func (b *Bot) sendVerificationPrompt(session *discordgo.Session, guildID, userID string) {
	channel, err := session.UserChannelCreate(userID)
	if err != nil {
		b.logger.Warn("verification dm failed", zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
		return
	}
	content := "Welcome! This server requires verification: run /verify there and enter the code shown."
	if _, err := session.ChannelMessageSend(channel.ID, content); err != nil {
		b.logger.Warn("verification dm failed", zap.String("guild_id", guildID), zap.String("user_id", userID), zap.Error(err))
	}
}

func (b *Bot) notifyLog(ctx context.Context, entry storage.LogEntry) {
	_ = ctx
	settings := b.guildSettings(entry.GuildID)
	if settings.LogChannel == "" {
		return
	}

	userValue := "system"
	if entry.UserID != "" {
		userValue = "<@" + entry.UserID + ">"
	}
	embed := &discordgo.MessageEmbed{
		Title:     "Moderation log",
		Color:     b.cfg.Embeds.Action,
		Timestamp: entry.CreatedAt.Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Event", Value: entry.Event, Inline: true},
			{Name: "Level", Value: entry.Level, Inline: true},
			{Name: "User", Value: userValue, Inline: true},
		},
	}
	if entry.Details != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Details", Value: entry.Details, Inline: false})
	}
	if _, err := b.session.ChannelMessageSendEmbed(settings.LogChannel, embed); err != nil {
		b.logger.Warn("log channel post failed", zap.String("guild_id", entry.GuildID), zap.Error(err))
	}
}

func (b *Bot) guildSettings(guildID string) storage.GuildSettings {
	settings, err := b.store.GuildSettingsFor(guildID)
	if err != nil {
		b.logger.Warn("guild settings fallback", zap.Error(err))
		return storage.GuildSettings{GuildID: guildID}
	}
	return settings
}

func formatWelcome(template string, user *discordgo.User, guildName string, memberCount int) string {
	content := template
	content = strings.ReplaceAll(content, "{user}", user.Username)
	content = strings.ReplaceAll(content, "{user-mention}", "<@"+user.ID+">")
	content = strings.ReplaceAll(content, "{server}", guildName)
	content = strings.ReplaceAll(content, "{member-count}", strconv.Itoa(memberCount))
	return content
}

func (b *Bot) respond(session *discordgo.Session, interaction *discordgo.InteractionCreate, content string, ephemeral bool) {
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	if embed == nil {
		b.respond(session, interaction, "No response available.", ephemeral)
		return
	}
	flags := discordgo.MessageFlags(0)
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	_ = session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  flags,
		},
	})
}

func (b *Bot) respondError(session *discordgo.Session, interaction *discordgo.InteractionCreate, message string) {
	b.respondEmbed(session, interaction, b.commandEmbed("Error", message, b.cfg.Embeds.Error, nil), true)
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields:      fields,
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
