package autoreply

import (
	"math/rand/v2"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Source yields the current rule set for a guild, in insertion order.
type Source interface {
	Replies(guildID string) []Rule
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Engine evaluates configured rules against an incoming message. Evaluation
// is read-only; charging a matched rule's cooldown and usage counter is the
// caller's separate step, so matches can be previewed without consuming them.
type Engine struct {
	source Source
	logger *zap.Logger
	clock  Clock
	draw   func() int
}

func NewEngine(source Source, logger *zap.Logger) *Engine {
	return &Engine{
		source: source,
		logger: logger,
		clock:  realClock{},
		draw:   func() int { return rand.IntN(100) },
	}
}

func (e *Engine) WithClock(clock Clock) {
	e.clock = clock
}

// WithDraw replaces the probability draw; the function must return a value
// in [0,100).
func (e *Engine) WithDraw(draw func() int) {
	e.draw = draw
}

// FindMatches returns every rule the message qualifies for. Rules are
// evaluated independently; a match never short-circuits the scan.
func (e *Engine) FindMatches(guildID, content, authorID, channelID string, roleIDs []string) []Rule {
	_ = authorID
	now := e.clock.Now()

	var matched []Rule
	for _, rule := range e.source.Replies(guildID) {
		if !rule.Enabled {
			continue
		}
		if cd := rule.Cooldown(); cd > 0 && !rule.LastUsed.IsZero() && now.Sub(rule.LastUsed) < cd {
			continue
		}
		if len(rule.AllowedChannels) > 0 && !contains(rule.AllowedChannels, channelID) {
			continue
		}
		if contains(rule.ExcludedChannels, channelID) {
			continue
		}
		if len(rule.AllowedRoles) > 0 && !intersects(rule.AllowedRoles, roleIDs) {
			continue
		}
		if intersects(rule.ExcludedRoles, roleIDs) {
			continue
		}
		if rule.Chance < 100 && e.draw() >= rule.Chance {
			continue
		}
		if e.matchesTrigger(rule, content) {
			matched = append(matched, rule)
		}
	}
	return matched
}

func (e *Engine) matchesTrigger(rule Rule, content string) bool {
	trigger := rule.Trigger
	text := content
	if !rule.CaseSensitive {
		trigger = strings.ToLower(trigger)
		text = strings.ToLower(text)
	}

	switch rule.MatchType {
	case MatchExact:
		return text == trigger
	case MatchStartsWith:
		return strings.HasPrefix(text, trigger)
	case MatchEndsWith:
		return strings.HasSuffix(text, trigger)
	case MatchRegex:
		pattern := rule.Trigger
		if !rule.CaseSensitive {
			pattern = "(?i)" + pattern
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			e.logger.Warn("invalid auto-reply pattern",
				zap.String("guild_id", rule.GuildID),
				zap.String("rule_id", rule.ID),
				zap.Error(err))
			return false
		}
		return re.MatchString(content)
	default:
		return strings.Contains(text, trigger)
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func intersects(list, other []string) bool {
	for _, item := range list {
		for _, candidate := range other {
			if item == candidate {
				return true
			}
		}
	}
	return false
}
