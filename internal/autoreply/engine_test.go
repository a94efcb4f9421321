package autoreply

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	rules []Rule
}

func (s *staticSource) Replies(guildID string) []Rule {
	var out []Rule
	for _, rule := range s.rules {
		if rule.GuildID == guildID {
			out = append(out, rule)
		}
	}
	return out
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTestEngine(rules ...Rule) *Engine {
	engine := NewEngine(&staticSource{rules: rules}, zap.NewNop())
	engine.WithDraw(func() int { return 0 })
	return engine
}

func baseRule() Rule {
	return Rule{
		ID:        "r1",
		GuildID:   "g1",
		Trigger:   "hello",
		Response:  "hi there",
		MatchType: MatchContains,
		Chance:    100,
		Enabled:   true,
	}
}

func TestContainsMatch(t *testing.T) {
	engine := newTestEngine(baseRule())

	matches := engine.FindMatches("g1", "well hello there", "u1", "c1", nil)
	require.Len(t, matches, 1)
	assert.Equal(t, "hi there", matches[0].Response)
}

func TestDisabledRuleNeverMatches(t *testing.T) {
	rule := baseRule()
	rule.Enabled = false
	engine := newTestEngine(rule)

	assert.Empty(t, engine.FindMatches("g1", "hello", "u1", "c1", nil))
}

func TestMatchModes(t *testing.T) {
	cases := []struct {
		name    string
		mode    MatchType
		trigger string
		content string
		want    bool
	}{
		{"exact hit", MatchExact, "hello", "hello", true},
		{"exact miss on extra text", MatchExact, "hello", "hello there", false},
		{"startswith hit", MatchStartsWith, "hel", "hello there", true},
		{"startswith miss", MatchStartsWith, "there", "hello there", false},
		{"endswith hit", MatchEndsWith, "there", "hello there", true},
		{"endswith miss", MatchEndsWith, "hel", "hello there", false},
		{"contains hit", MatchContains, "llo th", "hello there", true},
		{"regex hit", MatchRegex, "^h.*e$", "hello there", true},
		{"regex miss", MatchRegex, "^x", "hello there", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := baseRule()
			rule.MatchType = tc.mode
			rule.Trigger = tc.trigger
			engine := newTestEngine(rule)

			matches := engine.FindMatches("g1", tc.content, "u1", "c1", nil)
			assert.Equal(t, tc.want, len(matches) == 1)
		})
	}
}

func TestCaseSensitivity(t *testing.T) {
	rule := baseRule()
	rule.Trigger = "Hello"
	engine := newTestEngine(rule)
	assert.Len(t, engine.FindMatches("g1", "HELLO world", "u1", "c1", nil), 1)

	rule.CaseSensitive = true
	engine = newTestEngine(rule)
	assert.Empty(t, engine.FindMatches("g1", "HELLO world", "u1", "c1", nil))
	assert.Len(t, engine.FindMatches("g1", "Hello world", "u1", "c1", nil), 1)
}

func TestRegexCaseInsensitiveByDefault(t *testing.T) {
	rule := baseRule()
	rule.MatchType = MatchRegex
	rule.Trigger = "^hello"
	engine := newTestEngine(rule)

	assert.Len(t, engine.FindMatches("g1", "HELLO world", "u1", "c1", nil), 1)
}

func TestInvalidRegexNeverMatches(t *testing.T) {
	rule := baseRule()
	rule.MatchType = MatchRegex
	rule.Trigger = "([unclosed"
	engine := newTestEngine(rule)

	assert.Empty(t, engine.FindMatches("g1", "([unclosed", "u1", "c1", nil))
}

func TestCooldownWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rule := baseRule()
	rule.CooldownSeconds = 60
	rule.LastUsed = now.Add(-30 * time.Second)

	engine := newTestEngine(rule)
	engine.WithClock(fixedClock{now: now})
	assert.Empty(t, engine.FindMatches("g1", "hello", "u1", "c1", nil))

	engine.WithClock(fixedClock{now: now.Add(31 * time.Second)})
	assert.Len(t, engine.FindMatches("g1", "hello", "u1", "c1", nil), 1)
}

func TestZeroCooldownNeverThrottles(t *testing.T) {
	rule := baseRule()
	rule.LastUsed = time.Now()

	engine := newTestEngine(rule)
	assert.Len(t, engine.FindMatches("g1", "hello", "u1", "c1", nil), 1)
}

func TestChannelScoping(t *testing.T) {
	rule := baseRule()
	rule.AllowedChannels = []string{"c1"}
	engine := newTestEngine(rule)
	assert.Len(t, engine.FindMatches("g1", "hello", "u1", "c1", nil), 1)
	assert.Empty(t, engine.FindMatches("g1", "hello", "u1", "c2", nil))

	rule = baseRule()
	rule.ExcludedChannels = []string{"c1"}
	engine = newTestEngine(rule)
	assert.Empty(t, engine.FindMatches("g1", "hello", "u1", "c1", nil))
	assert.Len(t, engine.FindMatches("g1", "hello", "u1", "c2", nil), 1)
}

func TestRoleScoping(t *testing.T) {
	rule := baseRule()
	rule.AllowedRoles = []string{"mod"}
	engine := newTestEngine(rule)
	assert.Len(t, engine.FindMatches("g1", "hello", "u1", "c1", []string{"mod", "member"}), 1)
	assert.Empty(t, engine.FindMatches("g1", "hello", "u1", "c1", []string{"member"}))
	assert.Empty(t, engine.FindMatches("g1", "hello", "u1", "c1", nil))

	rule = baseRule()
	rule.ExcludedRoles = []string{"muted"}
	engine = newTestEngine(rule)
	assert.Empty(t, engine.FindMatches("g1", "hello", "u1", "c1", []string{"muted"}))
	assert.Len(t, engine.FindMatches("g1", "hello", "u1", "c1", []string{"member"}), 1)
}

func TestChanceDraw(t *testing.T) {
	rule := baseRule()
	rule.Chance = 40
	engine := newTestEngine(rule)

	engine.WithDraw(func() int { return 39 })
	assert.Len(t, engine.FindMatches("g1", "hello", "u1", "c1", nil), 1)

	engine.WithDraw(func() int { return 40 })
	assert.Empty(t, engine.FindMatches("g1", "hello", "u1", "c1", nil))
}

func TestFullChanceSkipsDraw(t *testing.T) {
	engine := newTestEngine(baseRule())
	engine.WithDraw(func() int {
		t.Fatal("draw should not run at chance 100")
		return 0
	})

	assert.Len(t, engine.FindMatches("g1", "hello", "u1", "c1", nil), 1)
}

func TestMultipleRulesAllEvaluated(t *testing.T) {
	first := baseRule()
	second := baseRule()
	second.ID = "r2"
	second.Trigger = "there"
	third := baseRule()
	third.ID = "r3"
	third.Trigger = "goodbye"

	engine := newTestEngine(first, second, third)
	matches := engine.FindMatches("g1", "hello there", "u1", "c1", nil)
	require.Len(t, matches, 2)
	assert.Equal(t, "r1", matches[0].ID)
	assert.Equal(t, "r2", matches[1].ID)
}

func TestGuildIsolation(t *testing.T) {
	engine := newTestEngine(baseRule())
	assert.Empty(t, engine.FindMatches("g2", "hello", "u1", "c1", nil))
}
