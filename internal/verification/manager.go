// Package verification manages pending captcha challenges. Sessions live in
// an expiring cache; a member whose session lapses simply requests a new one.
package verification

import (
	"strings"
	"time"

	"concord-community/internal/captcha"
	"concord-community/internal/config"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
)

type Verdict int

const (
	VerdictVerified Verdict = iota
	VerdictMismatch
	VerdictExpired
	VerdictExhausted
)

type Session struct {
	GuildID  string
	UserID   string
	Code     string
	Attempts int
}

type Manager struct {
	cfg      config.VerificationConfig
	logger   *zap.Logger
	sessions *ttlcache.Cache[string, *Session]
}

func NewManager(cfg config.VerificationConfig, logger *zap.Logger) *Manager {
	ttl := time.Duration(cfg.SessionTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	cache := ttlcache.New[string, *Session](
		ttlcache.WithTTL[string, *Session](ttl),
		ttlcache.WithDisableTouchOnHit[string, *Session](),
	)
	go cache.Start()

	return &Manager{cfg: cfg, logger: logger, sessions: cache}
}

func (m *Manager) Stop() {
	m.sessions.Stop()
}

// Begin opens (or replaces) a challenge for the member and returns the
// session plus the rendered captcha PNG.
func (m *Manager) Begin(guildID, userID string) (*Session, []byte, error) {
	code := captcha.NewCode(m.cfg.CodeLength)
	img, err := captcha.Render(code)
	if err != nil {
		return nil, nil, err
	}

	session := &Session{GuildID: guildID, UserID: userID, Code: code}
	m.sessions.Set(sessionKey(guildID, userID), session, ttlcache.DefaultTTL)
	m.logger.Debug("verification session opened", zap.String("guild_id", guildID), zap.String("user_id", userID))
	return session, img, nil
}

// Verify checks an answer. A wrong answer consumes an attempt; exhausting
// the attempt budget discards the session.
func (m *Manager) Verify(guildID, userID, answer string) (Verdict, int) {
	item := m.sessions.Get(sessionKey(guildID, userID))
	if item == nil {
		return VerdictExpired, 0
	}
	session := item.Value()

	if strings.EqualFold(strings.TrimSpace(answer), session.Code) {
		m.sessions.Delete(sessionKey(guildID, userID))
		return VerdictVerified, 0
	}

	session.Attempts++
	maxAttempts := m.cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if session.Attempts >= maxAttempts {
		m.sessions.Delete(sessionKey(guildID, userID))
		return VerdictExhausted, 0
	}
	return VerdictMismatch, maxAttempts - session.Attempts
}

func sessionKey(guildID, userID string) string {
	return guildID + ":" + userID
}
