package verification

import (
	"testing"

	"concord-community/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(config.VerificationConfig{CodeLength: 5, SessionTTLMinutes: 10, MaxAttempts: 3}, zap.NewNop())
	t.Cleanup(m.Stop)
	return m
}

func TestVerifyCorrectAnswer(t *testing.T) {
	m := newTestManager(t)

	session, img, err := m.Begin("g1", "u1")
	require.NoError(t, err)
	require.NotEmpty(t, img)

	verdict, _ := m.Verify("g1", "u1", session.Code)
	assert.Equal(t, VerdictVerified, verdict)

	verdict, _ = m.Verify("g1", "u1", session.Code)
	assert.Equal(t, VerdictExpired, verdict, "session should be consumed on success")
}

func TestVerifyIgnoresCaseAndPadding(t *testing.T) {
	m := newTestManager(t)

	session, _, err := m.Begin("g1", "u1")
	require.NoError(t, err)

	answer := "  " + session.Code + " "
	verdict, _ := m.Verify("g1", "u1", answer)
	assert.Equal(t, VerdictVerified, verdict)
}

func TestVerifyWrongAnswerConsumesAttempts(t *testing.T) {
	m := newTestManager(t)

	_, _, err := m.Begin("g1", "u1")
	require.NoError(t, err)

	verdict, left := m.Verify("g1", "u1", "WRONG")
	assert.Equal(t, VerdictMismatch, verdict)
	assert.Equal(t, 2, left)

	verdict, left = m.Verify("g1", "u1", "WRONG")
	assert.Equal(t, VerdictMismatch, verdict)
	assert.Equal(t, 1, left)

	verdict, _ = m.Verify("g1", "u1", "WRONG")
	assert.Equal(t, VerdictExhausted, verdict)

	verdict, _ = m.Verify("g1", "u1", "WRONG")
	assert.Equal(t, VerdictExpired, verdict, "session should be gone after exhaustion")
}

func TestVerifyWithoutSession(t *testing.T) {
	m := newTestManager(t)

	verdict, _ := m.Verify("g1", "u1", "ANY")
	assert.Equal(t, VerdictExpired, verdict)
}

func TestBeginReplacesSession(t *testing.T) {
	m := newTestManager(t)

	first, _, err := m.Begin("g1", "u1")
	require.NoError(t, err)
	second, _, err := m.Begin("g1", "u1")
	require.NoError(t, err)

	if first.Code != second.Code {
		verdict, _ := m.Verify("g1", "u1", first.Code)
		assert.Equal(t, VerdictMismatch, verdict)
	}
	verdict, _ := m.Verify("g1", "u1", second.Code)
	assert.Equal(t, VerdictVerified, verdict)
}

func TestSessionsAreScopedPerGuild(t *testing.T) {
	m := newTestManager(t)

	session, _, err := m.Begin("g1", "u1")
	require.NoError(t, err)

	verdict, _ := m.Verify("g2", "u1", session.Code)
	assert.Equal(t, VerdictExpired, verdict)
}
