package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testReward = Reward{
	Amount:         200,
	StreakBonus:    500,
	StreakInterval: 5,
	Cooldown:       24 * time.Hour,
	Grace:          24 * time.Hour,
}

func TestFirstClaimStartsStreak(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	result := testReward.Claim(ClaimState{}, now)
	assert.True(t, result.Granted)
	assert.Equal(t, 200, result.Amount)
	assert.Equal(t, 0, result.Bonus)
	assert.Equal(t, 1, result.Streak)
}

func TestClaimDuringCooldownIsRejected(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := ClaimState{Last: now.Add(-6 * time.Hour), Streak: 3}

	result := testReward.Claim(state, now)
	assert.False(t, result.Granted)
	assert.Equal(t, 18*time.Hour, result.Remaining)
	assert.Zero(t, result.Amount)
}

func TestClaimInsideGraceExtendsStreak(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := ClaimState{Last: now.Add(-30 * time.Hour), Streak: 3}

	result := testReward.Claim(state, now)
	assert.True(t, result.Granted)
	assert.Equal(t, 4, result.Streak)
}

func TestLateClaimResetsStreak(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := ClaimState{Last: now.Add(-72 * time.Hour), Streak: 9}

	result := testReward.Claim(state, now)
	assert.True(t, result.Granted)
	assert.Equal(t, 1, result.Streak)
	assert.Equal(t, 0, result.Bonus)
}

func TestStreakBonusAtInterval(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	state := ClaimState{Last: now.Add(-25 * time.Hour), Streak: 4}

	result := testReward.Claim(state, now)
	assert.True(t, result.Granted)
	assert.Equal(t, 5, result.Streak)
	assert.Equal(t, 500, result.Bonus)
}

func TestZeroIntervalNeverPaysBonus(t *testing.T) {
	reward := testReward
	reward.StreakInterval = 0
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	result := reward.Claim(ClaimState{Last: now.Add(-25 * time.Hour), Streak: 4}, now)
	assert.True(t, result.Granted)
	assert.Equal(t, 0, result.Bonus)
}
