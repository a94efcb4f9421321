// Package economy holds the timed-reward arithmetic shared by the daily,
// weekly, and work claims.
package economy

import (
	"time"

	"concord-community/internal/config"
)

type Reward struct {
	Amount         int
	StreakBonus    int
	StreakInterval int
	Cooldown       time.Duration
	Grace          time.Duration
}

func FromConfig(cfg config.RewardConfig) Reward {
	return Reward{
		Amount:         cfg.Amount,
		StreakBonus:    cfg.StreakBonus,
		StreakInterval: cfg.StreakInterval,
		Cooldown:       time.Duration(cfg.CooldownMinutes) * time.Minute,
		Grace:          time.Duration(cfg.GraceMinutes) * time.Minute,
	}
}

type ClaimState struct {
	Last   time.Time
	Streak int
}

type ClaimResult struct {
	Granted   bool
	Remaining time.Duration
	Amount    int
	Bonus     int
	Streak    int
}

// Claim applies the reward state machine: a claim before the cooldown has
// elapsed is rejected with the remaining wait; a claim inside the grace
// window after the cooldown extends the streak, with a bonus at every
// StreakInterval-th claim; a later claim resets the streak to 1.
func (r Reward) Claim(state ClaimState, now time.Time) ClaimResult {
	if !state.Last.IsZero() {
		elapsed := now.Sub(state.Last)
		if elapsed < r.Cooldown {
			return ClaimResult{Remaining: r.Cooldown - elapsed}
		}
	}

	streak := 1
	if !state.Last.IsZero() && now.Sub(state.Last) <= r.Cooldown+r.Grace {
		streak = state.Streak + 1
	}

	bonus := 0
	if r.StreakInterval > 0 && streak%r.StreakInterval == 0 {
		bonus = r.StreakBonus
	}

	return ClaimResult{
		Granted: true,
		Amount:  r.Amount,
		Bonus:   bonus,
		Streak:  streak,
	}
}
