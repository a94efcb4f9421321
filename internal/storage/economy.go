package storage

import (
	"sort"
	"time"
)

// Account is the full economy record for one member. Streak trackers are
// declared up front and default to zero rather than being attached later.
type Account struct {
	Wallet       int       `json:"wallet"`
	Bank         int       `json:"bank"`
	LastDaily    time.Time `json:"lastDaily"`
	LastWeekly   time.Time `json:"lastWeekly"`
	LastWork     time.Time `json:"lastWork"`
	DailyStreak  int       `json:"dailyStreak"`
	WeeklyStreak int       `json:"weeklyStreak"`
	WorkStreak   int       `json:"workStreak"`
}

type LeaderboardEntry struct {
	UserID string
	Wallet int
	Bank   int
}

func (e LeaderboardEntry) Total() int { return e.Wallet + e.Bank }

// RewardKind selects which claim timestamp and streak an operation touches.
type RewardKind string

const (
	RewardDaily  RewardKind = "daily"
	RewardWeekly RewardKind = "weekly"
	RewardWork   RewardKind = "work"
)

func (s *Store) ensureAccount(guildID, userID string) (*Account, bool) {
	guild := s.economy[guildID]
	if guild == nil {
		guild = make(map[string]*Account)
		s.economy[guildID] = guild
	}
	account := guild[userID]
	if account == nil {
		account = &Account{}
		guild[userID] = account
		return account, true
	}
	return account, false
}

// Account returns the member's record, creating and persisting a zeroed one
// on first access.
func (s *Store) Account(guildID, userID string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, created := s.ensureAccount(guildID, userID)
	if created {
		if err := s.persist(economyFile, &s.economy); err != nil {
			return Account{}, err
		}
	}
	return *account, nil
}

func (s *Store) AddCoins(guildID, userID string, amount int) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, _ := s.ensureAccount(guildID, userID)
	account.Wallet += amount
	if account.Wallet < 0 {
		account.Wallet = 0
	}
	if err := s.persist(economyFile, &s.economy); err != nil {
		return Account{}, err
	}
	return *account, nil
}

// Deposit moves amount from wallet to bank. It returns ok=false and leaves
// both balances unchanged when amount is non-positive or exceeds the wallet.
func (s *Store) Deposit(guildID, userID string, amount int) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, _ := s.ensureAccount(guildID, userID)
	if amount <= 0 || amount > account.Wallet {
		return *account, false, nil
	}
	account.Wallet -= amount
	account.Bank += amount
	if err := s.persist(economyFile, &s.economy); err != nil {
		return Account{}, false, err
	}
	return *account, true, nil
}

func (s *Store) Withdraw(guildID, userID string, amount int) (Account, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, _ := s.ensureAccount(guildID, userID)
	if amount <= 0 || amount > account.Bank {
		return *account, false, nil
	}
	account.Bank -= amount
	account.Wallet += amount
	if err := s.persist(economyFile, &s.economy); err != nil {
		return Account{}, false, err
	}
	return *account, true, nil
}

// Transfer moves wallet coins between members in a single persisted mutation.
func (s *Store) Transfer(guildID, fromID, toID string, amount int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, _ := s.ensureAccount(guildID, fromID)
	if amount <= 0 || amount > from.Wallet {
		return false, nil
	}
	to, _ := s.ensureAccount(guildID, toID)
	from.Wallet -= amount
	to.Wallet += amount
	if err := s.persist(economyFile, &s.economy); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Leaderboard(guildID string, limit int) []LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.economy[guildID]
	entries := make([]LeaderboardEntry, 0, len(guild))
	for userID, account := range guild {
		entries = append(entries, LeaderboardEntry{UserID: userID, Wallet: account.Wallet, Bank: account.Bank})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Total() != entries[j].Total() {
			return entries[i].Total() > entries[j].Total()
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// RewardState reports the last claim time and streak for one reward kind.
func (s *Store) RewardState(guildID, userID string, kind RewardKind) (time.Time, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, _ := s.ensureAccount(guildID, userID)
	switch kind {
	case RewardDaily:
		return account.LastDaily, account.DailyStreak
	case RewardWeekly:
		return account.LastWeekly, account.WeeklyStreak
	default:
		return account.LastWork, account.WorkStreak
	}
}

// RecordReward credits the wallet and updates the claim timestamp and streak
// as one mutation, so a crash cannot grant coins without charging a cooldown.
func (s *Store) RecordReward(guildID, userID string, kind RewardKind, now time.Time, streak, amount int) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, _ := s.ensureAccount(guildID, userID)
	account.Wallet += amount
	switch kind {
	case RewardDaily:
		account.LastDaily = now
		account.DailyStreak = streak
	case RewardWeekly:
		account.LastWeekly = now
		account.WeeklyStreak = streak
	default:
		account.LastWork = now
		account.WorkStreak = streak
	}
	if err := s.persist(economyFile, &s.economy); err != nil {
		return Account{}, err
	}
	return *account, nil
}
