package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"concord-community/internal/autoreply"

	"go.uber.org/zap"
)

func openTestStore(t *testing.T, dir string) *Store {
	t.Helper()
	store, err := Open(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestEconomyRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := openTestStore(t, dir)

	if _, err := store.AddCoins("g1", "u1", 500); err != nil {
		t.Fatalf("add coins: %v", err)
	}
	if _, ok, err := store.Deposit("g1", "u1", 300); err != nil || !ok {
		t.Fatalf("deposit: ok=%v err=%v", ok, err)
	}

	reopened := openTestStore(t, dir)
	account, err := reopened.Account("g1", "u1")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if account.Wallet != 200 || account.Bank != 300 {
		t.Fatalf("expected 200/300, got %d/%d", account.Wallet, account.Bank)
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	store := openTestStore(t, dir)

	first, err := store.Account("g1", "u1")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	economyBefore, err := os.ReadFile(filepath.Join(dir, economyFile))
	if err != nil {
		t.Fatalf("read economy doc: %v", err)
	}

	second, err := store.Account("g1", "u1")
	if err != nil {
		t.Fatalf("second account: %v", err)
	}
	if first != second {
		t.Fatalf("accounts differ: %+v vs %+v", first, second)
	}
	economyAfter, err := os.ReadFile(filepath.Join(dir, economyFile))
	if err != nil {
		t.Fatalf("read economy doc: %v", err)
	}
	if !bytes.Equal(economyBefore, economyAfter) {
		t.Fatal("second access rewrote the economy document")
	}

	firstSettings, err := store.GuildSettingsFor("g1")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	settingsBefore, err := os.ReadFile(filepath.Join(dir, settingsFile))
	if err != nil {
		t.Fatalf("read settings doc: %v", err)
	}

	secondSettings, err := store.GuildSettingsFor("g1")
	if err != nil {
		t.Fatalf("second settings: %v", err)
	}
	if firstSettings != secondSettings {
		t.Fatalf("settings differ: %+v vs %+v", firstSettings, secondSettings)
	}
	settingsAfter, err := os.ReadFile(filepath.Join(dir, settingsFile))
	if err != nil {
		t.Fatalf("read settings doc: %v", err)
	}
	if !bytes.Equal(settingsBefore, settingsAfter) {
		t.Fatal("second access rewrote the settings document")
	}
}

func TestDepositRejectsOverdraft(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	if _, err := store.AddCoins("g1", "u1", 50); err != nil {
		t.Fatalf("add coins: %v", err)
	}
	account, ok, err := store.Deposit("g1", "u1", 100)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if ok {
		t.Fatal("expected deposit to be rejected")
	}
	if account.Wallet != 50 || account.Bank != 0 {
		t.Fatalf("balances changed on rejected deposit: %d/%d", account.Wallet, account.Bank)
	}
}

func TestTransfer(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	if _, err := store.AddCoins("g1", "u1", 100); err != nil {
		t.Fatalf("add coins: %v", err)
	}
	ok, err := store.Transfer("g1", "u1", "u2", 60)
	if err != nil || !ok {
		t.Fatalf("transfer: ok=%v err=%v", ok, err)
	}
	if ok, _ := store.Transfer("g1", "u1", "u2", 60); ok {
		t.Fatal("expected second transfer to be rejected")
	}

	recipient, err := store.Account("g1", "u2")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if recipient.Wallet != 60 {
		t.Fatalf("expected recipient wallet 60, got %d", recipient.Wallet)
	}
}

func TestCorruptDocumentIsReset(t *testing.T) {
	dir := t.TempDir()
	store := openTestStore(t, dir)
	if _, err := store.AddCoins("g1", "u1", 100); err != nil {
		t.Fatalf("add coins: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, economyFile), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}

	reopened := openTestStore(t, dir)
	account, err := reopened.Account("g1", "u1")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if account.Wallet != 0 {
		t.Fatalf("expected healed store to start empty, got wallet %d", account.Wallet)
	}
}

func TestRecordReward(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	account, err := store.RecordReward("g1", "u1", RewardDaily, now, 3, 700)
	if err != nil {
		t.Fatalf("record reward: %v", err)
	}
	if account.Wallet != 700 || account.DailyStreak != 3 {
		t.Fatalf("expected wallet 700 streak 3, got %d/%d", account.Wallet, account.DailyStreak)
	}

	last, streak := store.RewardState("g1", "u1", RewardDaily)
	if !last.Equal(now) || streak != 3 {
		t.Fatalf("expected state %v/3, got %v/%d", now, last, streak)
	}
}

func TestOneOpenTicketPerMember(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	now := time.Now()

	if _, err := store.CreateTicket("g1", "u1", "c1", "help", now); err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	if _, err := store.CreateTicket("g1", "u1", "c2", "more help", now); err != ErrTicketExists {
		t.Fatalf("expected ErrTicketExists, got %v", err)
	}

	if _, err := store.CloseTicket("g1", "c1"); err != nil {
		t.Fatalf("close ticket: %v", err)
	}
	if _, err := store.CreateTicket("g1", "u1", "c2", "more help", now); err != nil {
		t.Fatalf("create after close: %v", err)
	}
}

func TestClaimTicketOnce(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	if _, err := store.CreateTicket("g1", "u1", "c1", "help", time.Now()); err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	ticket, err := store.TicketByChannel("g1", "c1")
	if err != nil || ticket.State != TicketOpen {
		t.Fatalf("ticket by channel: state=%q err=%v", ticket.State, err)
	}

	ticket, err = store.ClaimTicket("g1", "c1", "mod1")
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if ticket.State != TicketClaimed || ticket.ClaimedBy != "mod1" {
		t.Fatalf("unexpected ticket after claim: %+v", ticket)
	}
	if _, err := store.ClaimTicket("g1", "c1", "mod2"); err != ErrTicketClaimed {
		t.Fatalf("expected ErrTicketClaimed, got %v", err)
	}
}

func TestReplyLifecycle(t *testing.T) {
	dir := t.TempDir()
	store := openTestStore(t, dir)

	stored, err := store.AddReply(autoreply.Rule{
		GuildID:   "g1",
		Trigger:   "hello",
		Response:  "hi there",
		MatchType: autoreply.MatchContains,
		Chance:    100,
		Enabled:   true,
	})
	if err != nil {
		t.Fatalf("add reply: %v", err)
	}
	if stored.ID == "" {
		t.Fatal("expected generated rule id")
	}

	disabled := false
	if _, err := store.EditReply("g1", stored.ID, autoreply.Patch{Enabled: &disabled}); err != nil {
		t.Fatalf("edit reply: %v", err)
	}

	reopened := openTestStore(t, dir)
	rules := reopened.Replies("g1")
	if len(rules) != 1 || rules[0].Enabled {
		t.Fatalf("expected one disabled rule after reopen, got %+v", rules)
	}

	if err := reopened.RemoveReply("g1", stored.ID); err != nil {
		t.Fatalf("remove reply: %v", err)
	}
	if err := reopened.RemoveReply("g1", stored.ID); err != ErrReplyNotFound {
		t.Fatalf("expected ErrReplyNotFound, got %v", err)
	}
}

func TestMarkReplyUsed(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	stored, err := store.AddReply(autoreply.Rule{GuildID: "g1", Trigger: "x", Enabled: true, Chance: 100})
	if err != nil {
		t.Fatalf("add reply: %v", err)
	}
	now := time.Now()
	if err := store.MarkReplyUsed("g1", stored.ID, now); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	rules := store.Replies("g1")
	if rules[0].UseCount != 1 || !rules[0].LastUsed.Equal(now) {
		t.Fatalf("expected use count 1 at %v, got %+v", now, rules[0])
	}
}

func TestGiveawayEntry(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	giveaway, err := store.CreateGiveaway("g1", "c1", "m1", "host", "a prize", 1, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("create giveaway: %v", err)
	}
	if giveaway.ID == "" {
		t.Fatal("expected generated giveaway id")
	}

	entered, err := store.EnterGiveaway("g1", "m1", "u1")
	if err != nil || !entered {
		t.Fatalf("enter: entered=%v err=%v", entered, err)
	}
	entered, err = store.EnterGiveaway("g1", "m1", "u1")
	if err != nil || entered {
		t.Fatalf("expected duplicate entry to be ignored, entered=%v err=%v", entered, err)
	}

	ended, err := store.EndGiveaway("g1", "m1")
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if !ended.Ended || len(ended.Entrants) != 1 {
		t.Fatalf("unexpected giveaway after end: %+v", ended)
	}
	if _, err := store.EnterGiveaway("g1", "m1", "u2"); err != ErrGiveawayEnded {
		t.Fatalf("expected ErrGiveawayEnded, got %v", err)
	}
	_ = giveaway
}

func TestDueGiveaways(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	now := time.Now()

	if _, err := store.CreateGiveaway("g1", "c1", "m1", "host", "soon", 1, now.Add(-time.Minute)); err != nil {
		t.Fatalf("create giveaway: %v", err)
	}
	if _, err := store.CreateGiveaway("g2", "c2", "m2", "host", "later", 1, now.Add(time.Hour)); err != nil {
		t.Fatalf("create giveaway: %v", err)
	}

	due := store.DueGiveaways(now)
	if len(due) != 1 || due[0].MessageID != "m1" {
		t.Fatalf("expected only m1 due, got %+v", due)
	}
}

func TestGuildSettingsDefaults(t *testing.T) {
	dir := t.TempDir()
	store := openTestStore(t, dir)

	settings, err := store.GuildSettingsFor("g1")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.WelcomeMessage == "" {
		t.Fatal("expected a default welcome message")
	}

	settings.LogChannel = "c9"
	if err := store.UpdateGuildSettings(settings); err != nil {
		t.Fatalf("update settings: %v", err)
	}

	reopened := openTestStore(t, dir)
	got, err := reopened.GuildSettingsFor("g1")
	if err != nil {
		t.Fatalf("settings after reopen: %v", err)
	}
	if got.LogChannel != "c9" {
		t.Fatalf("expected log channel c9, got %q", got.LogChannel)
	}
}

func TestWarnings(t *testing.T) {
	store := openTestStore(t, t.TempDir())

	count, err := store.AddWarning("g1", "u1", Warning{ModeratorID: "m1", Reason: "spam", CreatedAt: time.Now()})
	if err != nil || count != 1 {
		t.Fatalf("add warning: count=%d err=%v", count, err)
	}
	count, err = store.AddWarning("g1", "u1", Warning{ModeratorID: "m1", Reason: "again", CreatedAt: time.Now()})
	if err != nil || count != 2 {
		t.Fatalf("second warning: count=%d err=%v", count, err)
	}

	cleared, err := store.ClearWarnings("g1", "u1")
	if err != nil || cleared != 2 {
		t.Fatalf("clear warnings: cleared=%d err=%v", cleared, err)
	}
	if got := store.Warnings("g1", "u1"); len(got) != 0 {
		t.Fatalf("expected no warnings, got %d", len(got))
	}
}

func TestMuteLifecycle(t *testing.T) {
	store := openTestStore(t, t.TempDir())
	until := time.Now().Add(time.Hour)

	if err := store.SetMute("g1", "u1", Mute{ModeratorID: "m1", Reason: "spam", Until: until, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("set mute: %v", err)
	}
	mute, ok := store.Mute("g1", "u1")
	if !ok || !mute.Until.Equal(until) {
		t.Fatalf("unexpected mute: ok=%v %+v", ok, mute)
	}

	cleared, err := store.ClearMute("g1", "u1")
	if err != nil || !cleared {
		t.Fatalf("clear mute: cleared=%v err=%v", cleared, err)
	}
	if cleared, _ := store.ClearMute("g1", "u1"); cleared {
		t.Fatal("expected second clear to report nothing to do")
	}
}

func TestVerificationFlags(t *testing.T) {
	dir := t.TempDir()
	store := openTestStore(t, dir)

	if store.IsVerified("g1", "u1") {
		t.Fatal("fresh member should not be verified")
	}
	if err := store.MarkVerified("g1", "u1"); err != nil {
		t.Fatalf("mark verified: %v", err)
	}
	if err := store.AddBlacklist("g1", "u2"); err != nil {
		t.Fatalf("blacklist: %v", err)
	}

	reopened := openTestStore(t, dir)
	if !reopened.IsVerified("g1", "u1") {
		t.Fatal("verified flag lost on reopen")
	}
	if !reopened.IsBlacklisted("g1", "u2") {
		t.Fatal("blacklist flag lost on reopen")
	}
	removed, err := reopened.RemoveBlacklist("g1", "u2")
	if err != nil || !removed {
		t.Fatalf("remove blacklist: removed=%v err=%v", removed, err)
	}
	if reopened.IsBlacklisted("g1", "u2") {
		t.Fatal("expected blacklist entry removed")
	}
}
