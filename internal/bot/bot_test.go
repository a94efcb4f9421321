package bot

import (
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

func TestFormatWelcome(t *testing.T) {
	user := &discordgo.User{ID: "u1", Username: "sam"}
	got := formatWelcome("Welcome {user-mention} ({user}) to {server}! You are member #{member-count}.", user, "Testers", 42)
	want := "Welcome <@u1> (sam) to Testers! You are member #42."
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m 30s"},
		{2*time.Hour + 5*time.Minute, "2h 5m"},
	}
	for _, tc := range cases {
		if got := formatDuration(tc.in); got != tc.want {
			t.Fatalf("formatDuration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTicketChannelName(t *testing.T) {
	if got := ticketChannelName("Billing Problem"); got != "ticket-billing-problem" {
		t.Fatalf("got %q", got)
	}
	if got := ticketChannelName("  "); got != "ticket-support" {
		t.Fatalf("got %q", got)
	}
}

func TestDrawWinners(t *testing.T) {
	entrants := []string{"u1", "u2", "u3"}

	winners := drawWinners(entrants, 2)
	if len(winners) != 2 {
		t.Fatalf("expected 2 winners, got %d", len(winners))
	}
	seen := map[string]bool{}
	for _, winner := range winners {
		if seen[winner] {
			t.Fatalf("winner %s drawn twice", winner)
		}
		seen[winner] = true
	}

	if got := drawWinners(entrants, 10); len(got) != 3 {
		t.Fatalf("expected winners capped at pool size, got %d", len(got))
	}
	if got := drawWinners(entrants, 0); len(got) != 1 {
		t.Fatalf("expected at least one winner, got %d", len(got))
	}
}

func TestUpdateScopeList(t *testing.T) {
	list := updateScopeList(nil, "c1", false)
	list = updateScopeList(list, "c2", false)
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %v", list)
	}
	if got := updateScopeList(list, "c1", false); len(got) != 2 {
		t.Fatalf("expected duplicate to be ignored, got %v", got)
	}
	if got := updateScopeList(list, "", false); len(got) != 2 {
		t.Fatalf("expected empty id to be ignored, got %v", got)
	}
	if got := updateScopeList(list, "c3", true); got != nil {
		t.Fatalf("expected clear to empty the list, got %v", got)
	}
}

func TestEmbedVoteCounts(t *testing.T) {
	message := &discordgo.Message{
		Embeds: []*discordgo.MessageEmbed{{
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Author", Value: "<@u1>"},
				{Name: "Votes", Value: "👍 12 | 👎 3"},
			},
		}},
	}

	up, down := embedVoteCounts(message)
	if up != 12 || down != 3 {
		t.Fatalf("expected 12/3, got %d/%d", up, down)
	}

	if up, down := embedVoteCounts(nil); up != 0 || down != 0 {
		t.Fatalf("expected 0/0 for missing message, got %d/%d", up, down)
	}
	if up, down := embedVoteCounts(&discordgo.Message{}); up != 0 || down != 0 {
		t.Fatalf("expected 0/0 without embeds, got %d/%d", up, down)
	}

	message.Embeds[0].Fields[1].Value = "not a tally"
	if up, down := embedVoteCounts(message); up != 0 || down != 0 {
		t.Fatalf("expected 0/0 for malformed field, got %d/%d", up, down)
	}
}

func TestClampChance(t *testing.T) {
	if got := clampChance(0); got != 1 {
		t.Fatalf("got %d", got)
	}
	if got := clampChance(250); got != 100 {
		t.Fatalf("got %d", got)
	}
	if got := clampChance(55); got != 55 {
		t.Fatalf("got %d", got)
	}
}
