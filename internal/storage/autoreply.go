package storage

import (
	"errors"
	"time"

	"concord-community/internal/autoreply"

	"github.com/google/uuid"
)

var ErrReplyNotFound = errors.New("auto-reply rule not found")

// AddReply stores a new rule for its guild and returns it with a generated
// identifier. Insertion order is preserved.
func (s *Store) AddReply(rule autoreply.Rule) (autoreply.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule.ID = uuid.NewString()
	stored := rule
	s.replies[rule.GuildID] = append(s.replies[rule.GuildID], &stored)
	if err := s.persist(repliesFile, &s.replies); err != nil {
		return autoreply.Rule{}, err
	}
	return stored, nil
}

func (s *Store) EditReply(guildID, ruleID string, patch autoreply.Patch) (autoreply.Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule := s.findReply(guildID, ruleID)
	if rule == nil {
		return autoreply.Rule{}, ErrReplyNotFound
	}
	rule.Apply(patch)
	if err := s.persist(repliesFile, &s.replies); err != nil {
		return autoreply.Rule{}, err
	}
	return *rule, nil
}

func (s *Store) RemoveReply(guildID, ruleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := s.replies[guildID]
	for i, rule := range rules {
		if rule.ID == ruleID {
			s.replies[guildID] = append(rules[:i], rules[i+1:]...)
			return s.persist(repliesFile, &s.replies)
		}
	}
	return ErrReplyNotFound
}

// Replies returns copies of the guild's rules in insertion order.
func (s *Store) Replies(guildID string) []autoreply.Rule {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := s.replies[guildID]
	out := make([]autoreply.Rule, 0, len(rules))
	for _, rule := range rules {
		out = append(out, *rule)
	}
	return out
}

// MarkReplyUsed charges a matched rule: bumps its last-used timestamp and
// usage counter, then persists.
func (s *Store) MarkReplyUsed(guildID, ruleID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rule := s.findReply(guildID, ruleID)
	if rule == nil {
		return ErrReplyNotFound
	}
	rule.LastUsed = now
	rule.UseCount++
	return s.persist(repliesFile, &s.replies)
}

func (s *Store) findReply(guildID, ruleID string) *autoreply.Rule {
	for _, rule := range s.replies[guildID] {
		if rule.ID == ruleID {
			return rule
		}
	}
	return nil
}
