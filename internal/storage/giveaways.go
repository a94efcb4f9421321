package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	ErrGiveawayEnded    = errors.New("giveaway already ended")
)

type Giveaway struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guildId"`
	ChannelID string    `json:"channelId"`
	MessageID string    `json:"messageId"`
	HostID    string    `json:"hostId"`
	Prize     string    `json:"prize"`
	Winners   int       `json:"winners"`
	EndsAt    time.Time `json:"endsAt"`
	Entrants  []string  `json:"entrants"`
	Ended     bool      `json:"ended"`
}

func (s *Store) CreateGiveaway(guildID, channelID, messageID, hostID, prize string, winners int, endsAt time.Time) (Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	giveaway := &Giveaway{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		HostID:    hostID,
		Prize:     prize,
		Winners:   winners,
		EndsAt:    endsAt,
	}
	s.giveaways[guildID] = append(s.giveaways[guildID], giveaway)
	if err := s.persist(giveawaysFile, &s.giveaways); err != nil {
		return Giveaway{}, err
	}
	return *giveaway, nil
}

// EnterGiveaway records an entry; entered=false means the member was already
// in the draw.
func (s *Store) EnterGiveaway(guildID, messageID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	giveaway := s.findGiveaway(guildID, messageID)
	if giveaway == nil {
		return false, ErrGiveawayNotFound
	}
	if giveaway.Ended {
		return false, ErrGiveawayEnded
	}
	for _, entrant := range giveaway.Entrants {
		if entrant == userID {
			return false, nil
		}
	}
	giveaway.Entrants = append(giveaway.Entrants, userID)
	if err := s.persist(giveawaysFile, &s.giveaways); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) EndGiveaway(guildID, messageID string) (Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	giveaway := s.findGiveaway(guildID, messageID)
	if giveaway == nil {
		return Giveaway{}, ErrGiveawayNotFound
	}
	if giveaway.Ended {
		return Giveaway{}, ErrGiveawayEnded
	}
	giveaway.Ended = true
	if err := s.persist(giveawaysFile, &s.giveaways); err != nil {
		return Giveaway{}, err
	}
	return *giveaway, nil
}

func (s *Store) GiveawayByMessage(guildID, messageID string) (Giveaway, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	giveaway := s.findGiveaway(guildID, messageID)
	if giveaway == nil {
		return Giveaway{}, ErrGiveawayNotFound
	}
	return *giveaway, nil
}

// DueGiveaways lists running giveaways whose end time has passed, across
// all guilds.
func (s *Store) DueGiveaways(now time.Time) []Giveaway {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []Giveaway
	for _, giveaways := range s.giveaways {
		for _, giveaway := range giveaways {
			if !giveaway.Ended && !giveaway.EndsAt.After(now) {
				due = append(due, *giveaway)
			}
		}
	}
	return due
}

func (s *Store) findGiveaway(guildID, messageID string) *Giveaway {
	for _, giveaway := range s.giveaways[guildID] {
		if giveaway.MessageID == messageID {
			return giveaway
		}
	}
	return nil
}
