package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	TicketOpen    = "open"
	TicketClaimed = "claimed"
	TicketClosed  = "closed"
)

var (
	ErrTicketExists   = errors.New("member already has an open ticket")
	ErrTicketNotFound = errors.New("ticket not found")
	ErrTicketClaimed  = errors.New("ticket already claimed")
	ErrTicketClosed   = errors.New("ticket already closed")
)

type Ticket struct {
	ID        string    `json:"id"`
	GuildID   string    `json:"guildId"`
	ChannelID string    `json:"channelId"`
	OpenerID  string    `json:"openerId"`
	ClaimedBy string    `json:"claimedBy"`
	Topic     string    `json:"topic"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateTicket records a new ticket. A member may only hold one ticket that
// is not yet closed per guild.
func (s *Store) CreateTicket(guildID, openerID, channelID, topic string, now time.Time) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ticket := range s.tickets[guildID] {
		if ticket.OpenerID == openerID && ticket.State != TicketClosed {
			return Ticket{}, ErrTicketExists
		}
	}

	ticket := &Ticket{
		ID:        uuid.NewString(),
		GuildID:   guildID,
		ChannelID: channelID,
		OpenerID:  openerID,
		Topic:     topic,
		State:     TicketOpen,
		CreatedAt: now,
	}
	s.tickets[guildID] = append(s.tickets[guildID], ticket)
	if err := s.persist(ticketsFile, &s.tickets); err != nil {
		return Ticket{}, err
	}
	return *ticket, nil
}

func (s *Store) TicketByChannel(guildID, channelID string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket := s.findTicket(guildID, channelID)
	if ticket == nil {
		return Ticket{}, ErrTicketNotFound
	}
	return *ticket, nil
}

func (s *Store) ClaimTicket(guildID, channelID, moderatorID string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket := s.findTicket(guildID, channelID)
	if ticket == nil {
		return Ticket{}, ErrTicketNotFound
	}
	if ticket.State == TicketClosed {
		return Ticket{}, ErrTicketClosed
	}
	if ticket.ClaimedBy != "" {
		return Ticket{}, ErrTicketClaimed
	}
	ticket.ClaimedBy = moderatorID
	ticket.State = TicketClaimed
	if err := s.persist(ticketsFile, &s.tickets); err != nil {
		return Ticket{}, err
	}
	return *ticket, nil
}

func (s *Store) RenameTicket(guildID, channelID, topic string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket := s.findTicket(guildID, channelID)
	if ticket == nil {
		return Ticket{}, ErrTicketNotFound
	}
	if ticket.State == TicketClosed {
		return Ticket{}, ErrTicketClosed
	}
	ticket.Topic = topic
	if err := s.persist(ticketsFile, &s.tickets); err != nil {
		return Ticket{}, err
	}
	return *ticket, nil
}

func (s *Store) CloseTicket(guildID, channelID string) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket := s.findTicket(guildID, channelID)
	if ticket == nil {
		return Ticket{}, ErrTicketNotFound
	}
	if ticket.State == TicketClosed {
		return Ticket{}, ErrTicketClosed
	}
	ticket.State = TicketClosed
	if err := s.persist(ticketsFile, &s.tickets); err != nil {
		return Ticket{}, err
	}
	return *ticket, nil
}

func (s *Store) OpenTickets(guildID string) []Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	var open []Ticket
	for _, ticket := range s.tickets[guildID] {
		if ticket.State != TicketClosed {
			open = append(open, *ticket)
		}
	}
	return open
}

func (s *Store) findTicket(guildID, channelID string) *Ticket {
	for _, ticket := range s.tickets[guildID] {
		if ticket.ChannelID == channelID {
			return ticket
		}
	}
	return nil
}
