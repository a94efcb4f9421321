package storage

import "time"

type Warning struct {
	ModeratorID string    `json:"moderatorId"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Mute struct {
	ModeratorID string    `json:"moderatorId"`
	Reason      string    `json:"reason"`
	Until       time.Time `json:"until"`
	CreatedAt   time.Time `json:"createdAt"`
}

type LogEntry struct {
	GuildID   string    `json:"guildId"`
	UserID    string    `json:"userId"`
	Level     string    `json:"level"`
	Event     string    `json:"event"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Store) AddWarning(guildID, userID string, warning Warning) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.moderation.Warnings[guildID]
	if guild == nil {
		guild = make(map[string][]Warning)
		s.moderation.Warnings[guildID] = guild
	}
	guild[userID] = append(guild[userID], warning)
	if err := s.persist(moderationFile, &s.moderation); err != nil {
		return 0, err
	}
	return len(guild[userID]), nil
}

func (s *Store) Warnings(guildID, userID string) []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()

	warnings := s.moderation.Warnings[guildID][userID]
	out := make([]Warning, len(warnings))
	copy(out, warnings)
	return out
}

func (s *Store) ClearWarnings(guildID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.moderation.Warnings[guildID]
	cleared := len(guild[userID])
	if cleared == 0 {
		return 0, nil
	}
	delete(guild, userID)
	if err := s.persist(moderationFile, &s.moderation); err != nil {
		return 0, err
	}
	return cleared, nil
}

func (s *Store) SetMute(guildID, userID string, mute Mute) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.moderation.Mutes[guildID]
	if guild == nil {
		guild = make(map[string]*Mute)
		s.moderation.Mutes[guildID] = guild
	}
	guild[userID] = &mute
	return s.persist(moderationFile, &s.moderation)
}

func (s *Store) ClearMute(guildID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.moderation.Mutes[guildID]
	if guild[userID] == nil {
		return false, nil
	}
	delete(guild, userID)
	if err := s.persist(moderationFile, &s.moderation); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Mute(guildID, userID string) (Mute, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mute := s.moderation.Mutes[guildID][userID]
	if mute == nil {
		return Mute{}, false
	}
	return *mute, true
}

func (s *Store) AppendLog(entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.moderation.Logs[entry.GuildID] = append(s.moderation.Logs[entry.GuildID], entry)
	return s.persist(moderationFile, &s.moderation)
}

func (s *Store) Logs(guildID string, since time.Time) []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []LogEntry
	for _, entry := range s.moderation.Logs[guildID] {
		if entry.CreatedAt.Before(since) {
			continue
		}
		out = append(out, entry)
	}
	return out
}
