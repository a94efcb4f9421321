package storage

import "sort"

type RankRecord struct {
	XP    int `json:"xp"`
	Level int `json:"level"`
}

type RankEntry struct {
	UserID string
	XP     int
	Level  int
}

func (s *Store) ensureRank(guildID, userID string) (*RankRecord, bool) {
	guild := s.ranks[guildID]
	if guild == nil {
		guild = make(map[string]*RankRecord)
		s.ranks[guildID] = guild
	}
	record := guild[userID]
	if record == nil {
		record = &RankRecord{}
		guild[userID] = record
		return record, true
	}
	return record, false
}

func (s *Store) Rank(guildID, userID string) (RankRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, created := s.ensureRank(guildID, userID)
	if created {
		if err := s.persist(ranksFile, &s.ranks); err != nil {
			return RankRecord{}, err
		}
	}
	return *record, nil
}

func (s *Store) SaveRank(guildID, userID string, record RankRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, _ := s.ensureRank(guildID, userID)
	*current = record
	return s.persist(ranksFile, &s.ranks)
}

func (s *Store) RankLeaderboard(guildID string, limit int) []RankEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.ranks[guildID]
	entries := make([]RankEntry, 0, len(guild))
	for userID, record := range guild {
		entries = append(entries, RankEntry{UserID: userID, XP: record.XP, Level: record.Level})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].XP != entries[j].XP {
			return entries[i].XP > entries[j].XP
		}
		return entries[i].UserID < entries[j].UserID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
