package storage

func (s *Store) MarkVerified(guildID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.verification.Verified[guildID]
	if guild == nil {
		guild = make(map[string]bool)
		s.verification.Verified[guildID] = guild
	}
	if guild[userID] {
		return nil
	}
	guild[userID] = true
	return s.persist(verificationFile, &s.verification)
}

func (s *Store) IsVerified(guildID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verification.Verified[guildID][userID]
}

func (s *Store) AddBlacklist(guildID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.verification.Blacklist[guildID]
	if guild == nil {
		guild = make(map[string]bool)
		s.verification.Blacklist[guildID] = guild
	}
	if guild[userID] {
		return nil
	}
	guild[userID] = true
	return s.persist(verificationFile, &s.verification)
}

func (s *Store) RemoveBlacklist(guildID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.verification.Blacklist[guildID]
	if !guild[userID] {
		return false, nil
	}
	delete(guild, userID)
	if err := s.persist(verificationFile, &s.verification); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) IsBlacklisted(guildID, userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verification.Blacklist[guildID][userID]
}
