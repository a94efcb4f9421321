package storage

// GuildSettings holds the per-guild feature configuration. Zero values mean
// "not configured"; empty channel IDs disable the corresponding feature.
type GuildSettings struct {
	GuildID             string `json:"guildId"`
	WelcomeChannel      string `json:"welcomeChannel"`
	WelcomeMessage      string `json:"welcomeMessage"`
	LogChannel          string `json:"logChannel"`
	SuggestionsChannel  string `json:"suggestionsChannel"`
	TicketCategory      string `json:"ticketCategory"`
	VerificationEnabled bool   `json:"verificationEnabled"`
	VerifiedRole        string `json:"verifiedRole"`
}

const defaultWelcomeMessage = "Welcome {user-mention} to {server}! You are member #{member-count}."

// GuildSettingsFor returns the guild's settings, creating and persisting the
// default record on first access.
func (s *Store) GuildSettingsFor(guildID string) (GuildSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.settings[guildID]
	if settings == nil {
		settings = &GuildSettings{GuildID: guildID, WelcomeMessage: defaultWelcomeMessage}
		s.settings[guildID] = settings
		if err := s.persist(settingsFile, &s.settings); err != nil {
			return GuildSettings{}, err
		}
	}
	return *settings, nil
}

func (s *Store) UpdateGuildSettings(settings GuildSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.settings[settings.GuildID]
	if current == nil {
		current = &GuildSettings{}
		s.settings[settings.GuildID] = current
	}
	*current = settings
	return s.persist(settingsFile, &s.settings)
}
