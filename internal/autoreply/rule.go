package autoreply

import "time"

type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchContains   MatchType = "contains"
	MatchStartsWith MatchType = "startswith"
	MatchEndsWith   MatchType = "endswith"
	MatchRegex      MatchType = "regex"
)

func ValidMatchType(value string) bool {
	switch MatchType(value) {
	case MatchExact, MatchContains, MatchStartsWith, MatchEndsWith, MatchRegex:
		return true
	}
	return false
}

// Rule is one configured auto-reply trigger. Empty channel and role lists
// mean "unrestricted", never "blocks everything". A Chance of 100 or more
// always passes the probability draw; a CooldownSeconds of 0 never throttles.
type Rule struct {
	ID               string    `json:"id"`
	GuildID          string    `json:"guildId"`
	Trigger          string    `json:"trigger"`
	Response         string    `json:"response"`
	MatchType        MatchType `json:"matchType"`
	CaseSensitive    bool      `json:"caseSensitive"`
	Chance           int       `json:"chance"`
	CooldownSeconds  int       `json:"cooldownSeconds"`
	LastUsed         time.Time `json:"lastUsed"`
	UseCount         int       `json:"useCount"`
	Enabled          bool      `json:"enabled"`
	AllowedChannels  []string  `json:"allowedChannels"`
	ExcludedChannels []string  `json:"excludedChannels"`
	AllowedRoles     []string  `json:"allowedRoles"`
	ExcludedRoles    []string  `json:"excludedRoles"`
	DeleteTrigger    bool      `json:"deleteTrigger"`
	ReplyInDM        bool      `json:"replyInDM"`
}

func (r Rule) Cooldown() time.Duration {
	return time.Duration(r.CooldownSeconds) * time.Second
}

// Patch carries a partial edit; nil fields are left untouched.
type Patch struct {
	Trigger          *string
	Response         *string
	MatchType        *MatchType
	CaseSensitive    *bool
	Chance           *int
	CooldownSeconds  *int
	Enabled          *bool
	AllowedChannels  *[]string
	ExcludedChannels *[]string
	AllowedRoles     *[]string
	ExcludedRoles    *[]string
	DeleteTrigger    *bool
	ReplyInDM        *bool
}

func (r *Rule) Apply(patch Patch) {
	if patch.Trigger != nil {
		r.Trigger = *patch.Trigger
	}
	if patch.Response != nil {
		r.Response = *patch.Response
	}
	if patch.MatchType != nil {
		r.MatchType = *patch.MatchType
	}
	if patch.CaseSensitive != nil {
		r.CaseSensitive = *patch.CaseSensitive
	}
	if patch.Chance != nil {
		r.Chance = *patch.Chance
	}
	if patch.CooldownSeconds != nil {
		r.CooldownSeconds = *patch.CooldownSeconds
	}
	if patch.Enabled != nil {
		r.Enabled = *patch.Enabled
	}
	if patch.AllowedChannels != nil {
		r.AllowedChannels = *patch.AllowedChannels
	}
	if patch.ExcludedChannels != nil {
		r.ExcludedChannels = *patch.ExcludedChannels
	}
	if patch.AllowedRoles != nil {
		r.AllowedRoles = *patch.AllowedRoles
	}
	if patch.ExcludedRoles != nil {
		r.ExcludedRoles = *patch.ExcludedRoles
	}
	if patch.DeleteTrigger != nil {
		r.DeleteTrigger = *patch.DeleteTrigger
	}
	if patch.ReplyInDM != nil {
		r.ReplyInDM = *patch.ReplyInDM
	}
}
