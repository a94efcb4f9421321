package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"concord-community/internal/autoreply"

	"go.uber.org/zap"
)

const (
	economyFile      = "economy.json"
	ranksFile        = "ranks.json"
	ticketsFile      = "tickets.json"
	settingsFile     = "settings.json"
	moderationFile   = "moderation.json"
	verificationFile = "verification.json"
	giveawaysFile    = "giveaways.json"
	repliesFile      = "auto-replies.json"
)

// Store keeps one JSON document per domain under dir. Every document is
// loaded in full at Open and rewritten in full after each mutation. A file
// that fails to parse is overwritten with its default shape.
type Store struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex

	economy      map[string]map[string]*Account
	ranks        map[string]map[string]*RankRecord
	tickets      map[string][]*Ticket
	settings     map[string]*GuildSettings
	moderation   *moderationDoc
	verification *verificationDoc
	giveaways    map[string][]*Giveaway
	replies      map[string][]*autoreply.Rule
}

type moderationDoc struct {
	Warnings map[string]map[string][]Warning `json:"warnings"`
	Mutes    map[string]map[string]*Mute    `json:"mutes"`
	Logs     map[string][]LogEntry          `json:"logs"`
}

type verificationDoc struct {
	Verified  map[string]map[string]bool `json:"verified"`
	Blacklist map[string]map[string]bool `json:"blacklist"`
}

func Open(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &Store{dir: dir, logger: logger}

	s.economy = make(map[string]map[string]*Account)
	if err := s.loadDocument(economyFile, &s.economy, func() {
		s.economy = make(map[string]map[string]*Account)
	}); err != nil {
		return nil, err
	}

	s.ranks = make(map[string]map[string]*RankRecord)
	if err := s.loadDocument(ranksFile, &s.ranks, func() {
		s.ranks = make(map[string]map[string]*RankRecord)
	}); err != nil {
		return nil, err
	}

	s.tickets = make(map[string][]*Ticket)
	if err := s.loadDocument(ticketsFile, &s.tickets, func() {
		s.tickets = make(map[string][]*Ticket)
	}); err != nil {
		return nil, err
	}

	s.settings = make(map[string]*GuildSettings)
	if err := s.loadDocument(settingsFile, &s.settings, func() {
		s.settings = make(map[string]*GuildSettings)
	}); err != nil {
		return nil, err
	}

	s.moderation = defaultModerationDoc()
	if err := s.loadDocument(moderationFile, &s.moderation, func() {
		s.moderation = defaultModerationDoc()
	}); err != nil {
		return nil, err
	}
	patchModerationDoc(s.moderation)

	s.verification = defaultVerificationDoc()
	if err := s.loadDocument(verificationFile, &s.verification, func() {
		s.verification = defaultVerificationDoc()
	}); err != nil {
		return nil, err
	}
	patchVerificationDoc(s.verification)

	s.giveaways = make(map[string][]*Giveaway)
	if err := s.loadDocument(giveawaysFile, &s.giveaways, func() {
		s.giveaways = make(map[string][]*Giveaway)
	}); err != nil {
		return nil, err
	}

	s.replies = make(map[string][]*autoreply.Rule)
	if err := s.loadDocument(repliesFile, &s.replies, func() {
		s.replies = make(map[string][]*autoreply.Rule)
	}); err != nil {
		return nil, err
	}

	return s, nil
}

func defaultModerationDoc() *moderationDoc {
	return &moderationDoc{
		Warnings: make(map[string]map[string][]Warning),
		Mutes:    make(map[string]map[string]*Mute),
		Logs:     make(map[string][]LogEntry),
	}
}

// patchModerationDoc fills sub-maps absent from documents written by
// earlier default shapes, once at load time instead of at every access.
func patchModerationDoc(doc *moderationDoc) {
	if doc.Warnings == nil {
		doc.Warnings = make(map[string]map[string][]Warning)
	}
	if doc.Mutes == nil {
		doc.Mutes = make(map[string]map[string]*Mute)
	}
	if doc.Logs == nil {
		doc.Logs = make(map[string][]LogEntry)
	}
}

func defaultVerificationDoc() *verificationDoc {
	return &verificationDoc{
		Verified:  make(map[string]map[string]bool),
		Blacklist: make(map[string]map[string]bool),
	}
}

func patchVerificationDoc(doc *verificationDoc) {
	if doc.Verified == nil {
		doc.Verified = make(map[string]map[string]bool)
	}
	if doc.Blacklist == nil {
		doc.Blacklist = make(map[string]map[string]bool)
	}
}

// loadDocument reads name into doc. A missing file is created with the
// default shape already held by doc. A corrupt file is logged, overwritten
// with the default shape, and its prior contents are discarded.
func (s *Store) loadDocument(name string, doc any, reset func()) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s.persist(name, doc)
		}
		return err
	}
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Error("document corrupt, resetting to defaults", zap.String("file", name), zap.Error(err))
		reset()
		return s.persist(name, doc)
	}
	return nil
}

func (s *Store) persist(name string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}
