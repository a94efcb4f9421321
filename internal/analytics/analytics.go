package analytics

import (
	"time"

	"concord-community/internal/storage"
)

type Service struct {
	store *storage.Store
}

func New(store *storage.Store) *Service {
	return &Service{store: store}
}

type Report struct {
	Total   int
	ByLevel map[string]int
	ByEvent map[string]int
}

func (s *Service) Report(guildID string, since time.Time) Report {
	report := Report{ByLevel: make(map[string]int), ByEvent: make(map[string]int)}
	for _, entry := range s.store.Logs(guildID, since) {
		report.Total++
		report.ByLevel[entry.Level]++
		report.ByEvent[entry.Event]++
	}
	return report
}
