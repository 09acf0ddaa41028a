package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"photodoc/internal/store"
)

const DefaultDaysToKeep = 90

// Manager deletes photo records past their retention window. It does not
// schedule itself; the jobs package (or any external cron) invokes Cleanup.
type Manager struct {
	store *store.Store
	log   zerolog.Logger
}

func NewManager(st *store.Store, log zerolog.Logger) *Manager {
	return &Manager{store: st, log: log}
}

// Cleanup removes every photo captured before now minus daysToKeep and
// returns the count removed. Deletion cascades through galleries.
func (m *Manager) Cleanup(ctx context.Context, daysToKeep int) int {
	if daysToKeep < 0 {
		daysToKeep = DefaultDaysToKeep
	}
	cutoff := time.Now().AddDate(0, 0, -daysToKeep)

	removed := 0
	for _, p := range m.store.Photos() {
		if p.Metadata.CapturedAt.Before(cutoff) {
			if m.store.DeletePhoto(ctx, p.ID) {
				removed++
			}
		}
	}

	if removed > 0 {
		m.log.Info().Int("removed", removed).Int("days_to_keep", daysToKeep).Msg("retention cleanup complete")
	}
	return removed
}
