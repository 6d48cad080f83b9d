package engine

import (
	"sort"

	"community-bot-backend/internal/models"
)

// Leaderboard ranks all records by the chosen metric, descending, truncated
// to limit (the configured default when limit <= 0). Ties keep record
// creation order. The store is only read; nothing is mutated or persisted.
func (e *Engine) Leaderboard(requesterID string, metric models.Metric, limit int) ([]models.LeaderboardEntry, error) {
	if err := e.admit(requesterID, e.cfg.LeaderboardCooldown); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = e.cfg.LeaderboardLimit
	}

	entries := make([]models.LeaderboardEntry, 0, e.store.Len())
	e.store.Range(func(rec *models.UserRecord) bool {
		entries = append(entries, models.LeaderboardEntry{
			ID:    rec.ID,
			Value: metricValue(rec, metric),
		})
		return true
	})

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func metricValue(rec *models.UserRecord, metric models.Metric) int64 {
	switch metric {
	case models.MetricLevel:
		return int64(rec.Level)
	case models.MetricOnline:
		// Folded seconds only; an in-progress session is not projected so
		// repeated rankings stay consistent without mutating anything.
		return rec.TotalOnline
	default:
		return rec.Money
	}
}
