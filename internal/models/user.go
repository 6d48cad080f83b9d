package models

import "time"

// UserRecord is the full progression state kept for one user. Records are
// created lazily on first reference and are never deleted. Serialization is
// handled by the snapshot codec in internal/store, so no tags here.
type UserRecord struct {
	ID        string
	Money     int64
	Level     int
	Exp       int64
	Inventory []string

	// LastDaily gates the daily reward: nil means never claimed.
	LastDaily *time.Time

	Status string

	// TotalOnline accumulates folded session time in whole seconds.
	// LastOnline is non-nil while a session is in progress.
	TotalOnline int64
	LastOnline  *time.Time

	JoinedAt     time.Time
	CommandUsage int64
}

func NewUserRecord(id string, now time.Time) *UserRecord {
	return &UserRecord{
		ID:        id,
		Level:     1,
		Inventory: []string{},
		JoinedAt:  now,
	}
}

// Online reports whether a session is currently in progress.
func (r *UserRecord) Online() bool {
	return r.LastOnline != nil
}
