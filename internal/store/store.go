package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"community-bot-backend/internal/models"
)

// Store owns the in-memory user records. It is the single source of truth
// while the process runs; every successful mutation is written through to
// the snapshot file. All record access goes through Update/View/Range so a
// read-modify-write cycle is never interleaved with another mutation.
type Store struct {
	mu      sync.RWMutex
	records map[string]*models.UserRecord
	// order tracks record creation order; map iteration is randomized and
	// the leaderboard needs a stable tie-break.
	order []string

	snapshot *snapshotFile
	logger   *zap.Logger
	now      func() time.Time
}

// Open loads the snapshot at paths.File, or starts empty when none exists.
// An unreadable snapshot is quarantined and the store starts empty; Open
// only fails when the snapshot directory cannot be created.
func Open(paths SnapshotPaths, logger *zap.Logger) (*Store, error) {
	s := &Store{
		records:  make(map[string]*models.UserRecord),
		snapshot: newSnapshotFile(paths, logger),
		logger:   logger,
		now:      time.Now,
	}
	if err := s.snapshot.ensureDirs(); err != nil {
		return nil, err
	}

	records, err := s.snapshot.load()
	if err != nil {
		// load already quarantined the bad file and logged the cause.
		records = nil
	}
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	s.order = loadOrder(records)

	logger.Info("user store opened",
		zap.String("path", paths.File),
		zap.Int("users", len(s.records)))
	return s, nil
}

// Update runs fn against the record for id, creating it with defaults on
// first reference. If fn returns nil the whole store is written through to
// disk; a persistence failure is logged and swallowed so the mutation that
// triggered it still succeeds. If fn returns an error nothing is persisted
// and the error is returned as-is; fn must not mutate before validating.
func (s *Store) Update(id string, fn func(rec *models.UserRecord) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.getOrCreateLocked(id)
	if err := fn(rec); err != nil {
		return err
	}

	if err := s.snapshot.save(s.records); err != nil {
		s.logger.Error("snapshot write-through failed, in-memory state remains authoritative",
			zap.String("user", id), zap.Error(err))
	}
	return nil
}

// View runs fn against the record for id without persisting afterwards.
// The record is still created on first reference; fn must not mutate.
func (s *Store) View(id string, fn func(rec *models.UserRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.getOrCreateLocked(id))
}

// Range calls fn for every record in creation order, under a shared lock.
// fn must not mutate and must not call back into the store.
func (s *Store) Range(fn func(rec *models.UserRecord) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if !fn(s.records[id]) {
			return
		}
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Flush forces a snapshot write. Used on shutdown so lazily created records
// and folded session time reach disk even if the last write-through failed.
func (s *Store) Flush() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.snapshot.save(s.records); err != nil {
		return &PersistenceError{Cause: err}
	}
	return nil
}

func (s *Store) getOrCreateLocked(id string) *models.UserRecord {
	if rec, ok := s.records[id]; ok {
		return rec
	}
	rec := models.NewUserRecord(id, s.now())
	s.records[id] = rec
	s.order = append(s.order, id)
	s.logger.Info("created new user record", zap.String("user", id))
	return rec
}
