package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"community-bot-backend/internal/models"
	"community-bot-backend/internal/store"
)

func testPaths(t *testing.T) store.SnapshotPaths {
	t.Helper()
	dir := t.TempDir()
	return store.SnapshotPaths{
		File:          filepath.Join(dir, "user_data.json"),
		Backup:        filepath.Join(dir, "user_data_backup.json"),
		QuarantineDir: dir,
	}
}

func openStore(t *testing.T, paths store.SnapshotPaths) *store.Store {
	t.Helper()
	s, err := store.Open(paths, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	return s
}

func TestLazyCreationIsIdempotent(t *testing.T) {
	s := openStore(t, testPaths(t))

	var first, second *models.UserRecord
	s.Update("u1", func(rec *models.UserRecord) error {
		rec.Money = 42
		first = rec
		return nil
	})
	s.Update("u1", func(rec *models.UserRecord) error {
		second = rec
		return nil
	})

	if first != second {
		t.Error("second access should return the same record")
	}
	if second.Money != 42 {
		t.Errorf("expected money 42, got %d", second.Money)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 record, got %d", s.Len())
	}
}

func TestNewRecordDefaults(t *testing.T) {
	s := openStore(t, testPaths(t))

	s.View("fresh", func(rec *models.UserRecord) {
		if rec.Money != 0 || rec.Exp != 0 || rec.TotalOnline != 0 || rec.CommandUsage != 0 {
			t.Error("counters should start at zero")
		}
		if rec.Level != 1 {
			t.Errorf("level should start at 1, got %d", rec.Level)
		}
		if rec.LastDaily != nil || rec.LastOnline != nil {
			t.Error("optional timestamps should start nil")
		}
		if len(rec.Inventory) != 0 {
			t.Error("inventory should start empty")
		}
		if rec.JoinedAt.IsZero() {
			t.Error("join time should be set")
		}
	})
}

func TestRoundTrip(t *testing.T) {
	paths := testPaths(t)
	s := openStore(t, paths)

	daily := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	online := time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)

	err := s.Update("u1", func(rec *models.UserRecord) error {
		rec.Money = 310
		rec.Level = 2
		rec.Exp = 15
		rec.Inventory = append(rec.Inventory, "Bread", "Small Gem")
		rec.LastDaily = &daily
		rec.Status = "taken"
		rec.TotalOnline = 125
		rec.LastOnline = &online
		rec.CommandUsage = 7
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	s.Update("u2", func(rec *models.UserRecord) error { return nil })

	reopened := openStore(t, paths)
	if reopened.Len() != 2 {
		t.Fatalf("expected 2 records after reload, got %d", reopened.Len())
	}

	reopened.View("u1", func(rec *models.UserRecord) {
		if rec.Money != 310 || rec.Level != 2 || rec.Exp != 15 {
			t.Errorf("progression fields lost: %+v", rec)
		}
		if len(rec.Inventory) != 2 || rec.Inventory[0] != "Bread" || rec.Inventory[1] != "Small Gem" {
			t.Errorf("inventory order lost: %v", rec.Inventory)
		}
		if rec.LastDaily == nil || !rec.LastDaily.Equal(daily) {
			t.Errorf("last daily lost: %v", rec.LastDaily)
		}
		if rec.LastOnline == nil || !rec.LastOnline.Equal(online) {
			t.Errorf("last online lost: %v", rec.LastOnline)
		}
		if rec.Status != "taken" || rec.TotalOnline != 125 || rec.CommandUsage != 7 {
			t.Errorf("fields lost: %+v", rec)
		}
	})
}

func TestCorruptSnapshotQuarantined(t *testing.T) {
	paths := testPaths(t)
	garbage := []byte("{ not json at all")
	if err := os.WriteFile(paths.File, garbage, 0o644); err != nil {
		t.Fatal(err)
	}

	s := openStore(t, paths)
	if s.Len() != 0 {
		t.Errorf("corrupt snapshot should yield an empty store, got %d records", s.Len())
	}

	if _, err := os.Stat(paths.File); !os.IsNotExist(err) {
		t.Error("corrupt snapshot should have been moved away")
	}

	matches, err := filepath.Glob(filepath.Join(paths.QuarantineDir, "user_data_corrupt_*.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected exactly one quarantine file, got %v (%v)", matches, err)
	}
	moved, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(moved) != string(garbage) {
		t.Error("quarantine file should preserve the original bytes")
	}
}

func TestBackupRotation(t *testing.T) {
	paths := testPaths(t)
	s := openStore(t, paths)

	s.Update("u1", func(rec *models.UserRecord) error {
		rec.Money = 100
		return nil
	})
	firstSnapshot, err := os.ReadFile(paths.File)
	if err != nil {
		t.Fatal(err)
	}

	s.Update("u1", func(rec *models.UserRecord) error {
		rec.Money = 200
		return nil
	})

	backup, err := os.ReadFile(paths.Backup)
	if err != nil {
		t.Fatalf("backup should exist after second save: %v", err)
	}
	if string(backup) != string(firstSnapshot) {
		t.Error("backup should hold the previous snapshot")
	}
}

func TestMalformedTimestampDroppedFieldwise(t *testing.T) {
	paths := testPaths(t)
	snapshot := `{
  "u1": {
    "money": 75,
    "level": 3,
    "exp": 10,
    "inventory": ["Bread"],
    "last_online": "definitely-not-a-time",
    "join_date": "2025-01-01T00:00:00Z",
    "total_online": 500,
    "command_usage": 4
  }
}`
	if err := os.WriteFile(paths.File, []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}

	s := openStore(t, paths)
	if s.Len() != 1 {
		t.Fatalf("a malformed timestamp must not fail the load, got %d records", s.Len())
	}
	s.View("u1", func(rec *models.UserRecord) {
		if rec.LastOnline != nil {
			t.Error("malformed last_online should be treated as no session in progress")
		}
		if rec.Money != 75 || rec.TotalOnline != 500 {
			t.Errorf("other fields should survive: %+v", rec)
		}
	})
}

func TestFailedValidationDoesNotPersist(t *testing.T) {
	paths := testPaths(t)
	s := openStore(t, paths)

	s.Update("u1", func(rec *models.UserRecord) error {
		rec.Money = 10
		return nil
	})

	wantErr := os.ErrInvalid
	if err := s.Update("u1", func(rec *models.UserRecord) error {
		return wantErr
	}); err != wantErr {
		t.Fatalf("fn error should be returned as-is, got %v", err)
	}

	reopened := openStore(t, paths)
	reopened.View("u1", func(rec *models.UserRecord) {
		if rec.Money != 10 {
			t.Errorf("failed update should not have persisted anything, money = %d", rec.Money)
		}
	})
}

func TestWriteThroughFailureKeepsMemoryAuthoritative(t *testing.T) {
	dir := t.TempDir()
	snapDir := filepath.Join(dir, "snap")
	paths := store.SnapshotPaths{
		File:          filepath.Join(snapDir, "user_data.json"),
		Backup:        filepath.Join(snapDir, "user_data_backup.json"),
		QuarantineDir: dir,
	}
	s := openStore(t, paths)

	// Replace the snapshot directory with a plain file so every save fails.
	if err := os.RemoveAll(snapDir); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(snapDir, []byte("in the way"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Update("u1", func(rec *models.UserRecord) error {
		rec.Money = 99
		return nil
	}); err != nil {
		t.Fatalf("a failed write-through must not fail the mutation: %v", err)
	}
	s.View("u1", func(rec *models.UserRecord) {
		if rec.Money != 99 {
			t.Errorf("in-memory state should remain authoritative, money = %d", rec.Money)
		}
	})

	var persistence *store.PersistenceError
	if err := s.Flush(); !errors.As(err, &persistence) {
		t.Fatalf("explicit flush should surface the write failure, got %v", err)
	}

	// Once the path is usable again the state reaches disk intact.
	if err := os.Remove(snapDir); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(); err != nil {
		t.Fatalf("flush after recovery failed: %v", err)
	}
	reopened := openStore(t, paths)
	reopened.View("u1", func(rec *models.UserRecord) {
		if rec.Money != 99 {
			t.Errorf("recovered flush lost the mutation, money = %d", rec.Money)
		}
	})
}

func TestRangeFollowsCreationOrder(t *testing.T) {
	s := openStore(t, testPaths(t))
	for _, id := range []string{"c", "a", "b"} {
		s.Update(id, func(rec *models.UserRecord) error { return nil })
	}

	var got []string
	s.Range(func(rec *models.UserRecord) bool {
		got = append(got, rec.ID)
		return true
	})

	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected creation order %v, got %v", want, got)
		}
	}
}
