package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"community-bot-backend/internal/models"
)

// SnapshotPaths configures where the durable state lives: the primary
// snapshot, a single rolling backup, and the directory that receives
// quarantined copies of unreadable snapshots.
type SnapshotPaths struct {
	File          string
	Backup        string
	QuarantineDir string
}

// userSnapshot is the on-disk shape of one record. Timestamps are RFC3339
// strings so a malformed value can be dropped field-wise instead of failing
// the whole load.
type userSnapshot struct {
	Money        int64    `json:"money"`
	Level        int      `json:"level"`
	Exp          int64    `json:"exp"`
	Inventory    []string `json:"inventory"`
	LastDaily    string   `json:"last_daily,omitempty"`
	Status       string   `json:"status,omitempty"`
	TotalOnline  int64    `json:"total_online"`
	LastOnline   string   `json:"last_online,omitempty"`
	JoinDate     string   `json:"join_date"`
	CommandUsage int64    `json:"command_usage"`
}

type snapshotFile struct {
	paths  SnapshotPaths
	logger *zap.Logger
}

func newSnapshotFile(paths SnapshotPaths, logger *zap.Logger) *snapshotFile {
	return &snapshotFile{paths: paths, logger: logger}
}

func (f *snapshotFile) ensureDirs() error {
	for _, dir := range []string{filepath.Dir(f.paths.File), filepath.Dir(f.paths.Backup), f.paths.QuarantineDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir %s: %w", dir, err)
		}
	}
	return nil
}

// load reads the primary snapshot. A missing file yields an empty result; a
// file that cannot be read or parsed is moved to the quarantine directory
// and an empty result is returned with the error for logging only.
func (f *snapshotFile) load() ([]*models.UserRecord, error) {
	data, err := os.ReadFile(f.paths.File)
	if os.IsNotExist(err) {
		f.logger.Info("no snapshot found, starting fresh", zap.String("path", f.paths.File))
		return nil, nil
	}
	if err != nil {
		f.logger.Error("snapshot unreadable", zap.String("path", f.paths.File), zap.Error(err))
		return nil, &CorruptSnapshotError{QuarantinePath: f.quarantine(), Cause: err}
	}

	var raw map[string]userSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		f.logger.Error("snapshot corrupt", zap.String("path", f.paths.File), zap.Error(err))
		return nil, &CorruptSnapshotError{QuarantinePath: f.quarantine(), Cause: err}
	}

	records := make([]*models.UserRecord, 0, len(raw))
	for id, snap := range raw {
		records = append(records, f.decode(id, snap))
	}
	return records, nil
}

// save writes the full store. The current primary is first copied to the
// rolling backup, then the new snapshot is written to a temp file and
// renamed into place so a reader never observes a partial write.
func (f *snapshotFile) save(records map[string]*models.UserRecord) error {
	raw := make(map[string]userSnapshot, len(records))
	for id, rec := range records {
		raw[id] = encode(rec)
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if prev, err := os.ReadFile(f.paths.File); err == nil {
		if err := os.WriteFile(f.paths.Backup, prev, 0o644); err != nil {
			f.logger.Warn("backup rotation failed", zap.String("path", f.paths.Backup), zap.Error(err))
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.paths.File), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, f.paths.File); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// quarantine moves the bad snapshot aside under a unique name so it can be
// inspected later. Never deletes data. Returns the destination path, empty
// when the move itself failed.
func (f *snapshotFile) quarantine() string {
	name := fmt.Sprintf("user_data_corrupt_%d_%s.json",
		time.Now().Unix(), uuid.NewString()[:8])
	dest := filepath.Join(f.paths.QuarantineDir, name)
	if err := os.Rename(f.paths.File, dest); err != nil {
		f.logger.Error("failed to quarantine corrupt snapshot",
			zap.String("path", f.paths.File), zap.Error(err))
		return ""
	}
	f.logger.Warn("corrupt snapshot quarantined", zap.String("quarantine", dest))
	return dest
}

func encode(rec *models.UserRecord) userSnapshot {
	snap := userSnapshot{
		Money:        rec.Money,
		Level:        rec.Level,
		Exp:          rec.Exp,
		Inventory:    rec.Inventory,
		Status:       rec.Status,
		TotalOnline:  rec.TotalOnline,
		JoinDate:     rec.JoinedAt.UTC().Format(time.RFC3339Nano),
		CommandUsage: rec.CommandUsage,
	}
	if snap.Inventory == nil {
		snap.Inventory = []string{}
	}
	if rec.LastDaily != nil {
		snap.LastDaily = rec.LastDaily.UTC().Format(time.RFC3339Nano)
	}
	if rec.LastOnline != nil {
		snap.LastOnline = rec.LastOnline.UTC().Format(time.RFC3339Nano)
	}
	return snap
}

func (f *snapshotFile) decode(id string, snap userSnapshot) *models.UserRecord {
	rec := &models.UserRecord{
		ID:           id,
		Money:        max64(snap.Money, 0),
		Level:        snap.Level,
		Exp:          max64(snap.Exp, 0),
		Inventory:    snap.Inventory,
		Status:       snap.Status,
		TotalOnline:  max64(snap.TotalOnline, 0),
		CommandUsage: max64(snap.CommandUsage, 0),
	}
	if rec.Level < 1 {
		rec.Level = 1
	}
	if rec.Inventory == nil {
		rec.Inventory = []string{}
	}
	rec.LastDaily = f.parseTime(id, "last_daily", snap.LastDaily)
	rec.LastOnline = f.parseTime(id, "last_online", snap.LastOnline)
	if t := f.parseTime(id, "join_date", snap.JoinDate); t != nil {
		rec.JoinedAt = *t
	} else {
		rec.JoinedAt = time.Now().UTC()
	}
	return rec
}

// parseTime is lenient: a malformed timestamp is reported and dropped, it
// never fails the load.
func (f *snapshotFile) parseTime(id, field, value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		f.logger.Warn("ignoring malformed timestamp",
			zap.String("user", id), zap.String("field", field), zap.String("value", value))
		return nil
	}
	return &t
}

// loadOrder rebuilds the creation-order index for loaded records. The JSON
// object does not preserve order, so join time (then id) stands in for it.
func loadOrder(records []*models.UserRecord) []string {
	sorted := make([]*models.UserRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].JoinedAt.Equal(sorted[j].JoinedAt) {
			return sorted[i].JoinedAt.Before(sorted[j].JoinedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	order := make([]string, len(sorted))
	for i, rec := range sorted {
		order[i] = rec.ID
	}
	return order
}

func max64(v, floor int64) int64 {
	if v < floor {
		return floor
	}
	return v
}
