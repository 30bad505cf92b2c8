// Package backup writes scheduled, snappy-compressed dumps of every saved
// snapshot and restores them.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

const (
	filePrefix = "snapshots-"
	fileSuffix = ".json.sz"
	version    = 1
)

// ErrInvalidName backup name is not a file this package wrote
var ErrInvalidName = errors.New("invalid backup name")

// Source snapshot rows to dump and restore
type Source interface {
	SnapshotRecords() ([]store.SnapshotRecord, error)
	RestoreSnapshots(records []store.SnapshotRecord) error
}

// Info one backup file
type Info struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

type archive struct {
	Version   int                    `json:"version"`
	CreatedAt time.Time              `json:"createdAt"`
	Snapshots []store.SnapshotRecord `json:"snapshots"`
}

// Scheduler periodic snapshot backups
type Scheduler struct {
	src       Source
	dir       string
	retention int
	cron      *cron.Cron
	now       func() time.Time

	mu sync.Mutex // one backup or restore at a time
}

// NewScheduler backups go to dir; only the newest retention files are kept (0 keeps all).
func NewScheduler(src Source, dir string, retention int) *Scheduler {
	return &Scheduler{
		src:       src,
		dir:       dir,
		retention: retention,
		cron:      cron.New(),
		now:       time.Now,
	}
}

// Start runs a backup on the given standard 5-field cron schedule.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = "0 2 * * *"
	}
	_, err := s.cron.AddFunc(schedule, func() {
		if _, err := s.RunNow(); err != nil {
			log.Error().Err(err).Msg("scheduled backup failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid backup schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	log.Info().Str("schedule", schedule).Str("dir", s.dir).Msg("backup scheduler started")
	return nil
}

// Stop stops the scheduler and waits for a running backup.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("backup scheduler stopped")
}

// RunNow writes a backup immediately and prunes old ones.
func (s *Scheduler) RunNow() (Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.src.SnapshotRecords()
	if err != nil {
		return Info{}, fmt.Errorf("failed to read snapshots: %w", err)
	}
	now := s.now().UTC()
	data, err := json.Marshal(archive{Version: version, CreatedAt: now, Snapshots: records})
	if err != nil {
		return Info{}, err
	}
	compressed := snappy.Encode(nil, data)

	name := fmt.Sprintf("%s%s-%03d%s", filePrefix, now.Format("20060102-150405"), now.Nanosecond()/int(time.Millisecond), fileSuffix)
	if err := writeFileAtomic(filepath.Join(s.dir, name), compressed); err != nil {
		return Info{}, fmt.Errorf("failed to write backup: %w", err)
	}
	if err := s.pruneLocked(); err != nil {
		log.Warn().Err(err).Msg("failed to prune old backups")
	}

	log.Info().Str("name", name).Int("snapshots", len(records)).Int("bytes", len(compressed)).Msg("backup written")
	return Info{Name: name, Size: int64(len(compressed)), CreatedAt: now}, nil
}

// List backups, newest first.
func (s *Scheduler) List() ([]Info, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := []Info{}
	for _, e := range entries {
		if e.IsDir() || !isBackupName(e.Name()) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, Info{Name: e.Name(), Size: fi.Size(), CreatedAt: fi.ModTime().UTC()})
	}
	// names embed the timestamp, so name order is age order
	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })
	return out, nil
}

// Restore replaces saved snapshots with those in the named backup and returns how many were restored.
func (s *Scheduler) Restore(name string) (int, error) {
	if !isBackupName(name) || filepath.Base(name) != name {
		return 0, fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return 0, err
	}
	data, err := snappy.Decode(nil, raw)
	if err != nil {
		return 0, fmt.Errorf("failed to decompress backup: %w", err)
	}
	var a archive
	if err := json.Unmarshal(data, &a); err != nil {
		return 0, fmt.Errorf("failed to decode backup: %w", err)
	}
	if a.Version != version {
		return 0, fmt.Errorf("unsupported backup version %d", a.Version)
	}
	if err := s.src.RestoreSnapshots(a.Snapshots); err != nil {
		return 0, err
	}
	log.Info().Str("name", name).Int("snapshots", len(a.Snapshots)).Msg("backup restored")
	return len(a.Snapshots), nil
}

func (s *Scheduler) pruneLocked() error {
	if s.retention <= 0 {
		return nil
	}
	list, err := s.List()
	if err != nil {
		return err
	}
	for _, old := range list[min(len(list), s.retention):] {
		if err := os.Remove(filepath.Join(s.dir, old.Name)); err != nil {
			return err
		}
	}
	return nil
}

func isBackupName(name string) bool {
	return strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileSuffix)
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
