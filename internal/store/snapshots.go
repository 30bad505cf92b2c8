package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

// SnapshotInfo listing entry of a saved snapshot
type SnapshotInfo struct {
	LOB          string    `json:"lob"`
	FiscalYear   string    `json:"fiscalYear"`
	Combinations int       `json:"combinations"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SnapshotRecord raw stored row, used by backups
type SnapshotRecord struct {
	LOB        string          `json:"lob"`
	FiscalYear string          `json:"fiscalYear"`
	Data       json.RawMessage `json:"data"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt"`
}

// SaveSnapshot upserts the snapshot of (lob, fiscal year), replacing it wholesale.
func (s *Store) SaveSnapshot(snap *model.Snapshot) (SnapshotInfo, error) {
	if snap == nil || snap.LOB == "" || snap.FiscalYear == "" {
		return SnapshotInfo{}, model.Invalid("snapshot needs lob and fiscalYear")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	now := s.timestamp()
	_, err = s.db.Exec(`
		INSERT INTO lob_snapshots (lob, fiscal_year, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(lob, fiscal_year) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(snap.LOB), snap.FiscalYear, string(data), now, now)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return SnapshotInfo{
		LOB:          string(snap.LOB),
		FiscalYear:   snap.FiscalYear,
		Combinations: len(snap.Combos),
		UpdatedAt:    parseTime(now),
	}, nil
}

// LoadSnapshot snapshot of lob for fiscalYear, or the most recently saved one when
// fiscalYear is empty. Legacy rate keys are migrated on the way out.
func (s *Store) LoadSnapshot(lob, fiscalYear string) (*model.Snapshot, error) {
	var row *sql.Row
	if fiscalYear == "" {
		row = s.db.QueryRow(`
			SELECT data FROM lob_snapshots WHERE lob = ?
			ORDER BY updated_at DESC, id DESC LIMIT 1
		`, lob)
	} else {
		row = s.db.QueryRow("SELECT data FROM lob_snapshots WHERE lob = ? AND fiscal_year = ?", lob, fiscalYear)
	}

	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %s %s: %w", lob, fiscalYear, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	snap := &model.Snapshot{}
	if err := json.Unmarshal([]byte(data), snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	snap.EnsureMaps()
	snap.NormalizeRateKeys()
	return snap, nil
}

// ListSnapshots every saved snapshot, newest first.
func (s *Store) ListSnapshots() ([]SnapshotInfo, error) {
	rows, err := s.db.Query(`
		SELECT lob, fiscal_year, COALESCE(json_array_length(data, '$.combos'), 0), updated_at
		FROM lob_snapshots
		ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots failed: %w", err)
	}
	defer rows.Close()

	out := []SnapshotInfo{}
	for rows.Next() {
		var it SnapshotInfo
		var updated string
		if err := rows.Scan(&it.LOB, &it.FiscalYear, &it.Combinations, &updated); err != nil {
			return nil, fmt.Errorf("scan snapshots failed: %w", err)
		}
		it.UpdatedAt = parseTime(updated)
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots failed: %w", err)
	}
	return out, nil
}

// DeleteSnapshot removes one snapshot; ErrNotFound when absent.
func (s *Store) DeleteSnapshot(lob, fiscalYear string) error {
	res, err := s.db.Exec("DELETE FROM lob_snapshots WHERE lob = ? AND fiscal_year = ?", lob, fiscalYear)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("snapshot %s %s: %w", lob, fiscalYear, ErrNotFound)
	}
	return nil
}

// SnapshotRecords every stored row as-is.
func (s *Store) SnapshotRecords() ([]SnapshotRecord, error) {
	rows, err := s.db.Query(`
		SELECT lob, fiscal_year, data, created_at, updated_at
		FROM lob_snapshots ORDER BY lob, fiscal_year
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot records failed: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var r SnapshotRecord
		var data string
		if err := rows.Scan(&r.LOB, &r.FiscalYear, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot records failed: %w", err)
		}
		r.Data = json.RawMessage(data)
		out = append(out, r)
	}
	return out, rows.Err()
}

// RestoreSnapshots replaces every stored snapshot with records in one transaction.
func (s *Store) RestoreSnapshots(records []SnapshotRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM lob_snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO lob_snapshots (lob, fiscal_year, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if !json.Valid(r.Data) {
			return fmt.Errorf("snapshot %s %s: invalid data", r.LOB, r.FiscalYear)
		}
		if _, err := stmt.Exec(r.LOB, r.FiscalYear, string(r.Data), r.CreatedAt, r.UpdatedAt); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
