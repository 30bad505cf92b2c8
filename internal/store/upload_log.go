package store

import (
	"database/sql"
	"fmt"
)

// Upload log statuses.
const (
	UploadProcessing = "processing"
	UploadApplied    = "applied"
	UploadRejected   = "rejected"
)

// UploadLog one uploaded file and its outcome
type UploadLog struct {
	ID           int64  `json:"id"`
	BatchID      string `json:"batchId"`
	Kind         string `json:"kind"`
	Filename     string `json:"filename"`
	LOB          string `json:"lob"`
	FiscalYear   string `json:"fiscalYear"`
	FileSize     int64  `json:"fileSize"`
	TotalRows    int    `json:"totalRows"`
	AppliedRows  int    `json:"appliedRows"`
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	CreatedAt    string `json:"createdAt"`
	CompletedAt  string `json:"completedAt,omitempty"`
}

// CreateUploadLog records an upload in processing state and returns its id.
func (s *Store) CreateUploadLog(batchID, kind, filename, lob, fiscalYear string, fileSize int64) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO upload_logs (batch_id, kind, filename, lob, fiscal_year, file_size, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, batchID, kind, filename, lob, fiscalYear, fileSize, UploadProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create upload log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get upload log id: %w", err)
	}
	return id, nil
}

// FinishUploadLog stores the outcome of an upload.
func (s *Store) FinishUploadLog(id int64, totalRows, appliedRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE upload_logs SET
			total_rows = ?,
			applied_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalRows, appliedRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update upload log: %w", err)
	}
	return nil
}

// ListUploadLogs most recent uploads first; limit <= 0 means 50.
func (s *Store) ListUploadLogs(limit int) ([]UploadLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, batch_id, kind, filename, lob, fiscal_year, file_size,
			total_rows, applied_rows, status, error_message,
			COALESCE(created_at, ''), COALESCE(completed_at, '')
		FROM upload_logs ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query upload logs failed: %w", err)
	}
	defer rows.Close()

	out := []UploadLog{}
	for rows.Next() {
		var l UploadLog
		var created, completed sql.NullString
		if err := rows.Scan(&l.ID, &l.BatchID, &l.Kind, &l.Filename, &l.LOB, &l.FiscalYear, &l.FileSize,
			&l.TotalRows, &l.AppliedRows, &l.Status, &l.ErrorMessage, &created, &completed); err != nil {
			return nil, fmt.Errorf("scan upload logs failed: %w", err)
		}
		l.CreatedAt = created.String
		l.CompletedAt = completed.String
		out = append(out, l)
	}
	return out, rows.Err()
}
