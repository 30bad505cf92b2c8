package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

const (
	keyCurrentFiscalYear = "current_fiscal_year"
	keyCurrentLOB        = "current_lob"
)

// GetConfig value of a config key; ErrNotFound when unset.
func (s *Store) GetConfig(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("config key %s: %w", key, ErrNotFound)
		}
		return "", err
	}
	return value, nil
}

// GetConfigFloat float config value
func (s *Store) GetConfigFloat(key string) (float64, error) {
	value, err := s.GetConfig(key)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(value, 64)
}

// SetConfig upserts a config key.
func (s *Store) SetConfig(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// SetConfigFloat stores a float config value.
func (s *Store) SetConfigFloat(key string, value float64) error {
	return s.SetConfig(key, strconv.FormatFloat(value, 'f', -1, 64))
}

// GetAllConfig every config key
func (s *Store) GetAllConfig() (map[string]string, error) {
	rows, err := s.db.Query("SELECT key, value FROM config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	config := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		config[key] = value
	}

	return config, rows.Err()
}

// GetCurrentSelection fiscal year and LOB locked by the last session.
func (s *Store) GetCurrentSelection() (fiscalYear, lob string, err error) {
	fiscalYear, err = s.GetConfig(keyCurrentFiscalYear)
	if err != nil {
		return "", "", fmt.Errorf("failed to get current fiscal year: %w", err)
	}

	lob, err = s.GetConfig(keyCurrentLOB)
	if err != nil {
		return "", "", fmt.Errorf("failed to get current lob: %w", err)
	}

	return fiscalYear, lob, nil
}

// SetCurrentSelection remembers the locked fiscal year and LOB.
func (s *Store) SetCurrentSelection(fiscalYear, lob string) error {
	if err := s.SetConfig(keyCurrentFiscalYear, fiscalYear); err != nil {
		return err
	}
	return s.SetConfig(keyCurrentLOB, lob)
}
