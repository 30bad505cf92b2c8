package store

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	base := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return s
}

func sampleSnapshot(fy string) *model.Snapshot {
	c := model.NewCombination(map[string]string{"customer": "Airtel", "circle": "SOBO", "type": "RFAI"})
	c.Volumes[fy] = fiscal.Constant(3)
	return &model.Snapshot{
		FiscalYear:   fy,
		LOB:          model.LOBFTTH,
		Combos:       []model.Combination{c},
		Rates:        model.Rates{c.Key(): {RecurringRate: 10}},
		IncludeFresh: true,
		ProvisionPct: 1.5,
	}
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	s := newTestStore(t)

	info, err := s.SaveSnapshot(sampleSnapshot("FY25-26"))
	require.NoError(t, err)
	assert.Equal(t, "FTTH", info.LOB)
	assert.Equal(t, 1, info.Combinations)

	got, err := s.LoadSnapshot("FTTH", "FY25-26")
	require.NoError(t, err)
	assert.Equal(t, "FY25-26", got.FiscalYear)
	assert.Equal(t, 1.5, got.ProvisionPct)
	require.Len(t, got.Combos, 1)
	assert.Equal(t, fiscal.Constant(3), got.Combos[0].Volumes["FY25-26"])
	assert.NotNil(t, got.OpexRates)
}

func TestSaveSnapshotUpserts(t *testing.T) {
	s := newTestStore(t)

	snap := sampleSnapshot("FY25-26")
	_, err := s.SaveSnapshot(snap)
	require.NoError(t, err)
	snap.ProvisionPct = 4
	_, err = s.SaveSnapshot(snap)
	require.NoError(t, err)

	list, err := s.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Combinations)

	got, err := s.LoadSnapshot("FTTH", "FY25-26")
	require.NoError(t, err)
	assert.Equal(t, 4.0, got.ProvisionPct)
}

func TestLoadLatestSnapshot(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SaveSnapshot(sampleSnapshot("FY26-27"))
	require.NoError(t, err)
	_, err = s.SaveSnapshot(sampleSnapshot("FY25-26"))
	require.NoError(t, err)

	got, err := s.LoadSnapshot("FTTH", "")
	require.NoError(t, err)
	assert.Equal(t, "FY25-26", got.FiscalYear)

	list, err := s.ListSnapshots()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "FY25-26", list[0].FiscalYear)
}

func TestLoadSnapshotNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.LoadSnapshot("SDU", "")
	assert.True(t, errors.Is(err, ErrNotFound))

	err = s.DeleteSnapshot("SDU", "FY25-26")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLoadSnapshotMigratesLegacyRateKeys(t *testing.T) {
	s := newTestStore(t)

	snap := sampleSnapshot("FY25-26")
	sig := snap.Combos[0].Key()
	snap.Rates = model.Rates{"Airtel|SOBO|RFAI": {RecurringRate: 42}}
	_, err := s.SaveSnapshot(snap)
	require.NoError(t, err)

	got, err := s.LoadSnapshot("FTTH", "FY25-26")
	require.NoError(t, err)
	assert.Equal(t, 42.0, got.Rates[sig].RecurringRate)
	_, legacy := got.Rates["Airtel|SOBO|RFAI"]
	assert.False(t, legacy)
}

func TestSaveSnapshotRejectsIncomplete(t *testing.T) {
	s := newTestStore(t)

	_, err := s.SaveSnapshot(&model.Snapshot{LOB: model.LOBFTTH})
	_, ok := model.AsValidation(err)
	assert.True(t, ok)
}

func TestRestoreSnapshots(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveSnapshot(sampleSnapshot("FY25-26"))
	require.NoError(t, err)

	records, err := s.SnapshotRecords()
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.NoError(t, s.DeleteSnapshot("FTTH", "FY25-26"))
	require.NoError(t, s.RestoreSnapshots(records))

	got, err := s.LoadSnapshot("FTTH", "FY25-26")
	require.NoError(t, err)
	assert.Len(t, got.Combos, 1)

	bad := []SnapshotRecord{{LOB: "FTTH", FiscalYear: "FY25-26", Data: json.RawMessage("{")}}
	assert.Error(t, s.RestoreSnapshots(bad))
	// failed restore leaves existing rows in place
	_, err = s.LoadSnapshot("FTTH", "FY25-26")
	assert.NoError(t, err)
}

func TestConfigAndSelection(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetConfig("missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	require.NoError(t, s.SetConfigFloat("provision", 2.5))
	v, err := s.GetConfigFloat("provision")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)

	_, _, err = s.GetCurrentSelection()
	assert.Error(t, err)
	require.NoError(t, s.SetCurrentSelection("FY25-26", "SDU"))
	fy, lob, err := s.GetCurrentSelection()
	require.NoError(t, err)
	assert.Equal(t, "FY25-26", fy)
	assert.Equal(t, "SDU", lob)

	all, err := s.GetAllConfig()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestUploadLogs(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateUploadLog("batch-1", "existing-revenue", "rev.csv", "FTTH", "FY25-26", 120)
	require.NoError(t, err)
	require.NoError(t, s.FinishUploadLog(id, 10, 0, UploadRejected, "row 3: unknown combination"))
	_, err = s.CreateUploadLog("batch-2", "existing-opex", "opex.xlsx", "FTTH", "FY25-26", 80)
	require.NoError(t, err)

	logs, err := s.ListUploadLogs(0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "batch-2", logs[0].BatchID)
	assert.Equal(t, UploadProcessing, logs[0].Status)
	assert.Equal(t, UploadRejected, logs[1].Status)
	assert.Equal(t, 10, logs[1].TotalRows)
	assert.NotEmpty(t, logs[1].CompletedAt)
}
