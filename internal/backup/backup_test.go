package backup

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhakar2095/Budget-Working/internal/model"
	"github.com/Prabhakar2095/Budget-Working/internal/store"
)

func setup(t *testing.T, retention int) (*Scheduler, *store.Store, string) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	c := model.NewCombination(map[string]string{"customer": "Airtel", "circle": "SOBO", "type": "RFAI"})
	_, err = st.SaveSnapshot(&model.Snapshot{FiscalYear: "FY25-26", LOB: model.LOBFTTH, Combos: []model.Combination{c}})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "backups")
	s := NewScheduler(st, dir, retention)
	base := time.Date(2025, 6, 1, 2, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Hour)
	}
	return s, st, dir
}

func TestRunNowAndRestore(t *testing.T) {
	s, st, _ := setup(t, 0)

	info, err := s.RunNow()
	require.NoError(t, err)
	assert.Equal(t, "snapshots-20250601-030000-000.json.sz", info.Name)
	assert.Positive(t, info.Size)

	require.NoError(t, st.DeleteSnapshot("FTTH", "FY25-26"))
	n, err := s.Restore(info.Name)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	snap, err := st.LoadSnapshot("FTTH", "FY25-26")
	require.NoError(t, err)
	assert.Len(t, snap.Combos, 1)
}

func TestRetentionPrunesOldest(t *testing.T) {
	s, _, dir := setup(t, 2)
	for i := 0; i < 4; i++ {
		_, err := s.RunNow()
		require.NoError(t, err)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	list, err := s.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "snapshots-20250601-060000-000.json.sz", list[0].Name)
	assert.Equal(t, "snapshots-20250601-050000-000.json.sz", list[1].Name)
}

func TestRestoreRejectsForeignNames(t *testing.T) {
	s, _, dir := setup(t, 0)

	_, err := s.Restore("../budget.db")
	assert.True(t, errors.Is(err, ErrInvalidName))

	require.NoError(t, os.MkdirAll(dir, 0755))
	bad := "snapshots-broken.json.sz"
	require.NoError(t, os.WriteFile(filepath.Join(dir, bad), []byte("not snappy"), 0644))
	_, err = s.Restore(bad)
	assert.Error(t, err)
}

func TestListWithoutDirectory(t *testing.T) {
	s, _, _ := setup(t, 0)
	list, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s, _, _ := setup(t, 0)
	assert.Error(t, s.Start("every day"))

	require.NoError(t, s.Start("0 3 * * *"))
	s.Stop()
}
