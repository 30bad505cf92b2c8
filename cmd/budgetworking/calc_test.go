package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

func writeSnapshot(t *testing.T, snap *model.Snapshot) string {
	t.Helper()
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestCalcPrintsSummary(t *testing.T) {
	c := model.NewCombination(map[string]string{"customer": "Airtel", "circle": "SOBO", "type": "RFAI"})
	c.Volumes["FY25-26"] = fiscal.Constant(1)
	path := writeSnapshot(t, &model.Snapshot{
		FiscalYear:   "FY25-26",
		LOB:          model.LOBFTTH,
		Combos:       []model.Combination{c},
		Rates:        model.Rates{c.Key(): {RecurringRate: 100000}},
		IncludeFresh: true,
	})

	var out bytes.Buffer
	cmd := newCalcCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--snapshot", path})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "FTTH FY25-26")
	assert.Contains(t, out.String(), "Gross Revenue")
	assert.Contains(t, out.String(), "7.80")
}

func TestCalcRejectsInvalidSnapshot(t *testing.T) {
	path := writeSnapshot(t, &model.Snapshot{FiscalYear: "FY25-27", LOB: model.LOBFTTH})

	cmd := newCalcCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--snapshot", path})
	err := cmd.Execute()
	_, ok := model.AsValidation(err)
	assert.True(t, ok)
}
