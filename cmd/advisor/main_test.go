package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/keiba-advisor/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestKellyCommand(t *testing.T) {
	out, err := execute(t, "kelly", "-p", "0.5", "-o", "3", "-b", "10000")
	require.NoError(t, err)
	assert.Contains(t, out, "Raw Kelly:       0.2500")
	assert.Contains(t, out, "Stake:           ¥500 of ¥10000")

	out, err = execute(t, "kelly", "-p", "0.2", "-o", "4", "-b", "10000")
	require.NoError(t, err)
	assert.Contains(t, out, "No positive edge")
}

func TestRecommendCommand(t *testing.T) {
	input := filepath.Join(t.TempDir(), "race.json")
	require.NoError(t, os.WriteFile(input, []byte(`{
		"race_info": {"race_id": "R2", "date": "2024-12-22"},
		"predictions": [
			{"horse_no": 1, "win_probability": 0.6, "odds": 7.5},
			{"horse_no": 2, "win_probability": 0.1, "odds": 10},
			{"horse_no": 3, "win_probability": 0.05, "odds": 10},
			{"horse_no": 4, "win_probability": 0.05, "odds": 10},
			{"horse_no": 5, "win_probability": 0.05, "odds": 8}
		]
	}`), 0o600))

	out, err := execute(t, "recommend", "-i", input, "--bankroll", "10000")
	require.NoError(t, err)

	var rec models.IssuedRecommendation
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, models.RaceLevelDecisive, rec.RaceLevel)
	assert.Equal(t, int64(200), rec.Recommendation.Recommendation.TotalCost)

	out, err = execute(t, "recommend", "-i", input, "--bankroll", "10000", "--summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan: 1 x ¥200 = ¥200")
	assert.Contains(t, out, "Kelly stake: ¥500")
}

func TestRecommendCommandRequiresInput(t *testing.T) {
	rootCmd.SetIn(bytes.NewReader(nil))
	_, err := execute(t, "recommend", "--input", "", "--race-id", "", "--summary=false")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
