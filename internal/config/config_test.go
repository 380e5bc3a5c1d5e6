package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadCreatesDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("config/config.json")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 0.85, cfg.Scoring.FuzzyThreshold)
	assert.Equal(t, RepeatLatest, cfg.Scoring.RepeatPolicy)
	assert.Equal(t, "light", cfg.UI.Theme)

	// The settings file and data directories now exist
	assert.FileExists(t, "config/config.json")
	assert.DirExists(t, cfg.Images.QuestionDir)
	assert.DirExists(t, cfg.Output.WorksheetDir)
}

func TestLoadReadsExistingFile(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := Default()
	cfg.path = "config.json"
	cfg.UI.Theme = "dark"
	cfg.Scoring.FuzzyThreshold = 0.7
	require.NoError(t, cfg.Save())

	loaded, err := Load("config.json")
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.UI.Theme)
	assert.Equal(t, 0.7, loaded.Scoring.FuzzyThreshold)
}

func TestLoadRejectsBadRepeatPolicy(t *testing.T) {
	chdir(t, t.TempDir())

	cfg := Default()
	cfg.Scoring.RepeatPolicy = "newest"
	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile("config.json", data, 0o644))

	_, err = Load("config.json")
	assert.ErrorContains(t, err, "repeat_policy")
}

func TestValidateRejectsBadThreshold(t *testing.T) {
	cfg := Default()
	cfg.Scoring.FuzzyThreshold = 1.5
	assert.ErrorContains(t, cfg.Validate(), "fuzzy_threshold")

	cfg.Scoring.FuzzyThreshold = -0.1
	assert.ErrorContains(t, cfg.Validate(), "fuzzy_threshold")
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.path = filepath.Join(dir, "nested", "config.json")
	cfg.UI.FontSize = 16
	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(cfg.path)
	require.NoError(t, err)

	var persisted Config
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Equal(t, 16, persisted.UI.FontSize)
	assert.Equal(t, cfg.Database.Path, persisted.Database.Path)
}

func TestSaveWithoutPath(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Save())
}
