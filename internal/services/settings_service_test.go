package services

import (
	"context"
	"os"
	"testing"

	"github.com/sat-prep/question-bank-service/internal/config"
	"github.com/sat-prep/question-bank-service/internal/validator"
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

func loadedConfig(t *testing.T) *config.Config {
	t.Helper()
	chdir(t, t.TempDir())
	cfg, err := config.Load("config.json")
	require.NoError(t, err)
	return cfg
}

func TestUpdateSettingsPersists(t *testing.T) {
	cfg := loadedConfig(t)
	svc := NewSettingsService(cfg, testLogger(), validator.New())

	theme := "dark"
	threshold := 0.9
	updated, err := svc.Update(context.Background(), &UpdateSettingsRequest{
		Theme:          &theme,
		FuzzyThreshold: &threshold,
	})
	require.NoError(t, err)

	assert.Equal(t, "dark", updated.UI.Theme)
	assert.Equal(t, 0.9, updated.Scoring.FuzzyThreshold)
	// Untouched settings keep their values
	assert.Equal(t, 12, updated.UI.FontSize)
	assert.Equal(t, config.RepeatLatest, updated.Scoring.RepeatPolicy)

	reloaded, err := config.Load("config.json")
	require.NoError(t, err)
	assert.Equal(t, "dark", reloaded.UI.Theme)
	assert.Equal(t, 0.9, reloaded.Scoring.FuzzyThreshold)
}

func TestUpdateSettingsRejectsUnknownTheme(t *testing.T) {
	cfg := loadedConfig(t)
	svc := NewSettingsService(cfg, testLogger(), validator.New())

	theme := "sepia"
	_, err := svc.Update(context.Background(), &UpdateSettingsRequest{Theme: &theme})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestUpdateSettingsRejectsBadRepeatPolicy(t *testing.T) {
	cfg := loadedConfig(t)
	svc := NewSettingsService(cfg, testLogger(), validator.New())

	policy := "newest"
	_, err := svc.Update(context.Background(), &UpdateSettingsRequest{RepeatPolicy: &policy})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestGetSettingsReturnsLiveConfig(t *testing.T) {
	cfg := loadedConfig(t)
	svc := NewSettingsService(cfg, testLogger(), validator.New())

	assert.Same(t, cfg, svc.Get(context.Background()))
}
