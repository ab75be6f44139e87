package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load([]string{"-config-dir", dir})
	require.NoError(t, err)

	assert.Equal(t, "", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "dineright.log"), cfg.LogPath)
	assert.Equal(t, filepath.Join(dir, "stub.db"), cfg.StubDB)
	assert.Equal(t, 20, cfg.StubLoginLimit)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("DINERIGHT_BASE_URL", "http://env.example.com/")
	t.Setenv("DINERIGHT_TIMEOUT", "3s")

	cfg, err := Load([]string{"-config-dir", dir})
	require.NoError(t, err)
	assert.Equal(t, "http://env.example.com", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	cfg, err = Load([]string{"-config-dir", dir, "-url", "http://flag.example.com", "-timeout", "1s"})
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example.com", cfg.BaseURL)
	assert.Equal(t, time.Second, cfg.Timeout)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("DINERIGHT_LOG_LEVEL") })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DINERIGHT_LOG_LEVEL=debug\n"), 0600))

	cfg, err := Load([]string{"-config-dir", dir})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load([]string{"-timeout", "0s"})
	require.Error(t, err)
}

func TestOnboardingSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	settings, err := loadOnboardingSettings(dir)
	require.NoError(t, err)
	assert.False(t, settings.Completed)

	require.NoError(t, saveOnboardingSettings(dir, OnboardingSettings{Completed: true, BaseURL: "http://x.test"}))
	settings, err = loadOnboardingSettings(dir)
	require.NoError(t, err)
	assert.True(t, settings.Completed)
	assert.Equal(t, "http://x.test", settings.BaseURL)
	assert.False(t, shouldRunOnboarding(settings))
}

func TestValidateBaseURL(t *testing.T) {
	u, err := validateBaseURL(" https://api.example.com/ ")
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", u)

	for _, bad := range []string{"", "example.com", "ftp://example.com"} {
		_, err := validateBaseURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestOnboardingCustomURL(t *testing.T) {
	m := newOnboardingModel()

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, stepURL, next.(onboardingModel).step)

	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("nope")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotEmpty(t, next.(onboardingModel).error)

	om := next.(onboardingModel)
	om.urlInput.SetValue("http://dine.test:9000/")
	next, cmd := om.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	final := next.(onboardingModel)
	assert.Equal(t, stepDone, final.step)
	assert.Equal(t, "http://dine.test:9000", final.settings.BaseURL)
	assert.True(t, final.settings.Completed)
}

func TestOnboardingLocalDefault(t *testing.T) {
	next, _ := newOnboardingModel().Update(tea.KeyMsg{Type: tea.KeyEnter})
	final := next.(onboardingModel)
	assert.Equal(t, DefaultBaseURL, final.settings.BaseURL)
}
