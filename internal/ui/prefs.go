package ui

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// TablePrefs stores per-table UI preferences.
type TablePrefs struct {
	SortKey       string   `json:"sort_key"`
	SortDesc      bool     `json:"sort_desc"`
	HiddenColumns []string `json:"hidden_columns"`
	ActiveColumn  string   `json:"active_column"`
}

// UIPreferences stores persisted app preferences. Nothing in here is tied to
// an account except the last email typed on the login screen.
type UIPreferences struct {
	LastEmail  string     `json:"last_email"`
	LastSearch string     `json:"last_search"`
	Catalog    TablePrefs `json:"catalog"`
	Corner     TablePrefs `json:"corner"`
}

const prefsFile = "ui_prefs.json"

func prefsPath(configDir string) string {
	return filepath.Join(configDir, prefsFile)
}

// loadUIPreferences returns zero preferences on any read or decode error.
func loadUIPreferences(configDir string) UIPreferences {
	if configDir == "" {
		return UIPreferences{}
	}
	data, err := os.ReadFile(prefsPath(configDir))
	if err != nil {
		return UIPreferences{}
	}

	var prefs UIPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return UIPreferences{}
	}
	return prefs
}

func saveUIPreferences(configDir string, prefs UIPreferences) error {
	if configDir == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(prefsPath(configDir), data, 0600); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
