// To handle all database interactions for persisted session state.
// This is our data access layer, keeping SQL queries separate from
// business logic.

package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"imagedeck/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// GetSetting returns the value for key, or fallback when the key has
// never been written.
func (s *Store) GetSetting(key, fallback string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting writes a key/value pair, replacing any previous value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

const genParamsKey = "gen_params"

// SaveGenParams persists the generation parameters as a single JSON
// settings row. Called on every change from the UI.
func (s *Store) SaveGenParams(p models.GenParams) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode gen params: %w", err)
	}
	return s.SetSetting(genParamsKey, string(payload))
}

// GetGenParams loads the persisted generation parameters. Missing keys
// in an older row are filled with defaults, and a never-saved session
// returns the plain defaults.
func (s *Store) GetGenParams() (models.GenParams, error) {
	raw, err := s.GetSetting(genParamsKey, "")
	if err != nil {
		return models.GenParams{}, err
	}
	if raw == "" {
		return models.DefaultGenParams(), nil
	}
	var p models.GenParams
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return models.GenParams{}, fmt.Errorf("failed to decode gen params: %w", err)
	}
	p.FillDefaults()
	return p, nil
}

// --- scalar UI preferences ---

// GetWheelMode returns the persisted wheel-mode preference, "zoom" by
// default.
func (s *Store) GetWheelMode() (string, error) {
	return s.GetSetting("wheel_mode", "zoom")
}

// SetWheelMode persists the wheel-mode preference.
func (s *Store) SetWheelMode(mode string) error {
	if mode != "zoom" && mode != "navigate" {
		return fmt.Errorf("unknown wheel mode %q", mode)
	}
	return s.SetSetting("wheel_mode", mode)
}

// GetRandomSeed returns the random-seed toggle, on by default.
func (s *Store) GetRandomSeed() (bool, error) {
	v, err := s.GetSetting("random_seed", "true")
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

// SetRandomSeed persists the random-seed toggle.
func (s *Store) SetRandomSeed(on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return s.SetSetting("random_seed", v)
}

// GetTheme returns the persisted theme name.
func (s *Store) GetTheme() (string, error) {
	return s.GetSetting("theme", "dark")
}

// SetTheme persists the theme name.
func (s *Store) SetTheme(name string) error {
	return s.SetSetting("theme", name)
}

// GetPanelWidths returns the persisted panel layout as a name->pixels
// map.
func (s *Store) GetPanelWidths() (map[string]int, error) {
	raw, err := s.GetSetting("panel_widths", "")
	if err != nil {
		return nil, err
	}
	widths := make(map[string]int)
	if raw == "" {
		return widths, nil
	}
	if err := json.Unmarshal([]byte(raw), &widths); err != nil {
		return nil, fmt.Errorf("failed to decode panel widths: %w", err)
	}
	return widths, nil
}

// SetPanelWidths persists the panel layout.
func (s *Store) SetPanelWidths(widths map[string]int) error {
	payload, err := json.Marshal(widths)
	if err != nil {
		return err
	}
	return s.SetSetting("panel_widths", string(payload))
}
