// Package config loads Crusader settings from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// Settings holds process-wide configuration. All values come from CRUSADER_*
// environment variables; unset values fall back to the defaults below.
type Settings struct {
	// DBPath is the SQLite database file. Empty means
	// <user-home>/.crusader/database.db.
	DBPath string `envconfig:"DB_PATH"`

	// Debug enables verbose logging.
	Debug bool `envconfig:"DEBUG" default:"false"`

	// Hints toggles the next-step hint generator.
	Hints bool `envconfig:"HINTS" default:"true"`
}

// Load reads settings from the environment and resolves the database path.
func Load() (Settings, error) {
	var s Settings
	if err := envconfig.Process("crusader", &s); err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	if s.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Settings{}, fmt.Errorf("config: resolve home dir: %w", err)
		}
		s.DBPath = filepath.Join(home, ".crusader", "database.db")
	}
	return s, nil
}
