package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
)

// Config holds all configurable game and server parameters.
type Config struct {
	GridRows           int `json:"grid_rows"`
	GridCols           int `json:"grid_cols"`
	ExtraFlipAllowance int `json:"extra_flip_allowance"`
	MaxPlayersPerRoom  int `json:"max_players_per_room"`
	MaxNameLength      int `json:"max_name_length"`
	WSPort             int `json:"ws_port"`

	// AuthBaseURL is the JWKS issuer base URL; empty disables auth.
	AuthBaseURL string `json:"auth_base_url"`

	// DatabaseURL is the Postgres connection string; empty disables
	// persistence (rounds are still playable, just not recorded).
	DatabaseURL string `json:"-"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		GridRows:           6,
		GridCols:           6,
		ExtraFlipAllowance: 10,
		MaxPlayersPerRoom:  4,
		MaxNameLength:      24,
		WSPort:             8080,
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	// Try to load from config.json
	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			log.Printf("Warning: failed to parse config.json: %v", err)
		}
	}

	// Environment variable overrides
	overrideInt(&cfg.GridRows, "GRID_ROWS")
	overrideInt(&cfg.GridCols, "GRID_COLS")
	overrideInt(&cfg.ExtraFlipAllowance, "EXTRA_FLIP_ALLOWANCE")
	overrideInt(&cfg.MaxPlayersPerRoom, "MAX_PLAYERS_PER_ROOM")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			log.Printf("Warning: invalid value for %s: %q", envKey, val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
