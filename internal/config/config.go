// Package config provides Viper-based configuration loading for the outplay runner.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"
)

// Storage backends accepted by StorageConfig.Backend.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout" or a file path. The console UI owns
	// stdout, so the default keeps logs off it.
	Output string `mapstructure:"output"`
}

// MaxPlayerNameLen matches the session_summaries.player_name column.
const MaxPlayerNameLen = 64

// PlayerConfig holds the starting player record.
type PlayerConfig struct {
	Name      string `mapstructure:"name"`
	MaxHealth int    `mapstructure:"max_health"`
	MaxFocus  int    `mapstructure:"max_focus"`
	Insight   int    `mapstructure:"insight"`
}

// EncounterConfig tunes every encounter in a session.
type EncounterConfig struct {
	// MemoryCapacity is the decision memory window size.
	MemoryCapacity int `mapstructure:"memory_capacity"`
	// Seed makes a run reproducible; 0 draws from crypto/rand.
	Seed uint64 `mapstructure:"seed"`
	// ChoiceTimeout bounds each wait for the player's tactic; 0 waits forever.
	ChoiceTimeout time.Duration `mapstructure:"choice_timeout"`
}

// TowerConfig locates floor content.
type TowerConfig struct {
	// FloorsFile is a YAML floor list; empty uses the built-in single floor.
	FloorsFile string `mapstructure:"floors_file"`
	// ScriptsDir holds Lua hooks; empty disables scripting.
	ScriptsDir string `mapstructure:"scripts_dir"`
	// GlobalScriptsDir holds shared Lua hooks used when ScriptsDir is empty.
	GlobalScriptsDir string `mapstructure:"global_scripts_dir"`
	// InstructionLimit is the Lua opcode budget per hook call; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// MaxDefeats ends the run after this many defeats.
	MaxDefeats int `mapstructure:"max_defeats"`
}

// StorageConfig selects where session summaries are appended.
type StorageConfig struct {
	// Backend is one of "json", "sqlite", "postgres".
	Backend    string `mapstructure:"backend"`
	JSONPath   string `mapstructure:"json_path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Player    PlayerConfig    `mapstructure:"player"`
	Encounter EncounterConfig `mapstructure:"encounter"`
	Tower     TowerConfig     `mapstructure:"tower"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// Validate checks all configuration invariants. The database section is
// only checked when the postgres backend is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePlayer(c.Player); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEncounter(c.Encounter); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateTower(c.Tower); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Backend == BackendPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	var errs []string
	if strings.TrimSpace(p.Name) == "" {
		errs = append(errs, "player.name must not be empty")
	}
	if n := utf8.RuneCountInString(p.Name); n > MaxPlayerNameLen {
		errs = append(errs, fmt.Sprintf("player.name must be at most %d characters, got %d", MaxPlayerNameLen, n))
	}
	if p.MaxHealth < 1 {
		errs = append(errs, fmt.Sprintf("player.max_health must be >= 1, got %d", p.MaxHealth))
	}
	if p.MaxFocus < 1 {
		errs = append(errs, fmt.Sprintf("player.max_focus must be >= 1, got %d", p.MaxFocus))
	}
	if p.Insight < 0 {
		errs = append(errs, fmt.Sprintf("player.insight must be >= 0, got %d", p.Insight))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEncounter(e EncounterConfig) error {
	var errs []string
	if e.MemoryCapacity < 1 {
		errs = append(errs, fmt.Sprintf("encounter.memory_capacity must be >= 1, got %d", e.MemoryCapacity))
	}
	if e.ChoiceTimeout < 0 {
		errs = append(errs, "encounter.choice_timeout must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateTower(t TowerConfig) error {
	var errs []string
	if t.MaxDefeats < 1 {
		errs = append(errs, fmt.Sprintf("tower.max_defeats must be >= 1, got %d", t.MaxDefeats))
	}
	if t.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("tower.instruction_limit must be >= 0, got %d", t.InstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Backend {
	case BackendJSON:
		if s.JSONPath == "" {
			return errors.New("storage.json_path must not be empty for the json backend")
		}
	case BackendSQLite:
		if s.SQLitePath == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite backend")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("storage.backend must be one of [json, sqlite, postgres], got %q", s.Backend)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and OUTPLAY_ environment
// overrides installed.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("OUTPLAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("player.name", "Traveler")
	v.SetDefault("player.max_health", 100)
	v.SetDefault("player.max_focus", 10)
	v.SetDefault("player.insight", 0)

	v.SetDefault("encounter.memory_capacity", 5)
	v.SetDefault("encounter.seed", 0)
	v.SetDefault("encounter.choice_timeout", "0s")

	v.SetDefault("tower.floors_file", "")
	v.SetDefault("tower.scripts_dir", "")
	v.SetDefault("tower.global_scripts_dir", "")
	v.SetDefault("tower.instruction_limit", 0)
	v.SetDefault("tower.max_defeats", 3)

	v.SetDefault("storage.backend", BackendJSON)
	v.SetDefault("storage.json_path", "outplay_sessions.json")
	v.SetDefault("storage.sqlite_path", "outplay.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "outplay")
	v.SetDefault("database.password", "outplay")
	v.SetDefault("database.name", "outplay")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
