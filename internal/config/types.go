package config

import (
	"fmt"
	"strconv"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// Storage backends.
const (
	StorageCSV    = "csv"
	StorageSQLite = "sqlite"
)

// Default values.
const (
	DefaultDataFile       = "Data/sample.csv"
	DefaultStorage        = StorageCSV
	DefaultDatabaseFile   = "Data/tasks.db"
	DefaultHeaderLanguage = "ja"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultLogDir         = "~/.taskdesk/logs"
)

// Config holds the full configuration for taskdesk.
type Config struct {
	// Storage
	DataFile     string `toml:"data_file"`
	Storage      string `toml:"storage"`
	DatabaseFile string `toml:"database_file"`

	// Header and display language: "ja" or "en"
	HeaderLanguage string `toml:"header_language"`

	// Command run after every successful save
	HookCommand string `toml:"hook_command"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogDir        string `toml:"log_dir"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
	// Files lists the config files that were read, lowest priority first.
	Files []string
	// Warnings holds non-fatal problems such as unknown keys in a file.
	Warnings []string
}

// Fields returns the configurable field names in display order.
// Names match the TOML keys.
func Fields() []string {
	return []string{
		"data_file",
		"storage",
		"database_file",
		"header_language",
		"hook_command",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_dir",
	}
}

// Value returns the textual value of a field named by Fields.
func (c *Config) Value(field string) string {
	switch field {
	case "data_file":
		return c.DataFile
	case "storage":
		return c.Storage
	case "database_file":
		return c.DatabaseFile
	case "header_language":
		return c.HeaderLanguage
	case "hook_command":
		return c.HookCommand
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	case "log_timestamps":
		return strconv.FormatBool(c.LogTimestamps)
	case "log_caller":
		return strconv.FormatBool(c.LogCaller)
	case "log_dir":
		return c.LogDir
	}
	return ""
}

// set assigns a field from its textual form, as read from env or flags.
func (c *Config) set(field, value string) error {
	switch field {
	case "data_file":
		c.DataFile = value
	case "storage":
		c.Storage = value
	case "database_file":
		c.DatabaseFile = value
	case "header_language":
		c.HeaderLanguage = value
	case "hook_command":
		c.HookCommand = value
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	case "log_timestamps":
		c.LogTimestamps = boolFromString(value)
	case "log_caller":
		c.LogCaller = boolFromString(value)
	case "log_dir":
		c.LogDir = value
	default:
		return fmt.Errorf("unknown config field %q", field)
	}
	return nil
}

// ActivePath returns the path of the selected storage backend.
func (c *Config) ActivePath() string {
	if c.Storage == StorageSQLite {
		return c.DatabaseFile
	}
	return c.DataFile
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.Storage = DefaultStorage
	cfg.DatabaseFile = DefaultDatabaseFile
	cfg.HeaderLanguage = DefaultHeaderLanguage
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.LogDir = DefaultLogDir
}
