package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.taskdesk/taskdesk.toml or OS-specific config dir)
// 3. Project config file (taskdesk.toml or .taskdesk.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cws, err := LoadWithSources(fs, args)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
// Flags are registered on fs and parsed from args; the caller reads the
// remaining positional arguments from fs.Args().
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	cws := &ConfigWithSources{
		Config:  &Config{},
		Sources: make(map[string]ConfigSource),
	}
	cfg := cws.Config

	setDefaults(cfg)
	for _, field := range Fields() {
		cws.Sources[field] = SourceDefault
	}

	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cws, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}
	if path := findProjectConfigFile(); path != "" {
		if err := loadConfigFile(cws, path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	loadFromEnv(cfg, cws.Sources)

	if err := parseFlags(cfg, fs, args, cws.Sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cws, nil
}

// ConfigFile returns the highest-priority config file that was read, or
// the empty string if none was.
func (cws *ConfigWithSources) ConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}

// loadConfigFile decodes a TOML file over the current values. Only keys
// present in the file are overwritten and recorded with source.
func loadConfigFile(cws *ConfigWithSources, path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cws.Config)
	if err != nil {
		return err
	}
	for _, key := range md.Keys() {
		if len(key) == 1 {
			cws.Sources[key[0]] = source
		}
	}
	for _, key := range md.Undecoded() {
		cws.Warnings = append(cws.Warnings, fmt.Sprintf("%s: unknown key %q", path, key.String()))
	}
	cws.Files = append(cws.Files, path)
	return nil
}

// finalizeConfig validates enumerations, expands paths and resolves
// relative paths against the project root.
func finalizeConfig(cfg *Config) error {
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))
	switch cfg.Storage {
	case StorageCSV, StorageSQLite:
	default:
		return fmt.Errorf("invalid storage %q (want %s or %s)", cfg.Storage, StorageCSV, StorageSQLite)
	}

	cfg.HeaderLanguage = strings.ToLower(strings.TrimSpace(cfg.HeaderLanguage))
	switch cfg.HeaderLanguage {
	case "ja", "en":
	default:
		return fmt.Errorf("invalid header_language %q (want ja or en)", cfg.HeaderLanguage)
	}

	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.DataFile = resolvePath(cfg.ProjectRoot, cfg.DataFile)
	cfg.DatabaseFile = resolvePath(cfg.ProjectRoot, cfg.DatabaseFile)
	cfg.LogDir = resolvePath(cfg.ProjectRoot, cfg.LogDir)
	return nil
}

func resolvePath(root, p string) string {
	p = expandPath(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
