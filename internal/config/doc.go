// Package config handles configuration loading and defaults.
//
// Configuration is loaded from multiple sources in priority order:
// 1. Built-in defaults
// 2. User config file (~/.taskdesk/taskdesk.toml or OS-specific config directory)
// 3. Project config file (taskdesk.toml or .taskdesk.toml in the working directory)
// 4. Environment variables (TASKDESK_*)
// 5. CLI flags
//
// Each level overrides the previous one, so CLI flags take precedence.
//
// User-level config locations:
// - ~/.taskdesk/taskdesk.toml (preferred)
// - Windows: %APPDATA%\taskdesk\taskdesk.toml
// - macOS: ~/Library/Application Support/taskdesk/taskdesk.toml
// - Linux/BSD: $XDG_CONFIG_HOME/taskdesk/taskdesk.toml or ~/.config/taskdesk/taskdesk.toml
//
// Relative data paths resolve against the working directory.
package config
