package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# taskdesk configuration file
# Values can be overridden by TASKDESK_* environment variables or CLI flags.

# Task file (relative to the working directory)
data_file = "Data/sample.csv"

# Storage backend: "csv" writes data_file, "sqlite" writes database_file
storage = "csv"
database_file = "Data/tasks.db"

# Header and display language: "ja" or "en"
header_language = "ja"

# Command run after every save; receives the operation and storage path
# hook_command = "/path/to/hook.sh"

# Logging
log_level = "info"      # debug, info, warn, error
log_format = "text"     # text, json, logfmt
log_timestamps = false
log_caller = false

# Session logs written while the terminal UI is running
log_dir = "~/.taskdesk/logs"
`
}
