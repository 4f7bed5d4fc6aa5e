package config

import "os"

// envVars maps environment variables to config fields.
var envVars = []struct {
	name  string
	field string
}{
	{"TASKDESK_DATA", "data_file"},
	{"TASKDESK_STORAGE", "storage"},
	{"TASKDESK_DB", "database_file"},
	{"TASKDESK_LANG", "header_language"},
	{"TASKDESK_HOOK", "hook_command"},
	{"TASKDESK_LOG_LEVEL", "log_level"},
	{"TASKDESK_LOG_FORMAT", "log_format"},
	{"TASKDESK_LOG_TIMESTAMPS", "log_timestamps"},
	{"TASKDESK_LOG_CALLER", "log_caller"},
	{"TASKDESK_LOG_DIR", "log_dir"},
}

// loadFromEnv overrides config from non-empty environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	for _, ev := range envVars {
		v := os.Getenv(ev.name)
		if v == "" {
			continue
		}
		if err := cfg.set(ev.field, v); err != nil {
			continue
		}
		if sources != nil {
			sources[ev.field] = SourceEnv
		}
	}
}
