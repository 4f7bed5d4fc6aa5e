package config

import (
	"flag"
	"strconv"
)

// flagBindings maps global CLI flags to config fields.
var flagBindings = []struct {
	name   string
	field  string
	usage  string
	isBool bool
}{
	{"data", "data_file", "Path to the task file", false},
	{"storage", "storage", "Storage backend (csv, sqlite)", false},
	{"db", "database_file", "Path to the SQLite database", false},
	{"lang", "header_language", "Header and display language (ja, en)", false},
	{"hook", "hook_command", "Command to run after every save", false},
	{"log-level", "log_level", "Log level (debug, info, warn, error)", false},
	{"log-format", "log_format", "Log format (text, json, logfmt)", false},
	{"log-timestamps", "log_timestamps", "Show timestamps in logs", true},
	{"log-caller", "log_caller", "Show caller location in logs", true},
	{"log-dir", "log_dir", "Directory for TUI session logs", false},
}

// parseFlags registers the global flags on fs, parses args and applies only
// the flags that were set explicitly.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskdesk", flag.ContinueOnError)
	}

	strs := make(map[string]*string)
	bools := make(map[string]*bool)
	for _, b := range flagBindings {
		if b.isBool {
			def, _ := strconv.ParseBool(cfg.Value(b.field))
			bools[b.name] = fs.Bool(b.name, def, b.usage)
		} else {
			strs[b.name] = fs.String(b.name, cfg.Value(b.field), b.usage)
		}
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	fields := make(map[string]string, len(flagBindings))
	for _, b := range flagBindings {
		fields[b.name] = b.field
	}

	var setErr error
	fs.Visit(func(f *flag.Flag) {
		field, ok := fields[f.Name]
		if !ok {
			return
		}
		var value string
		if p, ok := strs[f.Name]; ok {
			value = *p
		} else {
			value = strconv.FormatBool(*bools[f.Name])
		}
		if err := cfg.set(field, value); err != nil && setErr == nil {
			setErr = err
			return
		}
		if sources != nil {
			sources[field] = SourceFlag
		}
	})
	return setErr
}
