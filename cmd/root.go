// Package cmd implements the CLI command structure for taskdesk.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskdesk/internal/config"
	"github.com/nibzard/taskdesk/internal/hooks"
	"github.com/nibzard/taskdesk/internal/logging"
	"github.com/nibzard/taskdesk/internal/store"
	"github.com/nibzard/taskdesk/internal/task"
	"github.com/nibzard/taskdesk/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams; tests replace them.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// Run executes the taskdesk CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskdesk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// No subcommand means the editor.
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cws, remainingArgs)
	case "ls":
		return lsCommand(ctx, cws, remainingArgs)
	case "add":
		return addCommand(ctx, cws, remainingArgs)
	case "update":
		return updateCommand(ctx, cws, remainingArgs)
	case "done":
		return doneCommand(ctx, cws, remainingArgs)
	case "rm":
		return rmCommand(ctx, cws, remainingArgs)
	case "import":
		return importCommand(ctx, cws, remainingArgs)
	case "export":
		return exportCommand(ctx, cws, remainingArgs)
	case "doctor":
		return doctorCommand(cws, remainingArgs)
	case "version", "--version":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// tuiCommand launches the terminal editor. Its log goes to a session file
// because the editor owns the terminal.
func tuiCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskdesk tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	session, err := logging.NewSession(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("creating session log: %w", err)
	}
	defer session.Close()

	logger, err := newLogger(cws, session)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cfg, logger, session)
	if err != nil {
		return err
	}
	defer st.Close()

	logger.Info("editor started", "location", st.Location(), "tasks", st.Len())
	if err := ui.Run(ctx, st); err != nil {
		logger.Error("editor stopped", "err", err)
		return err
	}
	return nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "taskdesk version %s\n", Version)
	return nil
}

// newLogger builds the logger configured by cws, writing to w, and reports
// config warnings through it.
func newLogger(cws *config.ConfigWithSources, w io.Writer) (*log.Logger, error) {
	cfg := cws.Config
	logger, err := logging.New(w, logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Timestamps: cfg.LogTimestamps,
		Caller:     cfg.LogCaller,
	})
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}
	for _, warning := range cws.Warnings {
		logger.Warn(warning)
	}
	return logger, nil
}

// newBackend returns the storage backend selected by cfg.
func newBackend(cfg *config.Config) store.Backend {
	if cfg.Storage == config.StorageSQLite {
		return store.NewSQLite(cfg.DatabaseFile)
	}
	return store.NewCSVFile(cfg.DataFile)
}

// openStore builds the store from cfg and loads it. Hook output goes to
// hookOut.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger, hookOut io.Writer) (*store.Store, error) {
	st := store.New(store.Options{
		Backend: newBackend(cfg),
		Labels:  task.LabelsFor(cfg.HeaderLanguage),
		Logger:  logger,
		Hook:    hookFor(ctx, cfg, logger, hookOut),
	})
	if err := st.Load(); err != nil {
		st.Close()
		return nil, fmt.Errorf("loading %s: %w", st.Location(), err)
	}
	logger.Debug("store opened", "location", st.Location(), "tasks", st.Len())
	return st, nil
}

// hookFor returns the store hook that runs the configured hook command, or
// nil when none is configured. Hook failures are logged, not returned; the
// save they follow has already succeeded.
func hookFor(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer) func(store.Event) {
	if strings.TrimSpace(cfg.HookCommand) == "" {
		return nil
	}
	return func(ev store.Event) {
		result, err := hooks.Invoke(ctx, hooks.Options{
			Command:  cfg.HookCommand,
			Op:       string(ev.Op),
			Location: ev.Location,
			Count:    ev.Count,
			Index:    ev.Index,
			WorkDir:  cfg.ProjectRoot,
			Stdout:   out,
			Stderr:   out,
		})
		if err != nil {
			logger.Warn("hook failed", "op", ev.Op, "exit", result.ExitCode, "err", err)
			return
		}
		logger.Debug("hook ran", "op", ev.Op, "command", cfg.HookCommand)
	}
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskdesk - a small to-do manager with a date-ordered task file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskdesk [global options] [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                  Launch the terminal editor (default command)")
	fmt.Fprintln(w, "  ls                   List tasks in due-date order")
	fmt.Fprintln(w, "  add                  Add a task")
	fmt.Fprintln(w, "  update               Change the title, description or due date of a task")
	fmt.Fprintln(w, "  done N               Mark task N done")
	fmt.Fprintln(w, "  rm N                 Delete task N")
	fmt.Fprintln(w, "  import FILE          Append the tasks of a task file or JSON document")
	fmt.Fprintln(w, "  export [FILE]        Write the tasks as json, csv, compact or tagged lines")
	fmt.Fprintln(w, "  doctor               Show the effective config and check the task file")
	fmt.Fprintln(w, "  version              Show version information")
	fmt.Fprintln(w, "  help                 Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -v         Show description, dates and priority")
	fmt.Fprintln(w, "  -overdue   Only overdue tasks")
	fmt.Fprintln(w, "  -pending   Only tasks that are not done")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add/Update Options:")
	fmt.Fprintln(w, "  -n int         Task number shown by ls (update only)")
	fmt.Fprintln(w, "  -title string  Task title")
	fmt.Fprintln(w, "  -desc string   Task description")
	fmt.Fprintln(w, "  -due string    Due date (YYYY-MM-DD)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options:")
	fmt.Fprintln(w, "  -format string  json, csv, compact or tagged (default json)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Doctor Options:")
	fmt.Fprintln(w, "  -example   Print an example taskdesk.toml")
}
