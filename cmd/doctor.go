package cmd

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/nibzard/taskdesk/internal/config"
	"github.com/nibzard/taskdesk/internal/document"
	"github.com/nibzard/taskdesk/internal/logging"
	"github.com/nibzard/taskdesk/internal/store"
	"github.com/nibzard/taskdesk/internal/task"
)

// doctorCommand prints the effective configuration with the source of every
// value and checks that the task file loads.
func doctorCommand(cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskdesk doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example taskdesk.toml")
	verbose := fs.Bool("v", false, "List the loaded tasks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	cfg := cws.Config

	w := stdout
	fmt.Fprintln(w, "taskdesk doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	fmt.Fprintln(w, "Config:")
	for _, field := range config.Fields() {
		fmt.Fprintf(w, "  %-16s %s (%s)\n", field, displayValue(cfg.Value(field)), cws.Sources[field])
	}
	if len(cws.Files) == 0 {
		fmt.Fprintln(w, "  files: none")
	}
	for _, f := range cws.Files {
		fmt.Fprintf(w, "  file: %s\n", f)
	}
	for _, warning := range cws.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	fmt.Fprintln(w)

	// A path argument checks that file instead of the configured one.
	path := cfg.ActivePath()
	if fs.NArg() == 1 {
		path = fs.Arg(0)
	}
	if !checkTaskFile(cfg, path, *verbose) {
		allOK = false
	}
	fmt.Fprintln(w)

	if cfg.HookCommand != "" {
		fmt.Fprintln(w, "Hook:")
		if !checkBinary("command", cfg.HookCommand) {
			allOK = false
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Log directory: %s\n", cfg.LogDir)
	if logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else if latest, err := logging.FindLatestLog(logDir); err != nil {
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	} else if latest == "" {
		fmt.Fprintln(w, "  ⚠️  No session logs yet")
	} else {
		fmt.Fprintf(w, "  ✅ Latest session log: %s\n", latest)
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// checkTaskFile loads path with the configured backend, or validates it as
// a task document when it ends in .json.
func checkTaskFile(cfg *config.Config, path string, verbose bool) bool {
	w := stdout
	fmt.Fprintf(w, "Task file: %s\n", path)
	info, err := os.Stat(path)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(w, "  ⚠️  Not found (created on first save)")
		return true
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		return false
	case info.IsDir():
		fmt.Fprintln(w, "  ❌ Error: path is a directory")
		return false
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return checkDocument(path)
	}

	var backend store.Backend = store.NewCSVFile(path)
	if path == cfg.DatabaseFile && cfg.Storage == config.StorageSQLite {
		backend = store.NewSQLite(path)
	}
	st := store.New(store.Options{Backend: backend, Labels: task.LabelsFor(cfg.HeaderLanguage)})
	defer st.Close()
	if err := st.Load(); err != nil {
		fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
		return false
	}

	tasks := st.Tasks()
	done, overdue := 0, 0
	for _, t := range tasks {
		if t.Done {
			done++
		}
		if t.Overdue() {
			overdue++
		}
	}
	fmt.Fprintf(w, "  ✅ %d tasks (%d done, %d overdue)\n", len(tasks), done, overdue)
	if verbose {
		for i, t := range tasks {
			fmt.Fprintf(w, "    %3d. %s\n", i+1, t.Display(st.Labels()))
		}
	}
	return true
}

func checkDocument(path string) bool {
	w := stdout
	doc, err := document.Load(path)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Load error: %v\n", err)
		return false
	}
	result := doc.Validate()
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if !result.Valid {
		fmt.Fprintln(w, "  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Fprintf(w, "     - %v\n", e)
		}
		return false
	}
	fmt.Fprintf(w, "  ✅ Valid task document (%d tasks)\n", len(doc.Tasks))
	return true
}

func displayValue(v string) string {
	if v == "" {
		return `""`
	}
	return v
}

// checkBinary reports whether binary is an executable path or resolves on
// PATH.
func checkBinary(label, binary string) bool {
	w := stdout
	fmt.Fprintf(w, "  %s: %s\n", label, binary)
	if info, err := os.Stat(binary); err == nil {
		if info.IsDir() {
			fmt.Fprintln(w, "  ❌ Path is a directory")
			return false
		}
		if !isExecutablePath(binary, info) {
			fmt.Fprintln(w, "  ❌ Not executable")
			return false
		}
		fmt.Fprintln(w, "  ✅ OK")
		return true
	}

	resolved, err := exec.LookPath(binary)
	if err != nil {
		fmt.Fprintf(w, "  ❌ Not found: %v\n", err)
		return false
	}
	fmt.Fprintf(w, "  ✅ OK (found in PATH: %s)\n", resolved)
	return true
}

func isExecutablePath(path string, info os.FileInfo) bool {
	if info == nil {
		return false
	}
	if runtime.GOOS == "windows" {
		return windowsExecutableExts()[strings.ToLower(filepath.Ext(path))]
	}
	return info.Mode().Perm()&0111 != 0
}

func windowsExecutableExts() map[string]bool {
	exts := map[string]bool{}
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}
