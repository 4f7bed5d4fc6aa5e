package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/nibzard/taskdesk/internal/config"
	"github.com/nibzard/taskdesk/internal/document"
	"github.com/nibzard/taskdesk/internal/store"
	"github.com/nibzard/taskdesk/internal/task"
)

// Export formats.
const (
	formatJSON    = "json"
	formatCSV     = "csv"
	formatCompact = "compact"
	formatTagged  = "tagged"
)

// importCommand appends the tasks of a file. Lines that fail to parse are
// reported; the command only fails when nothing could be imported.
func importCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: taskdesk import FILE")
	}
	path := args[0]

	return withStore(ctx, cws, func(st *store.Store) error {
		result, err := st.ImportFile(path)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		for _, f := range result.Failed {
			fmt.Fprintf(stderr, "  skipped %v\n", f)
		}
		fmt.Fprintf(stdout, "Imported %d tasks from %s", result.Added, path)
		if len(result.Failed) > 0 {
			fmt.Fprintf(stdout, " (%d skipped)", len(result.Failed))
		}
		fmt.Fprintln(stdout)
		if result.Added == 0 && len(result.Failed) > 0 {
			return fmt.Errorf("nothing imported from %s", path)
		}
		return nil
	})
}

// exportCommand writes the tasks in the chosen format to FILE or stdout.
func exportCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskdesk export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", formatJSON, "Output format (json, csv, compact, tagged)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}
	f := strings.ToLower(strings.TrimSpace(*format))
	switch f {
	case formatJSON, formatCSV, formatCompact, formatTagged:
	default:
		return fmt.Errorf("invalid format %q (want json, csv, compact or tagged)", *format)
	}

	return withStore(ctx, cws, func(st *store.Store) error {
		if fs.NArg() == 0 {
			return writeTasks(stdout, f, st.Labels(), st.Tasks())
		}
		path := fs.Arg(0)
		out, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := writeTasks(out, f, st.Labels(), st.Tasks()); err != nil {
			out.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(stderr, "Exported %d tasks to %s\n", st.Len(), path)
		return nil
	})
}

// writeTasks encodes tasks in format. The csv format is the task file
// itself, header included, so it can be imported again.
func writeTasks(w io.Writer, format string, labels task.Labels, tasks []task.Task) error {
	if format == formatJSON {
		return document.FromTasks(tasks, time.Now()).Encode(w)
	}

	bw := bufio.NewWriter(w)
	if format == formatCSV {
		fmt.Fprintln(bw, labels.Header)
	}
	for _, t := range tasks {
		switch format {
		case formatCSV:
			fmt.Fprintln(bw, t.Record(labels))
		case formatCompact:
			fmt.Fprintln(bw, t.Compact())
		case formatTagged:
			fmt.Fprintln(bw, t.Tagged())
		}
	}
	return bw.Flush()
}
