package cmd

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/taskdesk/internal/config"
	"github.com/nibzard/taskdesk/internal/store"
	"github.com/nibzard/taskdesk/internal/task"
)

// withStore opens the configured store for a one-shot command, logging to
// stderr, and closes it when fn returns.
func withStore(ctx context.Context, cws *config.ConfigWithSources, fn func(*store.Store) error) error {
	logger, err := newLogger(cws, stderr)
	if err != nil {
		return err
	}
	st, err := openStore(ctx, cws.Config, logger, stderr)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

// lsCommand prints the tasks in due-date order, numbered from 1.
func lsCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskdesk ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Show description, dates and priority")
	overdueOnly := fs.Bool("overdue", false, "Only overdue tasks")
	pendingOnly := fs.Bool("pending", false, "Only tasks that are not done")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return withStore(ctx, cws, func(st *store.Store) error {
		labels := st.Labels()
		shown := 0
		for i, t := range st.Tasks() {
			if *overdueOnly && !t.Overdue() {
				continue
			}
			if *pendingOnly && t.Done {
				continue
			}
			shown++
			if *verbose {
				fmt.Fprintf(stdout, "%3d. %s\n", i+1, t.Display(labels))
				continue
			}
			fmt.Fprintf(stdout, "%3d. %s\n", i+1, summary(labels, t))
		}
		if shown == 0 {
			fmt.Fprintln(stdout, "No tasks found.")
		}
		return nil
	})
}

// summary is the short ls line: done mark, title, due date and an overdue
// mark.
func summary(l task.Labels, t task.Task) string {
	mark := " "
	if t.Done {
		mark = l.DoneMark
	}
	line := fmt.Sprintf("[%s] %s  %s %s", mark, t.Title, l.Due, task.FormatDate(t.DueDate))
	if t.Overdue() {
		line += " " + l.OverdueMark
	}
	return line
}

// addCommand adds a task.
func addCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskdesk add", flag.ContinueOnError)
	fs.SetOutput(stderr)
	title := fs.String("title", "", "Task title")
	desc := fs.String("desc", "", "Task description")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return withStore(ctx, cws, func(st *store.Store) error {
		index, err := st.Add(*title, *desc, *due)
		if err != nil {
			return fmt.Errorf("adding task: %w", err)
		}
		fmt.Fprintf(stdout, "Added task %d: %s\n", index+1, strings.TrimSpace(*title))
		return nil
	})
}

// updateCommand replaces the title, description and due date of a task.
// Flags that are not given keep the task's current value.
func updateCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	fs := flag.NewFlagSet("taskdesk update", flag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.Int("n", 0, "Task number shown by ls")
	title := fs.String("title", "", "Task title")
	desc := fs.String("desc", "", "Task description")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["n"] {
		return fmt.Errorf("update requires -n")
	}

	return withStore(ctx, cws, func(st *store.Store) error {
		index := *n - 1
		current, err := st.Get(index)
		if err != nil {
			return fmt.Errorf("task %d: %w", *n, err)
		}
		if !set["title"] {
			*title = current.Title
		}
		if !set["desc"] {
			*desc = current.Description
		}
		if !set["due"] {
			*due = task.FormatDate(current.DueDate)
		}
		moved, err := st.Update(index, *title, *desc, *due)
		if err != nil {
			return fmt.Errorf("updating task %d: %w", *n, err)
		}
		fmt.Fprintf(stdout, "Updated task %d: %s\n", moved+1, strings.TrimSpace(*title))
		return nil
	})
}

// doneCommand marks a task done.
func doneCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	n, err := taskNumber("done", args)
	if err != nil {
		return err
	}
	return withStore(ctx, cws, func(st *store.Store) error {
		changed, err := st.MarkDone(n - 1)
		if err != nil {
			return fmt.Errorf("task %d: %w", n, err)
		}
		if !changed {
			fmt.Fprintf(stdout, "Task %d is already done\n", n)
			return nil
		}
		fmt.Fprintf(stdout, "Marked task %d done\n", n)
		return nil
	})
}

// rmCommand deletes a task.
func rmCommand(ctx context.Context, cws *config.ConfigWithSources, args []string) error {
	n, err := taskNumber("rm", args)
	if err != nil {
		return err
	}
	return withStore(ctx, cws, func(st *store.Store) error {
		t, err := st.Get(n - 1)
		if err != nil {
			return fmt.Errorf("task %d: %w", n, err)
		}
		if err := st.Delete(n - 1); err != nil {
			return fmt.Errorf("deleting task %d: %w", n, err)
		}
		fmt.Fprintf(stdout, "Deleted task %d: %s\n", n, t.Title)
		return nil
	})
}

// taskNumber reads the single 1-based task number argument of cmd.
func taskNumber(cmd string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("usage: taskdesk %s N", cmd)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid task number %q", args[0])
	}
	return n, nil
}
