// Package hooks invokes the external post-save hook.
//
// The hook is an executable called after every successful save as
//
//	<command> <op> <location> <count>
//
// with the same values, plus the affected row index, as a JSON object on
// stdin and as TASKDESK_* environment variables.
package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Options configures a hook invocation.
type Options struct {
	Command  string
	Op       string
	Location string
	Count    int
	Index    int
	WorkDir  string
	// Stdout and Stderr receive the hook output. They default to the
	// process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Payload is the JSON document written to the hook's stdin.
type Payload struct {
	Op       string `json:"op"`
	Location string `json:"location"`
	Count    int    `json:"count"`
	Index    int    `json:"index"`
}

// Result captures the outcome of a hook invocation.
type Result struct {
	Ran      bool
	Command  []string
	ExitCode int
}

// Invoke runs the hook command. An empty command is a no-op.
func Invoke(ctx context.Context, opts Options) (Result, error) {
	if opts.Command == "" {
		return Result{}, nil
	}
	if opts.Op == "" {
		return Result{}, errors.New("hook op is empty")
	}
	if opts.Location != "" {
		if info, err := os.Stat(opts.Location); err == nil && info.IsDir() {
			return Result{}, fmt.Errorf("hook location is a directory: %s", opts.Location)
		}
	}

	payload, err := json.Marshal(Payload{
		Op:       opts.Op,
		Location: opts.Location,
		Count:    opts.Count,
		Index:    opts.Index,
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal hook payload: %w", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	cmd := exec.CommandContext(ctx, opts.Command, opts.Op, opts.Location, strconv.Itoa(opts.Count))
	if opts.WorkDir != "" {
		cmd.Dir = opts.WorkDir
	}
	cmd.Env = append(os.Environ(),
		"TASKDESK_OP="+opts.Op,
		"TASKDESK_LOCATION="+opts.Location,
		"TASKDESK_COUNT="+strconv.Itoa(opts.Count),
		"TASKDESK_INDEX="+strconv.Itoa(opts.Index),
	)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = opts.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = opts.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	err = cmd.Run()
	result := Result{
		Ran:      true,
		Command:  cmd.Args,
		ExitCode: exitCodeFromError(err),
	}
	if err != nil {
		return result, fmt.Errorf("hook command failed: %w", err)
	}
	return result, nil
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
