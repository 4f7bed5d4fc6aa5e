// Command taskdesk manages a to-do list from the terminal.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nibzard/taskdesk/cmd"
)

// exitInterrupted is the shell convention for termination by SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.Run(ctx, os.Args[1:])
	interrupted := ctx.Err() != nil
	stop()
	os.Exit(exitCode(os.Stderr, err, interrupted))
}

// exitCode reports err on w and maps it to the process status.
func exitCode(w io.Writer, err error, interrupted bool) int {
	switch {
	case err == nil:
		return 0
	case interrupted:
		fmt.Fprintln(w, "\nInterrupted")
		return exitInterrupted
	default:
		fmt.Fprintf(w, "Error: %v\n", err)
		return 1
	}
}
