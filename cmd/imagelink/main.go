package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lucas-albers-lz4/imagelink/pkg/debug"
	"github.com/lucas-albers-lz4/imagelink/pkg/exitcodes"
)

// main is the entry point of the application. Interrupts cancel the run
// between files; the exit status comes from the returned ExitCodeError.
func main() {
	debug.Init(false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := Execute(ctx, os.Args[1:])
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", rootCause(err))
		os.Exit(exitcodes.CodeFor(err))
	}
}
