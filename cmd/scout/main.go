package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Help exits exitOK, as it always has for this tool's -h; the bad-arguments
// case is the one with its own code.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	cctx := newCommandContext(os.Stdin, os.Stdout, os.Stderr)
	defer cctx.close()
	return exitCode(execute(ctx, cctx, args), os.Stderr)
}

func execute(ctx context.Context, cctx *commandContext, args []string) error {
	cmd := newRootCommand(cctx)
	cmd.SetArgs(args)
	cmd.SetIn(cctx.stdin)
	cmd.SetOut(cctx.stdout)
	cmd.SetErr(cctx.stderr)
	return cmd.ExecuteContext(ctx)
}

// exitCode maps an error to the process status: 2 for bad input, 1 for
// anything that failed at runtime. Help output is not an error.
func exitCode(err error, stderr io.Writer) int {
	var ue usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &ue):
		fmt.Fprintln(stderr, "error:", err)
		fmt.Fprintln(stderr, `Run "scout --help" for usage.`)
		return exitUsage
	case errors.Is(err, context.Canceled):
		return exitError
	default:
		fmt.Fprintln(stderr, "error:", err)
		return exitError
	}
}

// usageError marks bad command-line input.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}
