package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"
)

// Run executes the command with the given streams and returns the process
// exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	command := ValidateCommand()
	command.Reader = stdin
	command.Writer = stdout
	command.ErrWriter = stderr
	// Exit codes are returned to the caller instead of terminating here.
	command.ExitErrHandler = func(context.Context, *cli.Command, error) {}

	err := command.Run(ctx, args)
	if err == nil {
		return 0
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	fmt.Fprintln(stderr, err)
	return 1
}

// newLogger returns a text logger on w. Only errors are shown unless
// verbose is set.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelError
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
