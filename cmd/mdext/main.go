package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Sentinel errors for command dispatch.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("invalid usage")
)

func main() {
	os.Exit(runMain(os.Args, DefaultEnv()))
}

// runMain dispatches the command line and returns the process exit code.
// A first argument that is not a command is treated as "convert" input.
func runMain(args []string, env *Environment) int {
	cmd, rest := splitCommand(args[1:])

	switch cmd {
	case "help":
		runHelp(rest, env)
		return ExitSuccess
	case "version":
		fmt.Fprintf(env.Stdout, "go-mdext %s\n", Version)
		return ExitSuccess
	case "doctor":
		return runDoctorCmd(rest, env)
	}

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()

	var err error
	switch cmd {
	case "convert":
		err = runConvertCommand(ctx, rest, env)
	case "config":
		err = runConfigCommand(rest, env)
	case "completion":
		err = runCompletion(rest, env)
	default:
		printUsage(env.Stderr)
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}

	if err != nil {
		fmt.Fprintf(env.Stderr, "error: %v%s\n", err, hintFor(err))
	}
	return exitCodeFor(err)
}

// splitCommand separates the command name from its arguments.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return "help", nil
	}
	if isCommand(args[0]) {
		return args[0], args[1:]
	}
	if args[0] == "-h" || args[0] == "--help" {
		return "help", nil
	}
	return "convert", args
}

// isCommand reports whether arg names a command.
func isCommand(arg string) bool {
	switch arg {
	case "convert", "config", "doctor", "completion", "version", "help":
		return true
	}
	return false
}

// runConvertCommand parses convert flags, sizes the process and converts.
func runConvertCommand(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if flags.help {
		printConvertUsage(env.Stdout)
		return nil
	}

	logger := newLogger(env.Stderr, flags.common.quiet, flags.common.verbose)

	// maxprocs.Set only fails on an invalid GOMAXPROCS variable, in which
	// case the runtime default applies.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	return runConvert(ctx, positional, flags, env, logger)
}

// newLogger builds the CLI logger: errors only with quiet, everything
// with verbose, warnings otherwise.
func newLogger(w io.Writer, quiet, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
