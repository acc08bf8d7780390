package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"taskdash/internal/commands"
	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/pipeline"
	"taskdash/internal/service"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch. cfg.Entry is set before the
// factory runs and should be handed to the request pipeline.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
	in       io.Reader
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// SetInput sets the stream prompting commands read from.
func (d *Dispatcher) SetInput(r io.Reader) {
	d.in = r
}

// Run parses arguments and dispatches to the appropriate command.
// With no arguments it runs list. Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}
	// Global flags are only accepted after the command name.
	if strings.HasPrefix(args[0], "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	return d.dispatch(ctx, args[0], args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, name string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	g, rest, msg := parseArgs(cmd, args)
	if msg != "" {
		fmt.Fprintf(errOut, "error: %s\n", msg)
		return exitcode.UserError
	}

	cfg, err := d.configure(g, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	if cmd.NeedsAuth() && !cfg.HasSession() {
		fmt.Fprintln(errOut, "error: not logged in (run: taskdash login)")
		return exitcode.AuthError
	}

	var svc service.Service
	if d.factory != nil {
		if svc, err = d.factory(ctx, cfg); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.AuthError
		}
	}

	if p, ok := cmd.(commands.Prompter); ok && d.in != nil {
		p.SetInput(d.in)
	}
	return cmd.Run(ctx, cfg, svc, rest, out, errOut)
}

// globals holds the flags every command accepts.
type globals struct {
	configDir string
	quiet     bool
	debug     bool
}

// parseArgs parses the global and command flags, which may appear before or
// after positional arguments. "--" ends flag parsing. A non-empty msg is the
// user-facing reason parsing failed.
func parseArgs(cmd commands.Command, args []string) (g globals, rest []string, msg string) {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&g.configDir, "config", "", "")
	fs.BoolVar(&g.quiet, "quiet", false, "")
	fs.BoolVar(&g.debug, "debug", false, "")
	cmd.RegisterFlags(fs)

	rest = []string{}
	for {
		if err := fs.Parse(args); err != nil {
			return g, nil, flagError(err)
		}
		left := fs.Args()
		if len(left) == 0 {
			break
		}
		// flag swallows the terminator; what follows is all positional.
		if used := len(args) - len(left); used > 0 && args[used-1] == "--" {
			rest = append(rest, left...)
			break
		}
		rest = append(rest, left[0])
		args = left[1:]
	}
	return g, rest, ""
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	s := err.Error()
	if name, ok := strings.CutPrefix(s, "flag provided but not defined: "); ok {
		return "unknown flag: " + name
	}
	return s
}

// configure loads the config and installs the process logger and the
// session-expiry hook the request pipeline reports through.
func (d *Dispatcher) configure(g globals, errOut io.Writer) (*config.Config, error) {
	cfg, err := config.New(g.configDir)
	if err != nil {
		return nil, err
	}
	cfg.Quiet = g.quiet
	cfg.Debug = g.debug
	cfg.Entry = pipeline.NewEntryHook(func() {
		fmt.Fprintln(errOut, "error: session expired (run: taskdash login)")
	})
	slog.SetDefault(newLogger(errOut, g.debug))
	return cfg, nil
}

// newLogger returns a text logger on errOut: debug level with --debug,
// otherwise warnings and errors only.
func newLogger(errOut io.Writer, debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))
}
