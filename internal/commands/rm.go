package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	yes   bool
	input io.Reader
}

// SetInput sets the reader the confirmation prompt reads from (for testing).
func (c *RmCmd) SetInput(r io.Reader) { c.input = r }

// SetYes skips the confirmation prompt (for testing).
func (c *RmCmd) SetYes(yes bool) { c.yes = yes }

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "taskdash rm [--yes] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "delete without asking")
	fs.BoolVar(&c.yes, "y", false, "shorthand for --yes")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	ctl := newController(svc, errOut)
	if err := ctl.Refresh(ctx); err != nil {
		return exitcode.For(err)
	}

	task, err := ref.Resolve(ctl)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	confirm := func(t service.Task) bool {
		if c.yes {
			return true
		}
		answer, err := promptLine(newInput(c.input), errOut, fmt.Sprintf("delete %q? [y/N] ", t.Title))
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}

	deleted, err := ctl.RequestDelete(ctx, task.ID, confirm)
	if err != nil {
		return exitcode.For(err)
	}
	if !deleted {
		if !cfg.Quiet {
			fmt.Fprintln(out, "cancelled")
		}
		return exitcode.Success
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
