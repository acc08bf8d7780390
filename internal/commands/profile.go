package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/output"
	"taskdash/internal/service"
)

const (
	msgProfileFailed       = "Could not load profile"
	msgProfileUpdateFailed = "Could not update profile"
)

func init() {
	Register(&ProfileCmd{})
}

// ProfileCmd implements the profile command.
// With --name it renames the account, otherwise it prints the profile.
type ProfileCmd struct {
	name string
}

// SetName sets the new display name (for testing).
func (c *ProfileCmd) SetName(name string) { c.name = name }

func (c *ProfileCmd) Name() string      { return "profile" }
func (c *ProfileCmd) Aliases() []string { return []string{"whoami"} }
func (c *ProfileCmd) Synopsis() string  { return "Show or rename the signed-in account" }
func (c *ProfileCmd) Usage() string     { return "taskdash profile [--name <name>]" }
func (c *ProfileCmd) NeedsAuth() bool   { return true }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.name, "name", "", "change the display `name`")
}

func (c *ProfileCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	if c.name != "" {
		if err := svc.UpdateProfile(ctx, c.name); err != nil {
			return reportError(errOut, err, msgProfileUpdateFailed)
		}
		if cfg.Quiet {
			return exitcode.Success
		}
	}

	p, err := svc.Profile(ctx)
	if err != nil {
		return reportError(errOut, err, msgProfileFailed)
	}
	output.FormatProfile(out, p)
	return exitcode.Success
}
