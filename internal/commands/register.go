package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

const msgRegisterFailed = "Registration failed"

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
// It creates an account but does not log in.
type RegisterCmd struct {
	email    string
	password string
	name     string
	input    io.Reader
}

// SetInput sets the reader used to prompt for missing credentials (for testing).
func (c *RegisterCmd) SetInput(r io.Reader) { c.input = r }

// SetAccount sets the account fields (for testing).
func (c *RegisterCmd) SetAccount(email, password, name string) {
	c.email = email
	c.password = password
	c.name = name
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string {
	return "taskdash register [--email <email>] [--password <password>] [--name <name>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "account `email` (prompted if empty)")
	fs.StringVar(&c.password, "password", "", "account `password` (prompted if empty)")
	fs.StringVar(&c.name, "name", "", "display `name`")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	email, password, err := credentials(c.input, errOut, c.email, c.password)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := svc.Register(ctx, email, password, c.name); err != nil {
		return reportError(errOut, err, msgRegisterFailed)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok (run: taskdash login)")
	}
	return exitcode.Success
}
