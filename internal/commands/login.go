package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

// Login fallback notification text.
const msgLoginFailed = "Login failed"

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
	input    io.Reader
}

// SetInput sets the reader used to prompt for missing credentials (for testing).
func (c *LoginCmd) SetInput(r io.Reader) { c.input = r }

// SetCredentials sets email and password (for testing).
func (c *LoginCmd) SetCredentials(email, password string) {
	c.email = email
	c.password = password
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in and store a session" }
func (c *LoginCmd) Usage() string {
	return "taskdash login [common flags] [--email <email>] [--password <password>]"
}
func (c *LoginCmd) NeedsAuth() bool { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "account `email` (prompted if empty)")
	fs.StringVar(&c.password, "password", "", "account `password` (prompted if empty)")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	email, password, err := credentials(c.input, errOut, c.email, c.password)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}

	if err := svc.Login(ctx, email, password); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", service.Message(err, msgLoginFailed))
		if service.IsValidation(err) {
			return exitcode.UserError
		}
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// credentials prompts on errOut for whichever of email and password is empty.
// The password is not echoed when reading from a terminal.
func credentials(in io.Reader, errOut io.Writer, email, password string) (string, string, error) {
	var err error
	var r *bufio.Reader
	if email == "" || password == "" {
		r = newInput(in)
	}
	if email == "" {
		if email, err = promptLine(r, errOut, "email: "); err != nil {
			return "", "", fmt.Errorf("reading email: %w", err)
		}
	}
	if password == "" {
		if password, err = promptSecret(in, r, errOut, "password: "); err != nil {
			return "", "", fmt.Errorf("reading password: %w", err)
		}
	}
	if email == "" || password == "" {
		return "", "", fmt.Errorf("email and password are required")
	}
	return email, password, nil
}
