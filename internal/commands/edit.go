package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskdash/internal/config"
	"taskdash/internal/controller"
	"taskdash/internal/editor"
	"taskdash/internal/exitcode"
	"taskdash/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	title  string
	status string
}

// SetTitle sets the new title (for testing).
func (c *EditCmd) SetTitle(title string) { c.title = title }

// SetStatus sets the new status (for testing).
func (c *EditCmd) SetStatus(status string) { c.status = status }

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task's title or status" }
func (c *EditCmd) Usage() string {
	return "taskdash edit [--title <title>] [--status <status>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.title, "title", "", "new `title`")
	fs.StringVar(&c.title, "t", "", "shorthand for --title")
	fs.StringVar(&c.status, "status", "", "new `status`")
	fs.StringVar(&c.status, "s", "", "shorthand for --status")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if c.title == "" && c.status == "" {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --status)")
		return exitcode.UserError
	}
	return editTask(ctx, cfg, svc, args, c.title, c.status, out, errOut)
}

// editTask is the shared implementation for edit and done.
// Empty title or status keeps the task's current value.
func editTask(ctx context.Context, cfg *config.Config, svc service.Service, args []string, title, status string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	var st service.Status
	if status != "" {
		if st, err = service.ParseStatus(status); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
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

	if err := ctl.RequestEdit(task.ID); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	sess, _ := ctl.Session()
	modal := editor.Open(sess)

	if title != "" {
		modal.SetTitle(title)
	}
	if st != "" {
		if err := modal.SetStatus(st); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	if err := modal.Submit(ctx, ctl); err != nil {
		if service.IsValidation(err) {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return exitcode.For(err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

var _ editor.Saver = (*controller.Controller)(nil)
