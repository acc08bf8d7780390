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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskdash help [<command>]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return commandHelp(args[0], out, errOut)
	}
	fmt.Fprint(out, usageText)
	fmt.Fprintln(out, "\nCommands:")
	DefaultRegistry.WriteSummary(out)
	fmt.Fprint(out, flagsText)
	return exitcode.Success
}

// commandHelp prints one command's usage line, synopsis and flag defaults.
func commandHelp(name string, out, errOut io.Writer) int {
	cmd, ok := DefaultRegistry.Find(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	fmt.Fprintf(out, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
	}

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	n := 0
	fs.VisitAll(func(*flag.Flag) { n++ })
	if n > 0 {
		fmt.Fprintln(out, "\nFlags:")
		fs.SetOutput(out)
		fs.PrintDefaults()
	}
	return exitcode.Success
}

const usageText = `Usage:
  taskdash                                        List tasks and status summary
  taskdash list [common flags]
  taskdash add [common flags] [--status <status>] <title...>
  taskdash edit [common flags] [--title <title>] [--status <status>] <ref>
  taskdash done [common flags] <ref>
  taskdash rm [common flags] [--yes] <ref>
  taskdash ui [common flags]                      Interactive dashboard
  taskdash login [common flags] [--email <email>] [--password <password>]
  taskdash register [common flags] [--email <email>] [--password <password>] [--name <name>]
  taskdash logout [common flags]
  taskdash profile [common flags] [--name <name>]
  taskdash help [<command>]
  taskdash version

Task references:
  <n>       position as printed by 'taskdash list'
  id:<id>   task ID (use for numeric IDs)
  <id>      task ID

Statuses:
  pending, in_progress, blocked, done
  New tasks may only be pending or in_progress.
`

const flagsText = `
Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
