package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
)

// prefix is an optional marker in front of a console command line ("/reset").
const prefix = "/"

// Command is a console command with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse and can read flag state.
type Command struct {
	Name    string
	Usage   string
	FlagSet *flag.FlagSet
	Run     func() error
}

// Registry holds console commands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds a command. name is the first token of the line (e.g. "reset"), usage a one-line
// description for help. fs is that command's FlagSet (nil for none); run is called after
// fs.Parse(args[1:]) succeeds. Flag output is discarded; parse errors come back from Execute.
func (r *Registry) Register(name, usage string, fs *flag.FlagSet, run func() error) {
	if fs == nil {
		fs = flag.NewFlagSet(name, flag.ContinueOnError)
	}
	fs.SetOutput(io.Discard)
	r.cmds[name] = &Command{Name: name, Usage: usage, FlagSet: fs, Run: run}
}

// Parse tokenizes a console line by spaces. A leading "/" is allowed and dropped.
// Blank lines return nil, false.
func Parse(line string) (args []string, ok bool) {
	line = strings.TrimSpace(line)
	line = strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if line == "" {
		return nil, false
	}
	return strings.Fields(line), true
}

// Execute runs the command in args[0] with args[1:] as flag/positional arguments. Flags are reset
// to their defaults first. Returns an error for unknown command, parse error, or from Run().
func (r *Registry) Execute(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}
	name := args[0]
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("unknown command: %s (try help)", name)
	}
	// Flags start from their defaults on every invocation.
	cmd.FlagSet.VisitAll(func(f *flag.Flag) {
		_ = f.Value.Set(f.DefValue)
	})
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return fmt.Errorf("%s: %s%s", name, cmd.Usage, flagSummary(cmd.FlagSet))
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Run()
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help returns one line per command: name, usage and flags.
func (r *Registry) Help() []string {
	var out []string
	for _, name := range r.Names() {
		c := r.cmds[name]
		out = append(out, fmt.Sprintf("%s - %s%s", name, c.Usage, flagSummary(c.FlagSet)))
	}
	return out
}

func flagSummary(fs *flag.FlagSet) string {
	var parts []string
	fs.VisitAll(func(f *flag.Flag) {
		parts = append(parts, "--"+f.Name)
	})
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, " ") + "]"
}
