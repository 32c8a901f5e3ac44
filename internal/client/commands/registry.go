package commands

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"chessgame/internal/client/display"
	"chessgame/internal/client/session"
)

// ErrExit is returned by the exit command to stop the REPL
var ErrExit = errors.New("exit requested")

// Command defines a client command with its handler
type Command struct {
	Name        string
	ShortName   string
	Description string
	Usage       string
	Group       string
	Handler     func(*session.Session, []string) error
}

// Registry manages command registration and execution
type Registry struct {
	session  *session.Session
	commands map[string]*Command
}

func NewRegistry(s *session.Session) *Registry {
	r := &Registry{
		session:  s,
		commands: make(map[string]*Command),
	}

	r.registerGameCommands()
	r.registerDebugCommands()

	r.Register(&Command{
		Name:        "help",
		ShortName:   "?",
		Description: "Show available commands",
		Usage:       "help [command]",
		Group:       "Utility",
		Handler:     r.helpHandler,
	})

	r.Register(&Command{
		Name:        "exit",
		ShortName:   "x",
		Description: "Exit the client",
		Usage:       "exit",
		Group:       "Utility",
		Handler: func(*session.Session, []string) error {
			return ErrExit
		},
	})

	return r
}

func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	if cmd.ShortName != "" {
		r.commands[cmd.ShortName] = cmd
	}
}

// Names returns every primary command name, for completion
func (r *Registry) Names() []string {
	var names []string
	for key, cmd := range r.commands {
		if key == cmd.Name {
			names = append(names, key)
		}
	}
	sort.Strings(names)
	return names
}

// Execute runs one input line. It returns ErrExit when the user quits.
func (r *Registry) Execute(input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}

	cmd, exists := r.commands[parts[0]]
	if !exists {
		fmt.Fprintf(r.session.Out, "%sUnknown command: %s%s\n", display.Red, parts[0], display.Reset)
		fmt.Fprintf(r.session.Out, "Type 'help' for available commands\n")
		return nil
	}

	r.session.Client.SetVerbose(r.session.Verbose)

	err := cmd.Handler(r.session, parts[1:])
	if errors.Is(err, ErrExit) {
		return err
	}
	if err != nil {
		fmt.Fprintf(r.session.Out, "%sError: %s%s\n", display.Red, err.Error(), display.Reset)
	}
	return nil
}

func (r *Registry) helpHandler(s *session.Session, args []string) error {
	if len(args) > 0 {
		cmd, exists := r.commands[args[0]]
		if !exists {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Fprintf(s.Out, "\n%s%s%s - %s\n", display.Cyan, cmd.Name, display.Reset, cmd.Description)
		if cmd.ShortName != "" {
			fmt.Fprintf(s.Out, "Short form: %s%s%s\n", display.Cyan, cmd.ShortName, display.Reset)
		}
		fmt.Fprintf(s.Out, "Usage: %s\n", cmd.Usage)
		return nil
	}

	fmt.Fprintf(s.Out, "\n%sAvailable Commands:%s\n\n", display.Cyan, display.Reset)

	for _, group := range []string{"Game", "Utility"} {
		fmt.Fprintf(s.Out, "%s%s:%s\n", display.Yellow, group, display.Reset)
		for _, name := range r.Names() {
			cmd := r.commands[name]
			if cmd.Group != group {
				continue
			}
			shortPart := "    "
			if cmd.ShortName != "" {
				shortPart = fmt.Sprintf("[%s%s%s] ", display.Cyan, cmd.ShortName, display.Reset)
			}
			fmt.Fprintf(s.Out, "  %s%-10s %s\n", shortPart, cmd.Name, cmd.Description)
		}
		fmt.Fprintln(s.Out)
	}
	return nil
}
