package commands

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"chessgame/internal/client/display"
	"chessgame/internal/client/session"
)

func (r *Registry) registerDebugCommands() {
	r.Register(&Command{
		Name:        "health",
		ShortName:   ".",
		Description: "Check server health",
		Usage:       "health",
		Group:       "Utility",
		Handler:     healthHandler,
	})

	r.Register(&Command{
		Name:        "url",
		ShortName:   "/",
		Description: "Set API base URL",
		Usage:       "url [apiUrl]",
		Group:       "Utility",
		Handler:     urlHandler,
	})

	r.Register(&Command{
		Name:        "raw",
		ShortName:   ":",
		Description: "Send raw API request",
		Usage:       "raw <method> <path> [json-body]",
		Group:       "Utility",
		Handler:     rawRequestHandler,
	})

	r.Register(&Command{
		Name:        "verbose",
		ShortName:   "v",
		Description: "Toggle verbose API output",
		Usage:       "verbose",
		Group:       "Utility",
		Handler:     verboseHandler,
	})

	r.Register(&Command{
		Name:        "clear",
		ShortName:   "-",
		Description: "Clear screen",
		Usage:       "clear",
		Group:       "Utility",
		Handler:     clearHandler,
	})
}

func healthHandler(s *session.Session, args []string) error {
	resp, err := s.Client.Health()
	if err != nil {
		return err
	}

	fmt.Fprintf(s.Out, "%sServer Health:%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(s.Out, "  Status:  %s\n", resp.Status)
	t := time.Unix(resp.Time, 0)
	fmt.Fprintf(s.Out, "  Time:    %s\n", t.Format("2006-01-02 15:04:05"))
	if resp.Storage != "" {
		fmt.Fprintf(s.Out, "  Storage: %s\n", resp.Storage)
	}
	fmt.Fprintf(s.Out, "  Games:   %d\n", resp.Games)
	return nil
}

func urlHandler(s *session.Session, args []string) error {
	if len(args) == 0 {
		fmt.Fprintf(s.Out, "Current API URL: %s\n", s.APIBaseURL)
		return nil
	}

	url := args[0]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}
	s.SetAPIBaseURL(url)

	fmt.Fprintf(s.Out, "%sAPI URL set to: %s%s\n", display.Cyan, url, display.Reset)
	return nil
}

func rawRequestHandler(s *session.Session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: raw <method> <path> [json-body]")
	}

	method := strings.ToUpper(args[0])
	path := args[1]

	body := ""
	if len(args) > 2 {
		body = strings.Join(args[2:], " ")
	}

	return s.Client.RawRequest(method, path, body)
}

func verboseHandler(s *session.Session, args []string) error {
	s.Verbose = !s.Verbose
	fmt.Fprintf(s.Out, "Verbose: %t\n", s.Verbose)
	return nil
}

func clearHandler(s *session.Session, args []string) error {
	cmd := exec.Command("clear")
	cmd.Stdout = s.Out
	return cmd.Run()
}
