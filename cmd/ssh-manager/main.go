package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"

	"golang.org/x/term"

	"ssh-manager/pkg/manager"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "ssh-manager\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  ssh-manager [config-path]\n\n")
		fmt.Fprintf(os.Stderr, "Browse, search, add and connect to hosts in an OpenSSH client config\n")
		fmt.Fprintf(os.Stderr, "(default ~/.ssh/config). When stdout is not a terminal the hosts are\n")
		fmt.Fprintf(os.Stderr, "listed one per line instead.\n")
		fmt.Fprintf(os.Stderr, `
Environment:
  SSH_MANAGER_SETTINGS  settings file (default ~/.config/ssh-manager/settings.yaml)
  SSH_MANAGER_THEME     auto|dark|light|catppuccin-mocha|none
  SSH_MANAGER_DEBUG     write debug log to this file
  NO_COLOR              disable colors

Examples:
  ssh-manager
  ssh-manager ./testdata/config
  ssh-manager | grep prod
`)
	}
}

func main() {
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	}

	settings, _, err := manager.LoadSettings("")
	if err != nil && !errors.Is(err, manager.ErrSettingsNotFound) {
		fmt.Fprintf(os.Stderr, "ssh-manager: %v (using defaults)\n", err)
		settings = manager.DefaultSettings()
	}

	store, err := manager.NewConfigStore(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssh-manager: %v\n", err)
		os.Exit(1)
	}
	ctrl, err := manager.NewController(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssh-manager: %v\n", err)
		os.Exit(1)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		printHosts(os.Stdout, store.Hosts())
		return
	}

	name, err := manager.RunTUI(ctrl, manager.UIOptions{
		Theme:            manager.LoadTheme(settings.ThemeName()),
		MaxResults:       settings.MaxResults,
		ShowFingerprints: settings.Fingerprints(),
		Watch:            settings.Watch(),
		DebugLog:         os.Getenv("SSH_MANAGER_DEBUG"),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ssh-manager: %v\n", err)
		os.Exit(1)
	}
	if name == "" {
		return
	}

	manager.WriteConnecting(os.Stdout, name)
	if err := manager.Handoff(name, settings.SSHFallbackPath); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "Error launching ssh: %v\n", err)
		os.Exit(1)
	}
}

func printHosts(w io.Writer, hosts []manager.HostRecord) {
	for _, h := range hosts {
		fmt.Fprintf(w, "%s\t%s\n", h.Name, h.Target())
	}
}
