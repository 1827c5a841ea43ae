package manager

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// ResolveSSHPath returns the ssh executable: the first "ssh" on PATH, else
// fallback, else DefaultSSHFallbackPath.
func ResolveSSHPath(fallback string) string {
	if p, err := lookPath("ssh"); err == nil && p != "" {
		return p
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return DefaultSSHFallbackPath
}

// SSHArgv is the argument vector handed to the ssh client for host name.
func SSHArgv(name string) []string {
	return []string{"ssh", name}
}

// WriteConnecting clears the screen and announces the handoff.
func WriteConnecting(w io.Writer, name string) {
	_, _ = fmt.Fprintf(w, "\033[H\033[JConnecting to %s...\n", name)
}

// Handoff replaces the current process with `ssh <name>`. It only returns on
// failure. Platforms without exec run ssh as a child and return its error,
// which is an *exec.ExitError when ssh itself exited non-zero.
func Handoff(name, fallback string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("empty host name")
	}
	path := ResolveSSHPath(fallback)
	restoreTerminalForExec()
	flushTTYInput()
	return execReplace(path, SSHArgv(name))
}

// restoreTerminalForExec undoes what the TUI may have left behind on the
// terminal: a hidden cursor, active SGR attributes, raw mode. Errors are
// ignored since ssh renegotiates the tty anyway.
func restoreTerminalForExec() {
	_, _ = io.WriteString(os.Stdout, showCursor+resetAttrs)

	stty, err := exec.LookPath("stty")
	if err != nil {
		return
	}
	cmd := exec.Command(stty, "sane")
	cmd.Stdin = os.Stdin
	if tty, err := os.Open("/dev/tty"); err == nil {
		defer tty.Close()
		cmd.Stdin = tty
	}
	_ = cmd.Run()
}

const (
	showCursor = "\033[?25h"
	resetAttrs = "\033[0m"
)
