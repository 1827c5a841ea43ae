//go:build windows
// +build windows

package manager

import (
	"os"
	"os/exec"
)

// execReplace runs ssh as a child; Windows has no exec(2).
func execReplace(path string, argv []string) error {
	cmd := exec.Command(path, argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func flushTTYInput() {}
