//go:build !windows

package manager

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

func execReplace(path string, argv []string) error {
	return syscall.Exec(path, argv, os.Environ())
}

// flushTTYInput discards input still queued on the controlling terminal
// (late OSC/DSR replies to the TUI) so ssh does not see them as keystrokes.
func flushTTYInput() {
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err != nil {
		return
	}
	defer tty.Close()

	fd := int(tty.Fd())
	_ = tcflushInput(fd)
	drainTTY(fd, 200*time.Millisecond, 75*time.Millisecond)
}

// drainTTY reads and drops bytes until the terminal stays quiet for idle,
// giving up after limit.
func drainTTY(fd int, limit, idle time.Duration) {
	if err := unix.SetNonblock(fd, true); err != nil {
		return
	}
	defer unix.SetNonblock(fd, false)

	now := time.Now()
	hard := now.Add(limit)
	quiet := now.Add(idle)
	buf := make([]byte, 512)
	for now.Before(hard) && now.Before(quiet) {
		n, err := unix.Read(fd, buf)
		switch {
		case n > 0:
			quiet = time.Now().Add(idle)
		case err == unix.EAGAIN || err == unix.EINTR:
			time.Sleep(5 * time.Millisecond)
		default:
			return
		}
		now = time.Now()
	}
}
