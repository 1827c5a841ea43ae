//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package manager

import "golang.org/x/sys/unix"

// FREAD from <sys/fcntl.h>; TIOCFLUSH takes a pointer to it.
const fread = 0x1

// tcflushInput is tcflush(fd, TCIFLUSH).
func tcflushInput(fd int) error {
	return unix.IoctlSetPointerInt(fd, unix.TIOCFLUSH, fread)
}
