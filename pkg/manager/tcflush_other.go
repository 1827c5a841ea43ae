//go:build !windows && !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package manager

func tcflushInput(int) error { return nil }
