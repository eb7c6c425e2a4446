package utils

import "syscall"

// ProcessKiller sends a signal to a process; the router signals itself to shut down or restart when its
// configuration file changes
type ProcessKiller interface {
	Kill(pid int, signal syscall.Signal) error
}

// NewProcessKiller returns the platform's ProcessKiller
func NewProcessKiller() ProcessKiller {
	return &DefaultProcessKiller{}
}
