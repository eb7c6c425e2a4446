//go:build windows

package utils

import (
	"os"
	"syscall"
)

// DefaultProcessKiller terminates processes; windows can not deliver SIGINT to a process
type DefaultProcessKiller struct{}

// Kill terminates the process with pid regardless of signal
func (pk *DefaultProcessKiller) Kill(pid int, _ syscall.Signal) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Kill()
}
