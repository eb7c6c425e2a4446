//go:build linux || darwin

package utils

import (
	"os"
	"syscall"
)

// DefaultProcessKiller signals processes through the kill syscall
type DefaultProcessKiller struct{}

// Kill sends signal to the process with pid
func (pk *DefaultProcessKiller) Kill(pid int, signal syscall.Signal) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(signal)
}
