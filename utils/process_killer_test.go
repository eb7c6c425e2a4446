//go:build linux || darwin

package utils

import (
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultProcessKiller_Kill(t *testing.T) {
	t.Run("SignalsSelf", func(t *testing.T) {
		received := make(chan os.Signal, 1)
		signal.Notify(received, syscall.SIGUSR1)
		defer signal.Stop(received)

		assert.Nil(t, NewProcessKiller().Kill(os.Getpid(), syscall.SIGUSR1))

		select {
		case sig := <-received:
			assert.Equal(t, syscall.SIGUSR1, sig)
		case <-time.After(5 * time.Second):
			t.Error("signal not delivered")
		}
	})
	t.Run("NoSuchProcess", func(t *testing.T) {
		assert.NotNil(t, NewProcessKiller().Kill(1<<22+7, syscall.SIGUSR1))
	})
}
