//go:build unix

package terminal

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

var exitSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT}

// reraise delivers sig again now that this hook no longer catches it
// Another handler still registered for sig receives it instead
func reraise(sig os.Signal) {
	if s, ok := sig.(syscall.Signal); ok {
		unix.Kill(unix.Getpid(), s)
	}
}
