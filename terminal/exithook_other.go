//go:build !unix

package terminal

import (
	"os"
)

var exitSignals = []os.Signal{os.Interrupt}

// reraise cannot redeliver a console control event; exit as it would
func reraise(os.Signal) {
	os.Exit(1)
}
