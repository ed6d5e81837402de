//go:build !unix && !windows

package terminal

import (
	"os"
)

// NewPlatform returns a stream platform over stdin/stdout
func NewPlatform() (Platform, error) {
	return NewStreamPlatform(os.Stdin, os.Stdout), nil
}

func resetTerminalMode() {}
