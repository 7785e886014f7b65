//go:build windows

package integration

import (
	"errors"
	"os"
	"syscall"
)

func terminationSignals() []os.Signal {
	return []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
	}
}

// Windows cannot deliver console signals to another process through os.Process.
func sendSignal(*os.Process, os.Signal) error {
	return errors.New("signals are not supported on windows")
}
