package util

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrCommandNotFound is returned when none of the requested helpers is on PATH.
var ErrCommandNotFound = errors.New("command not found")

// HasCommand checks if a command is available in the system PATH.
func HasCommand(name string) bool {
	_, err := LookCommand(name)
	return err == nil
}

// FirstCommand returns the first of names that resolves on PATH.
func FirstCommand(names ...string) (string, bool) {
	for _, n := range names {
		if HasCommand(n) {
			return n, true
		}
	}
	return "", false
}

// LookCommand resolves name on PATH. Blank names never resolve.
func LookCommand(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrCommandNotFound)
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return path, nil
}
