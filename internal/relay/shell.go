package relay

import (
	"fmt"
	"os"
	"strings"
)

// shellFallbacks are tried in order when $SHELL is unusable.
var shellFallbacks = []string{
	"/bin/bash",
	"/bin/zsh",
	"/bin/sh",
}

// DetectShell picks the program to relay when the invocation asked for a
// shell rather than naming one: $SHELL when it points at something
// executable, otherwise the first system shell that does.
func DetectShell() (string, error) {
	if shell := os.Getenv("SHELL"); shell != "" && isExecutable(shell) {
		return shell, nil
	}

	for _, candidate := range shellFallbacks {
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("no usable shell: $SHELL is unset or not executable, and neither is %s",
		strings.Join(shellFallbacks, ", "))
}

// isExecutable reports whether path is a regular file with an execute bit.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	mode := info.Mode()
	return mode.IsRegular() && mode&0111 != 0
}
