package relay

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// OpenTranscript opens the transcript target for appending. When path
// names a directory the transcript goes to a fresh relay-<uuid>.log inside
// it, so repeated runs never clobber each other.
func OpenTranscript(path string) (*os.File, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, fmt.Sprintf("relay-%s.log", uuid.New().String()))
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open transcript %s: %w", path, err)
	}
	return f, nil
}
