package relay

import (
	"bytes"
	"os"
	"testing"
)

// mustPair allocates a pty pair and registers cleanup for whichever sides
// are still open when the test ends.
func mustPair(t *testing.T) *Pair {
	t.Helper()
	pair, err := OpenPair()
	if err != nil {
		t.Fatalf("open pty pair: %v", err)
	}
	t.Cleanup(pair.Close)
	return pair
}

// drainMaster reads the master until the pty closes and returns everything
// the child side produced.
func drainMaster(t *testing.T, master *os.File) string {
	t.Helper()
	var out bytes.Buffer
	buf := make([]byte, 4096)
	for {
		n, err := master.Read(buf)
		out.Write(buf[:n])
		if err != nil {
			return out.String()
		}
	}
}
