package relay

import (
	"fmt"
	"os"
	"sync"

	ptylib "github.com/creack/pty"
	"golang.org/x/term"
)

// Guard owns the saved attributes of the invoking terminal and puts them
// back when the relay is done. A nil *Guard is a valid no-op: when neither
// stdin nor stdout is a terminal there is nothing to manage and the relay
// runs as a plain pipe bridge.
type Guard struct {
	owner   *os.File // the terminal whose attributes were captured
	master  *os.File
	state   *term.State
	raw     bool
	restore sync.Once
}

// NewGuard finds the invoking terminal (stdin preferred, stdout as the
// fallback), pushes its window size to the pty master, and captures its
// attribute set. When the terminal is stdin, stdin is also switched to raw
// mode so every typed byte reaches the child verbatim; a stdout-only
// terminal still supplies size and saved attributes but is never switched.
// Returns (nil, nil) when neither stream is a terminal.
func NewGuard(master, stdin, stdout *os.File) (*Guard, error) {
	var owner *os.File
	var raw bool
	switch {
	case term.IsTerminal(int(stdin.Fd())):
		owner, raw = stdin, true
	case term.IsTerminal(int(stdout.Fd())):
		owner = stdout
	default:
		return nil, nil
	}

	if err := ptylib.InheritSize(owner, master); err != nil {
		return nil, fmt.Errorf("propagate window size: %w", err)
	}

	var state *term.State
	var err error
	if raw {
		// MakeRaw returns the attributes as they were before the switch.
		state, err = term.MakeRaw(int(owner.Fd()))
	} else {
		state, err = term.GetState(int(owner.Fd()))
	}
	if err != nil {
		return nil, fmt.Errorf("query terminal attributes: %w", err)
	}

	return &Guard{owner: owner, master: master, state: state, raw: raw}, nil
}

// Restore reapplies the saved attributes to the captured terminal. Every
// exit path calls it; only the first call touches the terminal.
func (g *Guard) Restore() {
	if g == nil {
		return
	}
	g.restore.Do(func() {
		term.Restore(int(g.owner.Fd()), g.state)
	})
}

// Resize re-propagates the captured terminal's current size to the pty
// master. Called when the invoking terminal is resized.
func (g *Guard) Resize() error {
	if g == nil {
		return nil
	}
	return ptylib.InheritSize(g.owner, g.master)
}
