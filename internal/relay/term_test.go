package relay

import (
	"os"
	"testing"

	ptylib "github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// pipeEnds returns both ends of a pipe, closed at test end. Neither end is
// a terminal, which is what the no-op guard case needs.
func pipeEnds(t *testing.T) (*os.File, *os.File) {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		w.Close()
	})
	return r, w
}

func slaveTermios(t *testing.T, slave *os.File) *unix.Termios {
	t.Helper()
	termios, err := unix.IoctlGetTermios(int(slave.Fd()), unix.TCGETS)
	if err != nil {
		t.Fatalf("get termios: %v", err)
	}
	return termios
}

func TestGuardNoTerminalIsNoOp(t *testing.T) {
	pair := mustPair(t)
	pipeR, pipeW := pipeEnds(t)

	guard, err := NewGuard(pair.Master, pipeR, pipeW)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	if guard != nil {
		t.Fatal("guard must be nil when neither stream is a terminal")
	}
	// The nil guard must be safe on every path that would use a real one.
	guard.Restore()
	if err := guard.Resize(); err != nil {
		t.Fatalf("nil guard resize: %v", err)
	}
}

func TestGuardStdoutTerminal(t *testing.T) {
	target := mustPair(t)
	// The slave of a second pair stands in for the invoking terminal.
	console := mustPair(t)
	pipeR, _ := pipeEnds(t)

	if err := ptylib.Setsize(console.Slave, &ptylib.Winsize{Rows: 24, Cols: 80}); err != nil {
		t.Fatalf("setsize: %v", err)
	}

	guard, err := NewGuard(target.Master, pipeR, console.Slave)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	if guard == nil {
		t.Fatal("expected a guard for a terminal stdout")
	}
	if guard.raw {
		t.Fatal("a stdout-only terminal must never be switched to raw mode")
	}

	rows, cols, err := ptylib.Getsize(target.Master)
	if err != nil {
		t.Fatalf("getsize: %v", err)
	}
	if rows != 24 || cols != 80 {
		t.Fatalf("master size %dx%d, want 24x80 inherited from the terminal", rows, cols)
	}

	if termios := slaveTermios(t, console.Slave); termios.Lflag&unix.ICANON == 0 {
		t.Fatal("stdout terminal lost canonical mode without a raw switch")
	}
	guard.Restore()
}

func TestGuardRawStdinAndRestore(t *testing.T) {
	target := mustPair(t)
	console := mustPair(t)
	_, pipeW := pipeEnds(t)

	if err := ptylib.Setsize(console.Slave, &ptylib.Winsize{Rows: 31, Cols: 99}); err != nil {
		t.Fatalf("setsize: %v", err)
	}

	guard, err := NewGuard(target.Master, console.Slave, pipeW)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	if guard == nil || !guard.raw {
		t.Fatal("a terminal stdin must be switched to raw mode")
	}

	rows, cols, err := ptylib.Getsize(target.Master)
	if err != nil {
		t.Fatalf("getsize: %v", err)
	}
	if rows != 31 || cols != 99 {
		t.Fatalf("master size %dx%d, want 31x99 inherited from the terminal", rows, cols)
	}

	termios := slaveTermios(t, console.Slave)
	if termios.Lflag&unix.ICANON != 0 || termios.Lflag&unix.ECHO != 0 {
		t.Fatal("stdin terminal still canonical/echoing after raw switch")
	}

	// Restoration must bring the original attributes back, and repeated
	// calls must be harmless.
	guard.Restore()
	guard.Restore()
	termios = slaveTermios(t, console.Slave)
	if termios.Lflag&unix.ICANON == 0 || termios.Lflag&unix.ECHO == 0 {
		t.Fatal("terminal attributes not restored")
	}
}
