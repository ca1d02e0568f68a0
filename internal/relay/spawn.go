package relay

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Launch starts prog on the slave side of the pair. The child gets all
// three standard streams bound to the slave, becomes a session leader, and
// acquires the pty as its controlling terminal, which job-control-aware
// programs like shells need to manage their output. On success the
// parent's slave copy is closed; the child keeps its own. Start failure is
// fatal to the caller, not retried — there is no fallback program.
func Launch(pair *Pair, prog string, args ...string) (*Session, error) {
	cmd := exec.Command(prog, args...)
	cmd.Env = os.Environ()
	cmd.Stdin = pair.Slave
	cmd.Stdout = pair.Slave
	cmd.Stderr = pair.Slave
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid:  true,
		Setctty: true,
		Ctty:    0, // fd 0 in the child is the slave
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("exec %s: %w", prog, err)
	}
	pair.CloseSlave()

	return &Session{Cmd: cmd, Master: pair.Master}, nil
}
