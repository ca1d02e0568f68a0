package relay

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	ptylib "github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// bufferSize is the relay chunk size per direction. One buffer is reused
// across iterations; no byte is buffered beyond one chunk between the two
// ends.
const bufferSize = 4096

// Session is a child process running on the slave side of a pty, plus the
// master descriptor the relay drives.
type Session struct {
	Cmd    *exec.Cmd
	Master *os.File

	// Transcript, when set, receives a copy of everything the child
	// writes. Transcript failures never interrupt a live session.
	Transcript io.Writer
}

// Relay shuttles bytes between input/output and the pty master until the
// pty reports that the child's side is gone. The input direction runs as
// its own forwarding task; the caller's goroutine carries the output
// direction. Within each direction bytes are forwarded in order, and every
// successfully read byte is written before the next read.
//
// Returns nil on the pty-closed condition — the child's death, observed
// indirectly, is the only designed termination signal. Any other master
// read error, an output write error, or a non-EOF input read error ends
// the relay with that error.
func (s *Session) Relay(input io.Reader, output io.Writer) error {
	inputErr := make(chan error, 1)
	go s.forwardInput(input, inputErr)

	buf := make([]byte, bufferSize)
	for {
		n, err := s.Master.Read(buf)
		if n > 0 {
			if _, werr := output.Write(buf[:n]); werr != nil {
				return fmt.Errorf("write standard output: %w", werr)
			}
			if s.Transcript != nil {
				_, _ = s.Transcript.Write(buf[:n])
			}
		}
		if err != nil {
			// A failed input read closes the master to unblock this
			// read; report the input failure, not the closed master.
			select {
			case ierr := <-inputErr:
				return ierr
			default:
			}
			if ptyClosed(err) {
				return nil
			}
			return fmt.Errorf("read pty master: %w", err)
		}
	}
}

// forwardInput copies input to the pty master until input ends or the
// master stops accepting writes. End-of-stream on input does not end the
// session: the child may keep producing output long after its input is
// exhausted (e.g. when invoked with stdin redirected from /dev/null). Any
// other input read error is fatal: it is handed to Relay and the master is
// closed so the output loop sees it. When the pty closes first, the task
// stays blocked in Read until the process exits.
func (s *Session) forwardInput(input io.Reader, fatal chan<- error) {
	buf := make([]byte, bufferSize)
	for {
		n, err := input.Read(buf)
		if n > 0 {
			if _, werr := s.Master.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fatal <- fmt.Errorf("read standard input: %w", err)
				s.Master.Close()
			}
			return
		}
	}
}

// ptyClosed reports whether a master read failed because the slave side
// has closed — the normal way the relay learns that the child exited.
// Linux reports EIO; other platforms surface EOF, and a master closed
// during shutdown reads as ErrClosed.
func ptyClosed(err error) bool {
	return errors.Is(err, unix.EIO) || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed)
}

// Resize sets the pty's window size directly on the master.
func (s *Session) Resize(cols, rows uint16) error {
	return ptylib.Setsize(s.Master, &ptylib.Winsize{
		Rows: rows,
		Cols: cols,
	})
}

// Wait reaps the child process.
func (s *Session) Wait() error {
	return s.Cmd.Wait()
}

// Close tears the session down on abnormal exit paths. The master is
// closed first so a child blocked on terminal I/O sees its controlling
// terminal disappear; a child still alive after SIGTERM gets SIGKILL.
func (s *Session) Close() {
	if s.Master != nil {
		s.Master.Close()
	}
	if s.Cmd == nil || s.Cmd.Process == nil {
		return
	}
	if err := s.Cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already gone.
		return
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Cmd.Wait()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		s.Cmd.Process.Kill()
		<-done
	}
}
