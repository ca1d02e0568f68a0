package relay

import (
	"fmt"
	"os"

	ptylib "github.com/creack/pty"
)

// Pair is an allocated pseudoterminal. The master side stays with the
// relaying process; the slave side becomes the child's controlling
// terminal. Both descriptors refer to the same kernel pty device.
type Pair struct {
	Master    *os.File
	Slave     *os.File
	SlavePath string
}

// OpenPair allocates a new pty pair and resolves the slave device path.
// The grant/unlock handshake with the kernel happens here; these are
// one-time resource acquisitions, so failure is not retried.
func OpenPair() (*Pair, error) {
	master, slave, err := ptylib.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty pair: %w", err)
	}
	return &Pair{
		Master:    master,
		Slave:     slave,
		SlavePath: slave.Name(),
	}, nil
}

// CloseSlave closes the relaying process's copy of the slave descriptor.
// It must not stay open once the child is running, or the master would
// never report that the child's side has gone away.
func (p *Pair) CloseSlave() {
	if p.Slave != nil {
		p.Slave.Close()
		p.Slave = nil
	}
}

// Close releases both sides of the pair. Used on setup failures before a
// child owns the slave.
func (p *Pair) Close() {
	p.CloseSlave()
	if p.Master != nil {
		p.Master.Close()
		p.Master = nil
	}
}
