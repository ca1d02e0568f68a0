package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/PiranhaCodes/ptyrelay/internal/relay"
)

func main() {
	flags := pflag.NewFlagSet("ptyrelay", pflag.ContinueOnError)
	// Flags after the program name belong to the child.
	flags.SetInterspersed(false)
	shell := flags.BoolP("shell", "s", false, "Run the user's shell instead of naming a program")
	record := flags.String("record", "", "Append a transcript of child output to this file or directory")
	verbose := flags.BoolP("verbose", "v", false, "Print diagnostics on standard error")
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] program_name [parameters]\n", os.Args[0])
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.New(io.Discard, "[relay] ", log.LstdFlags)
	if *verbose {
		logger.SetOutput(os.Stderr)
	}

	var prog string
	args := flags.Args()
	switch {
	case len(args) > 0:
		prog, args = args[0], args[1:]
	case *shell:
		detected, err := relay.DetectShell()
		if err != nil {
			os.Exit(fatal(err))
		}
		prog, args = detected, nil
	default:
		flags.Usage()
		os.Exit(1)
	}

	os.Exit(run(prog, args, *record, logger))
}

// run drives the relay: allocate the pty, arm the terminal guard, launch
// the child on the slave, then relay until the pty closes. Returned as the
// process exit status so deferred restoration runs before os.Exit.
func run(prog string, args []string, record string, logger *log.Logger) int {
	pair, err := relay.OpenPair()
	if err != nil {
		return fatal(err)
	}
	logger.Printf("allocated pty, slave %s", pair.SlavePath)

	// Signal delivery is set up before the terminal goes raw, so an
	// interrupt arriving once raw mode is visible is queued rather than
	// killing the process with the terminal unrestored.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGWINCH)

	guard, err := relay.NewGuard(pair.Master, os.Stdin, os.Stdout)
	if err != nil {
		pair.Close()
		return fatal(err)
	}
	defer guard.Restore()

	// SIGINT/SIGTERM end the relay in an orderly way: restore the
	// terminal, then leave. The child may receive its own interrupt from
	// the pty's line discipline; nothing is forwarded here. SIGWINCH
	// pushes the invoking terminal's new size to the pty.
	go func() {
		for sig := range signals {
			if sig == syscall.SIGWINCH {
				if err := guard.Resize(); err != nil {
					logger.Printf("resize: %v", err)
				}
				continue
			}
			logger.Printf("caught %v, shutting down", sig)
			guard.Restore()
			os.Exit(0)
		}
	}()

	var transcript *os.File
	if record != "" {
		transcript, err = relay.OpenTranscript(record)
		if err != nil {
			pair.Close()
			return fatal(err)
		}
		defer transcript.Close()
		logger.Printf("recording transcript to %s", transcript.Name())
	}

	sess, err := relay.Launch(pair, prog, args...)
	if err != nil {
		pair.Close()
		return fatal(err)
	}
	if transcript != nil {
		sess.Transcript = transcript
	}

	if err := sess.Relay(os.Stdin, os.Stdout); err != nil {
		sess.Close()
		return fatal(err)
	}

	// Reap the child. Its exit status does not change ours: the pty
	// closing is the success signal.
	_ = sess.Wait()
	logger.Printf("child exited, pty closed")
	return 0
}

// fatal prints a descriptive message to standard error, with the numeric
// OS error code when one exists, and returns the failure exit status.
func fatal(err error) int {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		fmt.Fprintf(os.Stderr, "ptyrelay: %v (errno %d)\n", err, int(errno))
	} else {
		fmt.Fprintf(os.Stderr, "ptyrelay: %v\n", err)
	}
	return 1
}
