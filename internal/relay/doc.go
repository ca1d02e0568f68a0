// Package relay bridges a process's standard streams and a child process
// running on a freshly allocated pseudoterminal: pty pair allocation,
// terminal mode management with guaranteed restoration, child launch with
// session and controlling-terminal setup, and the bidirectional byte relay
// itself.
package relay
