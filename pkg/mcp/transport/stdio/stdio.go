// Package stdio provides the reference client-side transport: it spawns a
// child process and speaks line-delimited JSON-RPC over its stdin/stdout,
// the inverse of the teacher's server.RunStdio (pkg/mcp/server/server.go),
// which reads line-delimited requests off its stdin and writes responses to
// its stdout from the server side.
package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	transport "github.com/mutablelogic/go-mcp/pkg/mcp/transport"
)

////////////////////////////////////////////////////////////////////////////
// TYPES

// Transport runs a child process and exchanges newline-delimited JSON-RPC
// messages over its stdin/stdout.
type Transport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	sendMu sync.Mutex
	mu     sync.Mutex
	closed bool

	wg sync.WaitGroup
}

var _ transport.Transport = (*Transport)(nil)

////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New builds a Transport that will run name with args when Connect is
// called. The process is not started until Connect.
func New(name string, args ...string) *Transport {
	return &Transport{cmd: exec.Command(name, args...)}
}

////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Connect starts the child process and begins delivering its stdout, one
// line per message, to sink until the process exits or Close is called.
func (t *Transport) Connect(ctx context.Context, sink transport.Sink) error {
	stdin, err := t.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("mcp: stdio: stdin pipe: %w", err)
	}
	stdout, err := t.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("mcp: stdio: stdout pipe: %w", err)
	}
	if err := t.cmd.Start(); err != nil {
		return fmt.Errorf("mcp: stdio: start: %w", err)
	}

	t.stdin = stdin
	t.stdout = stdout

	t.wg.Add(1)
	go t.readLoop(sink)

	return nil
}

// Send writes message followed by a newline to the child's stdin. Sends
// are serialized so concurrent callers cannot interleave partial lines,
// though the session itself already serializes its own Send calls.
func (t *Transport) Send(ctx context.Context, message []byte) error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return errors.New("stdio: transport is closed")
	}

	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	if _, err := t.stdin.Write(message); err != nil {
		return fmt.Errorf("mcp: stdio: write: %w", err)
	}
	if _, err := t.stdin.Write([]byte{'\n'}); err != nil {
		return fmt.Errorf("mcp: stdio: write: %w", err)
	}
	return nil
}

// Close stops the child process and waits for the read loop to exit. Safe
// to call more than once.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	// Closing stdin signals EOF to a well-behaved child; give it a chance
	// to exit on its own before the read loop gives up and we kill it.
	if t.stdin != nil {
		_ = t.stdin.Close()
	}
	exited := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(exited)
	}()
	select {
	case <-exited:
	case <-time.After(2 * time.Second):
		if t.cmd.Process != nil {
			_ = t.cmd.Process.Kill()
		}
		t.wg.Wait()
	}

	// The child's exit status is not a transport error.
	_ = t.cmd.Wait()
	return nil
}

////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// readLoop scans newline-delimited messages off the child's stdout and
// hands each one to sink in arrival order, satisfying the Transport
// contract's strictly-sequential delivery guarantee.
func (t *Transport) readLoop(sink transport.Sink) {
	defer t.wg.Done()

	scanner := bufio.NewScanner(t.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		sink(cp)
	}
}
