// Copyright © 2025 Tailpager contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/child/supervisor.go
// Summary: Child-process supervisor. Spawns the wrapped command on a pty,
// reads its stdout line by line onto a bounded channel, writes bytes to its
// stdin, and reaps its exit status.

package child

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// stdinQueueDepth and lineQueueDepth bound the cross-thread channels so a
// bursty producer cannot grow memory unboundedly between frames.
const (
	lineQueueDepth  = 4096
	stdinQueueDepth = 256
)

// Supervisor owns the pty-attached child process and its two I/O
// goroutines.
type Supervisor struct {
	cmd *exec.Cmd
	pty *os.File

	// Lines delivers one entry per newline-terminated stdout record, in
	// the child's emission order. Closed by the reader goroutine on EOF,
	// never by a consumer.
	Lines chan string

	stdin chan []byte

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu         sync.Mutex
	exitStatus string
}

// Spawn launches name with args attached to a new pty sized cols x rows,
// and starts the reader/writer goroutines.
func Spawn(name string, args []string, cols, rows int) (*Supervisor, error) {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
	)

	f, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("spawn child %q: %w", name, err)
	}

	s := &Supervisor{
		cmd:   cmd,
		pty:   f,
		Lines: make(chan string, lineQueueDepth),
		stdin: make(chan []byte, stdinQueueDepth),
		stop:  make(chan struct{}),
	}
	s.wg.Add(2)
	go s.readLoop()
	go s.writeLoop()
	return s, nil
}

// LineChan exposes the stdout line channel as receive-only, for callers
// that hold the supervisor behind an interface.
func (s *Supervisor) LineChan() <-chan string { return s.Lines }

// SetSize propagates a terminal resize to the child's pty.
func (s *Supervisor) SetSize(cols, rows int) error {
	return pty.Setsize(s.pty, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// WriteByte queues a single byte for the child's stdin. Writes racing a
// dead child are dropped rather than surfaced.
func (s *Supervisor) WriteByte(b byte) {
	select {
	case s.stdin <- []byte{b}:
	case <-s.stop:
	}
}

// readLoop is the child-stdout reader thread: it blocks on the pty,
// emitting one Line per newline-terminated record, and reaps the child's
// exit status once the pty disconnects.
func (s *Supervisor) readLoop() {
	defer s.wg.Done()
	defer close(s.Lines)

	scanner := bufio.NewScanner(s.pty)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		select {
		case s.Lines <- scanner.Text():
		case <-s.stop:
			return
		}
	}

	err := s.cmd.Wait()
	s.mu.Lock()
	s.exitStatus = statusString(err)
	s.mu.Unlock()
}

// writeLoop is the child-stdin writer thread: it blocks on the byte
// channel and writes to the child's stdin, terminating when the channel or
// the stop signal closes.
func (s *Supervisor) writeLoop() {
	defer s.wg.Done()
	for {
		select {
		case b, ok := <-s.stdin:
			if !ok {
				return
			}
			if _, err := s.pty.Write(b); err != nil {
				// TransientIOError: the child has exited or the pty
				// closed underneath us. Nothing further to do; the
				// reader goroutine will observe EOF and report exit.
				continue
			}
		case <-s.stop:
			return
		}
	}
}

// ExitStatus returns the child's reaped exit status, valid once Lines has
// been drained to closed.
func (s *Supervisor) ExitStatus() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitStatus
}

// Stop kills the child and tears down both I/O goroutines. Safe to call
// more than once.
func (s *Supervisor) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.pty.Close()
	})
	s.wg.Wait()
}

func statusString(waitErr error) string {
	if waitErr == nil {
		return "exit status 0"
	}
	return waitErr.Error()
}
