// Package pty provides pseudo-terminal sessions for interactive commands.
package pty

import (
	"os"
	"sync"

	"github.com/creack/pty"

	"agentcage/pkg/errors"
)

// Config requests a PTY with an initial window size.
type Config struct {
	Rows uint16 `yaml:"rows"`
	Cols uint16 `yaml:"cols"`
	Term string `yaml:"term"`
}

// DefaultConfig is a conventional 80x24 terminal.
func DefaultConfig() Config {
	return Config{Rows: 24, Cols: 80, Term: "xterm-256color"}
}

// Session owns one master/slave PTY pair. Read and Write operate on the
// master side; the slave side is handed to the child as its stdio. Close is
// idempotent and must run on every exit path.
type Session struct {
	master *os.File
	slave  *os.File

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// Open allocates a PTY pair and applies the initial window size.
func Open(cfg Config) (*Session, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.PtyOpenFailed)
	}
	s := &Session{master: master, slave: slave}
	if cfg.Rows > 0 || cfg.Cols > 0 {
		if err := s.Resize(cfg.Rows, cfg.Cols); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}

// Tty returns the slave end, wired as the child's stdin/stdout/stderr.
func (s *Session) Tty() *os.File {
	return s.slave
}

// Read reads the child's terminal output from the master side.
func (s *Session) Read(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, errors.New(errors.PtyClosed)
	}
	return s.master.Read(p)
}

// Write sends input to the child's terminal.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return 0, errors.New(errors.PtyClosed)
	}
	return s.master.Write(p)
}

// Resize changes the terminal window size. The kernel delivers SIGWINCH to
// the foreground process group on the slave side.
func (s *Session) Resize(rows, cols uint16) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.New(errors.PtyClosed)
	}
	ws := &pty.Winsize{Rows: rows, Cols: cols}
	if err := pty.Setsize(s.master, ws); err != nil {
		return errors.Wrap(err, errors.PtyResizeFailed)
	}
	return nil
}

// Size reports the current window size.
func (s *Session) Size() (rows, cols uint16, err error) {
	ws, err := pty.GetsizeFull(s.master)
	if err != nil {
		return 0, 0, errors.Wrap(err, errors.PtyResizeFailed)
	}
	return ws.Rows, ws.Cols, nil
}

// CloseTty closes only the slave end. The parent drops its copy after spawn
// so master reads observe EOF when the child exits.
func (s *Session) CloseTty() error {
	if s.slave == nil {
		return nil
	}
	err := s.slave.Close()
	s.slave = nil
	return err
}

// Close releases both ends. Safe to call multiple times and from any path.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		if s.slave != nil {
			if err := s.slave.Close(); err != nil {
				s.closeErr = err
			}
			s.slave = nil
		}
		if err := s.master.Close(); err != nil && s.closeErr == nil {
			s.closeErr = err
		}
	})
	return s.closeErr
}
