//go:build linux || darwin

package pty

import (
	"testing"

	"agentcage/pkg/errors"
)

func TestOpenAndResize(t *testing.T) {
	s, err := Open(Config{Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	rows, cols, err := s.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if rows != 24 || cols != 80 {
		t.Errorf("size = %dx%d, want 24x80", rows, cols)
	}

	if err := s.Resize(50, 132); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	rows, cols, _ = s.Size()
	if rows != 50 || cols != 132 {
		t.Errorf("size after resize = %dx%d, want 50x132", rows, cols)
	}
}

func TestEcho(t *testing.T) {
	s, err := Open(DefaultConfig())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	// a fresh PTY line discipline echoes input back to the master
	msg := []byte("hello\n")
	if _, err := s.Write(msg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := make([]byte, 64)
	n, err := s.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n == 0 {
		t.Error("expected echoed bytes")
	}
}

func TestCloseIdempotent(t *testing.T) {
	s, err := Open(DefaultConfig())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if _, err := s.Read(make([]byte, 1)); !errors.Is(err, errors.PtyClosed) {
		t.Errorf("Read after close = %v, want PtyClosed", err)
	}
	if _, err := s.Write([]byte("x")); !errors.Is(err, errors.PtyClosed) {
		t.Errorf("Write after close = %v, want PtyClosed", err)
	}
	if err := s.Resize(10, 10); !errors.Is(err, errors.PtyClosed) {
		t.Errorf("Resize after close = %v, want PtyClosed", err)
	}
}
