//go:build linux || darwin

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// The executor passes the request on fd 3 so the child's own stdio stays
// free for pipes or a PTY.
const requestFd = 3

// initRequest mirrors the executor's wire struct.
type initRequest struct {
	Command    string            `json:"command"`
	Args       []string          `json:"args"`
	Cwd        string            `json:"cwd"`
	Env        map[string]string `json:"env"`
	Rlimits    rlimitSpec        `json:"rlimits"`
	Seccomp    *seccompSpec      `json:"seccomp,omitempty"`
	Landlock   *landlockSpec     `json:"landlock,omitempty"`
	DropCaps   bool              `json:"drop_caps"`
	Namespaced bool              `json:"namespaced"`
}

type rlimitSpec struct {
	CPUTimeSecs   uint64 `json:"cpu_time_secs"`
	MemoryBytes   uint64 `json:"memory_bytes"`
	FileSizeBytes uint64 `json:"file_size_bytes"`
	OpenFiles     uint64 `json:"open_files"`
	Processes     uint64 `json:"processes"`
}

type seccompSpec struct {
	Mode    string   `json:"mode"`
	Allowed []string `json:"allowed,omitempty"`
	Blocked []string `json:"blocked,omitempty"`
}

type landlockSpec struct {
	ReadPaths  []string `json:"read_paths,omitempty"`
	WritePaths []string `json:"write_paths,omitempty"`
	ExecPaths  []string `json:"exec_paths,omitempty"`
}

func readRequest() (initRequest, error) {
	reqFile := os.NewFile(requestFd, "request")
	if reqFile == nil {
		return initRequest{}, fmt.Errorf("request fd missing")
	}
	defer reqFile.Close()
	return decodeRequest(reqFile)
}

func decodeRequest(r io.Reader) (initRequest, error) {
	var req initRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return initRequest{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

func validateRequest(req initRequest) error {
	if req.Command == "" {
		return fmt.Errorf("command is required")
	}
	if req.Cwd == "" {
		return fmt.Errorf("work dir is required")
	}
	return nil
}

func applyRlimits(l rlimitSpec) error {
	set := func(resource int, value uint64, name string) error {
		if value == 0 {
			return nil
		}
		if err := unix.Setrlimit(resource, &unix.Rlimit{Cur: value, Max: value}); err != nil {
			return fmt.Errorf("set rlimit %s: %w", name, err)
		}
		return nil
	}
	if err := set(unix.RLIMIT_CPU, l.CPUTimeSecs, "cpu"); err != nil {
		return err
	}
	if err := set(unix.RLIMIT_FSIZE, l.FileSizeBytes, "fsize"); err != nil {
		return err
	}
	if err := set(unix.RLIMIT_NOFILE, l.OpenFiles, "nofile"); err != nil {
		return err
	}
	if err := set(unix.RLIMIT_NPROC, l.Processes, "nproc"); err != nil {
		return err
	}
	// the cgroup enforces memory too; the rlimit holds when cgroups are off
	return set(unix.RLIMIT_AS, l.MemoryBytes, "as")
}

func buildEnv(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	if len(out) == 0 {
		out = append(out, "PATH=/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin")
	}
	return out
}
