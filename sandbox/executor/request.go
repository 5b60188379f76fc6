package executor

import (
	"encoding/json"
	"os"

	"agentcage/pkg/errors"
	"agentcage/sandbox/isolation"
	"agentcage/sandbox/limits"
)

// initRequest is the wire struct handed to the sandbox-init helper on fd 3.
// The helper keeps a mirrored declaration; both sides marshal with the same
// json tags.
type initRequest struct {
	Command    string                  `json:"command"`
	Args       []string                `json:"args"`
	Cwd        string                  `json:"cwd"`
	Env        map[string]string       `json:"env"`
	Rlimits    rlimitSpec              `json:"rlimits"`
	Seccomp    *isolation.SeccompSpec  `json:"seccomp,omitempty"`
	Landlock   *isolation.LandlockSpec `json:"landlock,omitempty"`
	DropCaps   bool                    `json:"drop_caps"`
	Namespaced bool                    `json:"namespaced"`
}

type rlimitSpec struct {
	CPUTimeSecs   uint64 `json:"cpu_time_secs"`
	MemoryBytes   uint64 `json:"memory_bytes"`
	FileSizeBytes uint64 `json:"file_size_bytes"`
	OpenFiles     uint64 `json:"open_files"`
	Processes     uint64 `json:"processes"`
}

func rlimitsFrom(l limits.ResourceLimits) rlimitSpec {
	return rlimitSpec{
		CPUTimeSecs:   l.CPUTimeSecs,
		MemoryBytes:   l.MemoryBytes,
		FileSizeBytes: l.FileSizeBytes,
		OpenFiles:     l.OpenFiles,
		Processes:     l.Processes,
	}
}

// requestPipe serializes the request into an inheritable pipe. The returned
// read end goes into the child's ExtraFiles; the parent closes it after
// spawn while a goroutine finishes feeding the write end.
func requestPipe(req initRequest) (*os.File, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(err, errors.SpawnFailed)
	}
	go func() {
		enc := json.NewEncoder(w)
		_ = enc.Encode(req)
		_ = w.Close()
	}()
	return r, nil
}
