package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"agentcage/pkg/logger"
	"agentcage/sandbox/executor"
	"agentcage/sandbox/profile"
	"agentcage/sandbox/pty"
	"agentcage/sandbox/result"

	"github.com/google/shlex"
)

const defaultConfigPath = "configs/agentcage.yaml"

type envFlags map[string]string

func (e envFlags) String() string { return "" }

func (e envFlags) Set(raw string) error {
	k, v, ok := strings.Cut(raw, "=")
	if !ok || k == "" {
		return fmt.Errorf("want KEY=VALUE, got %q", raw)
	}
	e[k] = v
	return nil
}

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	profileName := flag.String("profile", "", "Sandbox profile name")
	cwd := flag.String("cwd", "", "Working directory for the command")
	execID := flag.String("id", "", "Execution id (generated when empty)")
	timeout := flag.Duration("timeout", 0, "Override wall-time limit (e.g. 30s)")
	usePty := flag.Bool("pty", false, "Run the command on a pseudo-terminal")
	listProfiles := flag.Bool("list-profiles", false, "List available profiles and exit")
	env := envFlags{}
	flag.Var(env, "env", "Extra environment variable KEY=VALUE (repeatable)")
	flag.Parse()

	cfg, err := loadAppConfig(*configPath, *configPath != defaultConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(2)
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(2)
	}
	defer func() {
		_ = logger.Sync()
	}()

	repo := profile.NewRepository(cfg.ProfileDir)

	if *listProfiles {
		for _, name := range repo.List() {
			fmt.Println(name)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: agentcage [flags] \"command args...\"")
		flag.PrintDefaults()
		os.Exit(2)
	}

	argv, err := shlex.Split(flag.Arg(0))
	if err != nil || len(argv) == 0 {
		fmt.Fprintf(os.Stderr, "parse command failed: %v\n", err)
		os.Exit(2)
	}

	name := *profileName
	if name == "" {
		name = cfg.DefaultProfile
	}
	prof, err := repo.Get(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load profile %q failed: %v\n", name, err)
		os.Exit(2)
	}

	workDir := *cwd
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			fmt.Fprintf(os.Stderr, "resolve working directory failed: %v\n", err)
			os.Exit(2)
		}
	}

	id := *execID
	if id == "" {
		id = fmt.Sprintf("cli-%d", time.Now().UnixNano())
	}

	ec := executor.ExecutionContext{
		ExecutionID: id,
		Command:     argv[0],
		Args:        argv[1:],
		Cwd:         workDir,
		Env:         environMap(env),
		Profile:     prof,
	}
	if *timeout > 0 {
		ec.Deadline = time.Now().Add(*timeout)
	}
	if *usePty {
		ptyCfg := pty.DefaultConfig()
		ec.Pty = &ptyCfg
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out, err := executor.New(cfg.Executor, nil).Execute(ctx, ec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "execute failed: %v\n", err)
		os.Exit(1)
	}

	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode result failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(encoded))
	os.Exit(exitStatus(out))
}

// environMap merges the caller's environment with -env overrides; the
// profile's environment policy decides what actually reaches the child.
func environMap(extra envFlags) map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func exitStatus(out result.ExecutionOutput) int {
	switch out.Exit.Kind {
	case result.ExitNormal:
		return out.Exit.Code
	case result.ExitTimedOut:
		return 124
	default:
		return 1
	}
}
