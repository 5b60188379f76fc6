//go:build !linux && !darwin

package main

import (
	"fmt"
	"os"
	"runtime"
)

func main() {
	_, _ = fmt.Fprintf(os.Stderr, "sandbox-init: no isolation support on %s\n", runtime.GOOS)
	os.Exit(125)
}
