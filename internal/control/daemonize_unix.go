//go:build unix

package control

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// Daemonize re-execs the current process once, detached from the
// controlling terminal: the child starts in a new session (Setsid) with
// stdin/stdout/stderr on the null device, and chdirs to "/" so the
// daemon never pins a mount point. There is no second fork, so the
// daemon is itself a session leader; original_source/src/lmapd.c's
// daemonize() instead forks twice.
//
// Go cannot fork a running multi-threaded process safely (only the
// calling goroutine's OS thread would survive fork in the child, leaving
// the runtime's other threads gone but their state still referenced), so
// the idiomatic replacement is to re-exec argv[0] in a new session via
// os/exec with Setsid, rather than raw syscall.Fork.
func Daemonize() error {
	if os.Getenv("LMAPD_DAEMONIZED") == "1" {
		return chdirRoot()
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("control: daemonize: %w", err)
	}

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Env = append(os.Environ(), "LMAPD_DAEMONIZED=1")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("control: daemonize: re-exec: %w", err)
	}
	// The parent's only remaining job is to exit so the shell returns
	// immediately, as the original's first parent does.
	os.Exit(0)
	return nil
}

func chdirRoot() error {
	if err := os.Chdir("/"); err != nil {
		return fmt.Errorf("control: daemonize: chdir: %w", err)
	}
	return nil
}
