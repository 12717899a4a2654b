package control

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// writePIDFile creates the PID file exclusively, refusing to start if a
// live process already owns it — spec.md §7 class 6 ("signals to unknown
// PID" resolves to "not running", so a stale file from a PID that no
// longer exists is safe to reclaim rather than treated as a running
// instance).
func (d *Daemon) writePIDFile() error {
	if d.pidPath == "" {
		return nil
	}
	if live, pid := pidFileOwnerAlive(d.pidPath); live {
		return fmt.Errorf("control: another instance is already running (pid %d)", pid)
	}
	_ = os.Remove(d.pidPath)

	f, err := os.OpenFile(d.pidPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("control: create pid file: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%d\n", os.Getpid())
	return err
}

func removePIDFile(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

// pidFileOwnerAlive reads path as a decimal PID and reports whether that
// process is currently running, via gopsutil/v4/process's liveness check
// rather than a raw syscall.Kill(pid, 0) probe.
func pidFileOwnerAlive(path string) (bool, int32) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil || pid <= 0 {
		return false, 0
	}
	ok, err := process.PidExists(int32(pid))
	if err != nil || !ok {
		return false, 0
	}
	return true, int32(pid)
}
