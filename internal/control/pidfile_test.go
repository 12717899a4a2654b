package control

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWritePIDFileExclusive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lmapd.pid")

	d := &Daemon{pidPath: path}
	require.NoError(t, d.writePIDFile())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(string(raw[:len(raw)-1]))
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), pid)

	removePIDFile(path)
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestWritePIDFileReclaimsStale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lmapd.pid")

	// A PID that cannot plausibly be alive: the file contains a PID no
	// live process could have (just past the usual max), so
	// writePIDFile must reclaim it rather than refuse to start.
	require.NoError(t, os.WriteFile(path, []byte("999999999\n"), 0o644))

	d := &Daemon{pidPath: path}
	require.NoError(t, d.writePIDFile())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	pid, err := strconv.Atoi(string(raw[:len(raw)-1]))
	require.NoError(t, err)
	require.Equal(t, os.Getpid(), pid)
}

func TestWritePIDFileRefusesLiveOwner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lmapd.pid")
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644))

	d := &Daemon{pidPath: path}
	err := d.writePIDFile()
	require.Error(t, err)
}
