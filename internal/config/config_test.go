package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lmapcloud/lmapd/internal/config"
	"github.com/lmapcloud/lmapd/internal/serialize/jsonengine"
)

const doc1 = `{"lmap": {"tasks": [{"name": "ping-task", "program": "/bin/ping"}]}}`
const doc2 = `{"lmap": {"schedules": [{"name": "sched1", "start": "daily", "execution-mode": "sequential"}]}}`

func TestLoadMergesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-tasks.json"), []byte(doc1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02-schedules.json"), []byte(doc2), 0o644))

	m, err := config.Load(config.Options{SearchPath: dir, Engine: jsonengine.Engine{}})
	require.NoError(t, err)

	require.Len(t, m.Tasks, 1)
	require.Equal(t, "ping-task", m.Tasks[0].Name)
	require.Len(t, m.Schedules, 1)
	require.Equal(t, "sched1", m.Schedules[0].Name)
}

func TestLoadIgnoresNonMatchingExtension(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.xml"), []byte("<lmap/>"), 0o644))

	m, err := config.Load(config.Options{SearchPath: dir, Engine: jsonengine.Engine{}})
	require.NoError(t, err)
	require.Empty(t, m.Tasks)
}

func TestLoadMultipleSearchPathEntries(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dirA, "a.json"), []byte(doc1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dirB, "b.json"), []byte(doc2), 0o644))

	m, err := config.Load(config.Options{SearchPath: dirA + ":" + dirB, Engine: jsonengine.Engine{}})
	require.NoError(t, err)
	require.Len(t, m.Tasks, 1)
	require.Len(t, m.Schedules, 1)
}
