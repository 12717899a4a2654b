package report

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmapcloud/lmapd/internal/logger"
	"github.com/lmapcloud/lmapd/internal/metacsv"
	"github.com/lmapcloud/lmapd/internal/model"
)

func discardLogger() logger.Logger {
	return logger.New(slog.NewTextHandler(io.Discard, nil))
}

func writePair(t *testing.T, dir, base string, rec metacsv.MetaRecord, rows [][]string) {
	t.Helper()
	metaFile, err := os.Create(filepath.Join(dir, base+".meta"))
	require.NoError(t, err)
	require.NoError(t, metacsv.WriteMeta(metaFile, rec))
	require.NoError(t, metaFile.Close())
	require.NoError(t, metacsv.AppendCompletion(filepath.Join(dir, base+".meta"), rec.Start.Add(time.Second), 0))

	dataFile, err := os.Create(filepath.Join(dir, base+".data"))
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, metacsv.WriteTable(dataFile, &model.Table{Rows: []model.Row{{Values: row}}}))
	}
	require.NoError(t, dataFile.Close())
}

func TestCollectResults(t *testing.T) {
	dir := t.TempDir()
	rec := metacsv.MetaRecord{
		Schedule: "sched1",
		Action:   "act1",
		Task:     "ping",
		Start:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Event:    time.Date(2026, 1, 2, 3, 0, 0, 0, time.UTC),
	}
	writePair(t, dir, "1-a-b", rec, [][]string{{"1.2.3.4", "10"}})

	m := model.New()
	m.Schedules = []*model.Schedule{{Name: "sched1", Workspace: dir}}

	err := CollectResults(m, discardLogger())
	require.NoError(t, err)
	require.Len(t, m.Results, 1)
	require.Equal(t, "sched1", m.Results[0].Schedule)
	require.Equal(t, "act1", m.Results[0].Action)
	require.Len(t, m.Results[0].Tables, 1)
	require.Len(t, m.Results[0].Tables[0].Rows, 1)
}

func TestCollectResultsEmptyWorkspaceNotAnError(t *testing.T) {
	dir := t.TempDir()
	m := model.New()
	m.Schedules = []*model.Schedule{{Name: "sched1", Workspace: dir}}

	require.NoError(t, CollectResults(m, discardLogger()))
	require.Empty(t, m.Results)
}

func TestCollectResultsSkipsUnreadablePair(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.meta"), []byte("magic;lmapd-meta-1.0\n"), 0o600))
	// no matching .data file: readPair fails, but no valid result either.

	m := model.New()
	m.Schedules = []*model.Schedule{{Name: "sched1", Workspace: dir}}

	err := CollectResults(m, discardLogger())
	require.Error(t, err)
	require.Empty(t, m.Results)
}
