package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	require.Equal(t, "hello-world_1.2,3", SafeName("hello-world_1.2,3"))
	require.Equal(t, "a%2Fb", SafeName("a/b"))
	require.Equal(t, "%2Ehidden", SafeName(".hidden"))
	require.Equal(t, "%5Fname", SafeName("_name"))
}

func TestMove_AtomicPair(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(src, "1-sched-act.data"), []byte("payload"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "1-sched-act.meta"), []byte("meta"), 0o600))

	moved, err := Move(src, dst, "1-sched-act")
	require.NoError(t, err)
	require.True(t, moved)

	require.FileExists(t, filepath.Join(dst, "1-sched-act.data"))
	require.FileExists(t, filepath.Join(dst, "1-sched-act.meta"))
	require.NoFileExists(t, filepath.Join(src, "1-sched-act.data"))
	require.NoFileExists(t, filepath.Join(src, "1-sched-act.meta"))
}

func TestMove_IncompletePairNotMoved(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(src, "1-sched-act.data"), []byte("payload"), 0o600))
	// no .meta sibling

	moved, err := Move(src, dst, "1-sched-act")
	require.NoError(t, err)
	require.False(t, moved)
	require.FileExists(t, filepath.Join(src, "1-sched-act.data"))
}

func TestLinkPairs_DeliversToMultipleDestinations(t *testing.T) {
	src := t.TempDir()
	dstA := t.TempDir()
	dstB := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(src, "1-sched-act.data"), []byte("payload"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "1-sched-act.meta"), []byte("meta"), 0o600))

	linkedA, err := LinkPairs(src, dstA)
	require.NoError(t, err)
	require.Equal(t, []string{"1-sched-act"}, linkedA)

	linkedB, err := LinkPairs(src, dstB)
	require.NoError(t, err)
	require.Equal(t, []string{"1-sched-act"}, linkedB)

	require.FileExists(t, filepath.Join(dstA, "1-sched-act.data"))
	require.FileExists(t, filepath.Join(dstA, "1-sched-act.meta"))
	require.FileExists(t, filepath.Join(dstB, "1-sched-act.data"))
	require.FileExists(t, filepath.Join(dstB, "1-sched-act.meta"))

	// Unlike Move, the source is left intact for every destination.
	require.FileExists(t, filepath.Join(src, "1-sched-act.data"))
	require.FileExists(t, filepath.Join(src, "1-sched-act.meta"))
}

func TestCleanSchedule_PreservesUnderscoreAndDirs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "leftover.data"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "_incoming"), 0o700))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "action1"), 0o700))

	require.NoError(t, CleanSchedule(dir))

	require.NoFileExists(t, filepath.Join(dir, "leftover.data"))
	require.DirExists(t, filepath.Join(dir, "_incoming"))
	require.DirExists(t, filepath.Join(dir, "action1"))
}

func TestCleanAction_RemovesNonUnderscoreRecursively(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scratch"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scratch", "f"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "_private"), []byte("keep"), 0o600))

	require.NoError(t, CleanAction(dir))

	require.NoDirExists(t, filepath.Join(dir, "scratch"))
	require.FileExists(t, filepath.Join(dir, "_private"))
}

func TestStorage_SumsRegularFilesOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("hello"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o700))

	total, err := Storage(dir)
	require.NoError(t, err)
	require.Greater(t, total, uint64(0))
}
