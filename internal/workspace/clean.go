package workspace

import (
	"os"
	"path/filepath"
)

// CleanSchedule implements the spec.md §4.3 schedule-workspace clean
// policy: delete all non-"_"-prefixed regular files at the top level;
// leave _incoming, other "_"-prefixed subdirectories, and every
// directory intact, matching
// original_source/src/workspace.c's lmapd_workspace_schedule_clean,
// which never descends into subdirectories.
func CleanSchedule(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if len(name) == 0 || name[0] == '_' {
			continue
		}
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// CleanAction implements the spec.md §4.3 action-workspace clean policy:
// delete all non-"_"-prefixed, non-hidden entries, recursively — files
// and directories alike — matching
// original_source/src/workspace.c's lmapd_workspace_action_clean (which
// calls remove_all on every qualifying entry). "_"-prefixed entries
// persist across invocations as per-action scratch state.
func CleanAction(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if len(name) == 0 || name[0] == '_' || name[0] == '.' {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Zap implements the spec.md §4.3 global-zap policy: remove everything
// under the queue directory, matching original_source/src/workspace.c's
// lmapd_workspace_clean. Its only caller is lmapd's -z flag; SIGUSR2 and
// lmapctl clean run Daemon.Clean instead, which applies CleanSchedule
// and CleanAction and does not remove "_"-prefixed entries.
func Zap(queueDir string) error {
	entries, err := os.ReadDir(queueDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(queueDir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}
