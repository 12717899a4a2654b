package workspace

import (
	"os"
	"path/filepath"

	"github.com/lmapcloud/lmapd/internal/model"
)

const dirMode = 0o700

// Init creates the per-schedule and per-action workspace directories for
// every schedule/action in m, plus each schedule's _incoming queue
// directory, matching original_source/src/workspace.c's
// lmapd_workspace_init. It also stamps Schedule.Workspace/Action.Workspace
// with the resolved path so the runner never recomputes SafeName itself.
func Init(m *model.Model, queueDir string) error {
	for _, s := range m.Schedules {
		scheduleDir := filepath.Join(queueDir, SafeName(s.Name))
		if err := os.MkdirAll(scheduleDir, dirMode); err != nil {
			return err
		}
		s.Workspace = scheduleDir

		incoming := filepath.Join(scheduleDir, "_incoming")
		if err := os.MkdirAll(incoming, dirMode); err != nil {
			return err
		}

		for _, a := range s.Actions {
			actionDir := filepath.Join(scheduleDir, SafeName(a.Name))
			if err := os.MkdirAll(actionDir, dirMode); err != nil {
				return err
			}
			a.Workspace = actionDir
		}
	}
	return nil
}

// Incoming returns the _incoming directory path for a schedule workspace.
func Incoming(scheduleDir string) string {
	return filepath.Join(scheduleDir, "_incoming")
}
