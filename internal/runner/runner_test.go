package runner

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lmapcloud/lmapd/internal/evaluator"
	"github.com/lmapcloud/lmapd/internal/logger"
	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/lmapcloud/lmapd/internal/workspace"
)

func testLogger() logger.Logger {
	return logger.New(slog.NewTextHandler(io.Discard, nil))
}

// scriptTask writes an executable shell script at dir/name and returns a
// model.Task whose Program points to it.
func scriptTask(t *testing.T, dir, name, body string) *model.Task {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o700))
	return &model.Task{Name: name, Program: path}
}

func newTestModel(t *testing.T, mode model.ExecutionMode) (*model.Model, string) {
	t.Helper()
	root := t.TempDir()

	task := scriptTask(t, root, "echoer", "echo hello")

	s := model.NewSchedule("sched", "start-ev")
	s.ExecutionMode = mode
	a := model.NewAction("act1", task.Name)
	s.Actions = []*model.Action{a}

	m := model.New()
	m.Tasks = []*model.Task{task}
	m.Schedules = []*model.Schedule{s}
	m.Events = []*model.Event{model.NewEvent("start-ev", model.EventImmediate)}

	require.NoError(t, workspace.Init(m, root))
	return m, root
}

func TestRunnerFireSchedule(t *testing.T) {
	m, root := newTestModel(t, model.ExecutionModeSequential)
	queueDir := filepath.Join(root, "_incoming")
	require.NoError(t, os.MkdirAll(queueDir, 0o700))

	r := New(Config{Model: m, QueueDir: queueDir, Log: testLogger(), Grace: 2 * time.Second})

	s := m.Schedules[0]
	ev := evaluator.FireEvent{Event: m.Events[0], At: time.Now()}

	r.fireSchedule(context.Background(), s, ev)

	require.Eventually(t, func() bool {
		return s.State == model.StateEnabled
	}, 2*time.Second, 10*time.Millisecond)

	require.Equal(t, uint64(1), s.Counters.Invocations)
	entries, err := os.ReadDir(s.Actions[0].Workspace)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

func TestRunnerOverlapSkipped(t *testing.T) {
	m, root := newTestModel(t, model.ExecutionModeSequential)
	queueDir := filepath.Join(root, "_incoming")
	require.NoError(t, os.MkdirAll(queueDir, 0o700))

	r := New(Config{Model: m, QueueDir: queueDir, Log: testLogger()})

	s := m.Schedules[0]
	s.State = model.StateRunning
	ev := evaluator.FireEvent{Event: m.Events[0], At: time.Now()}

	r.fireSchedule(context.Background(), s, ev)

	require.Equal(t, uint64(1), s.Counters.Overlaps)
	require.Equal(t, uint64(0), s.Counters.Invocations)
}

func TestRunnerSuppression(t *testing.T) {
	m, root := newTestModel(t, model.ExecutionModeSequential)
	m.Schedules[0].SuppressionTags = []model.Tag{"noisy"}
	su := model.NewSuppression("quiet-hours")
	su.Match = []model.Tag{"noisy"}
	su.State = model.SuppressionActive
	m.Suppressions = []*model.Suppression{su}

	queueDir := filepath.Join(root, "_incoming")
	require.NoError(t, os.MkdirAll(queueDir, 0o700))
	r := New(Config{Model: m, QueueDir: queueDir, Log: testLogger()})

	s := m.Schedules[0]
	ev := evaluator.FireEvent{Event: m.Events[0], At: time.Now()}
	r.fireSchedule(context.Background(), s, ev)

	require.Equal(t, uint64(1), s.Counters.Suppressions)
	require.Equal(t, uint64(0), s.Counters.Invocations)
	require.Equal(t, model.StateEnabled, s.State)
}

// TestRunnerSuppressionActivatedByStartEvent exercises the suppression's
// own event lifecycle end to end: a suppression that names a start event
// is not in force until that event actually fires through OnFire, at
// which point a subsequently fired schedule is suppressed rather than
// run.
func TestRunnerSuppressionActivatedByStartEvent(t *testing.T) {
	m, root := newTestModel(t, model.ExecutionModeSequential)
	m.Schedules[0].SuppressionTags = []model.Tag{"noisy"}

	su := model.NewSuppression("quiet-hours")
	su.Match = []model.Tag{"noisy"}
	su.Start = model.Some("suppress-on")
	m.Suppressions = []*model.Suppression{su}
	suppressOn := model.NewEvent("suppress-on", model.EventImmediate)
	m.Events = append(m.Events, suppressOn)

	queueDir := filepath.Join(root, "_incoming")
	require.NoError(t, os.MkdirAll(queueDir, 0o700))
	r := New(Config{Model: m, QueueDir: queueDir, Log: testLogger()})

	s := m.Schedules[0]

	// Before the suppression's own start event has fired, it is not yet
	// in force, so the schedule runs normally.
	r.fireSchedule(context.Background(), s, evaluator.FireEvent{Event: m.Events[0], At: time.Now()})
	require.Equal(t, uint64(1), s.Counters.Invocations)
	require.Eventually(t, func() bool { return s.State == model.StateEnabled }, 2*time.Second, 10*time.Millisecond)

	// Firing the suppression's start event activates it.
	r.OnFire(context.Background(), evaluator.FireEvent{Event: suppressOn, At: time.Now()})
	require.Equal(t, model.SuppressionActive, su.State)

	// Now the schedule's own start event fires again, but is suppressed.
	r.fireSchedule(context.Background(), s, evaluator.FireEvent{Event: m.Events[0], At: time.Now()})
	require.Equal(t, uint64(1), s.Counters.Suppressions)
	require.Equal(t, uint64(1), s.Counters.Invocations)
}

func TestActionExecutor_SuppressedActionSkipped(t *testing.T) {
	m, root := newTestModel(t, model.ExecutionModeSequential)
	a := m.Schedules[0].Actions[0]
	a.SuppressionTags = []model.Tag{"noisy"}

	su := model.NewSuppression("quiet-hours")
	su.Match = []model.Tag{"noisy"}
	su.State = model.SuppressionActive
	m.Suppressions = []*model.Suppression{su}

	ae := &actionExecutor{m: m, queueDir: root, log: testLogger(), clock: time.Now, grace: time.Second}
	ae.Execute(context.Background(), m.Schedules[0], a, m.Events[0], time.Now())

	require.Equal(t, uint64(1), a.Counters.Suppressions)
	require.Equal(t, model.StateEnabled, a.State)
	entries, err := os.ReadDir(a.Workspace)
	require.NoError(t, err)
	require.Empty(t, entries, "a suppressed action must not run the underlying program")
}

func TestModeRunnerSequentialMovesOutputBeforeNextAction(t *testing.T) {
	root := t.TempDir()
	task := scriptTask(t, root, "echoer", "echo hi")

	s := model.NewSchedule("sched", "start-ev")
	s.ExecutionMode = model.ExecutionModeSequential
	a1 := model.NewAction("act1", task.Name)
	a1.Destinations = []string{"sched"}
	a2 := model.NewAction("act2", task.Name)
	s.Actions = []*model.Action{a1, a2}

	m := model.New()
	m.Tasks = []*model.Task{task}
	m.Schedules = []*model.Schedule{s}
	m.Events = []*model.Event{model.NewEvent("start-ev", model.EventImmediate)}
	require.NoError(t, workspace.Init(m, root))

	ae := &actionExecutor{m: m, queueDir: root, log: testLogger(), clock: time.Now, grace: time.Second}
	ev := m.Events[0]

	sequentialRunner{}.run(context.Background(), s, ev, time.Now(), ae)

	entries, err := os.ReadDir(s.Workspace)
	require.NoError(t, err)
	require.NotEmpty(t, entries, "self-directed output should have moved into schedule workspace root")
	require.True(t, hasCompletePair(s.Workspace), "self-directed act1 output pair should be in the schedule workspace root")
}

func TestHasCompletePair(t *testing.T) {
	dir := t.TempDir()
	require.False(t, hasCompletePair(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-a-b.meta"), []byte("x"), 0o600))
	require.False(t, hasCompletePair(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "1-a-b.data"), []byte("y"), 0o600))
	require.True(t, hasCompletePair(dir))
}

func TestExitStatus(t *testing.T) {
	require.Equal(t, 0, exitStatus(nil))
}
