package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/lmapcloud/lmapd/internal/evaluator"
	"github.com/lmapcloud/lmapd/internal/logger"
	"github.com/lmapcloud/lmapd/internal/metacsv"
	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/lmapcloud/lmapd/internal/workspace"
)

// actionExecutor implements spec.md §4.2's "Action execution" steps 1-8.
type actionExecutor struct {
	m        *model.Model
	queueDir string
	log      logger.Logger
	clock    func() time.Time
	grace    time.Duration // cancellation grace period, spec.md §5
}

// Execute runs one action invocation to completion (or ctx cancellation),
// performing suppression/overlap checks, argv/env construction, child
// spawn, meta/data file authorship, and the destination move.
func (ae *actionExecutor) Execute(ctx context.Context, s *model.Schedule, a *model.Action, ev *model.Event, firedAt time.Time) {
	if ae.suppressed(a) {
		a.Counters.Suppressions++
		ae.log.Infof("action %s/%s: suppressed", s.Name, a.Name)
		return
	}

	if a.State == model.StateRunning {
		a.Counters.Overlaps++
		return
	}
	task, ok := ae.m.TaskByName(a.Task)
	if !ok {
		ae.log.Errorf("action %s/%s: task %q not found", s.Name, a.Name, a.Task)
		return
	}

	if err := a.TransitionTo(model.StateRunning); err != nil {
		ae.log.Errorf("action %s/%s: %v", s.Name, a.Name, err)
		return
	}
	defer func() {
		if err := a.TransitionTo(model.StateEnabled); err != nil {
			ae.log.Errorf("action %s/%s: %v", s.Name, a.Name, err)
		}
	}()

	now := ae.clock()
	a.LastInvocation = model.Some(now)

	argv := buildArgv(task, a)
	env := buildEnv(os.Environ(), s, a, task, firedAt)

	ts := now.Unix()
	base := fmt.Sprintf("%d-%s-%s", ts, workspace.SafeName(s.Name), workspace.SafeName(a.Name))
	dataPath := filepath.Join(a.Workspace, base+".data")
	metaPath := filepath.Join(a.Workspace, base+".meta")

	dataFile, err := os.OpenFile(dataPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		ae.log.Errorf("action %s/%s: open data file: %v", s.Name, a.Name, err)
		a.Counters.Failures++
		return
	}
	defer dataFile.Close()

	metaFile, err := os.OpenFile(metaPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		ae.log.Errorf("action %s/%s: open meta file: %v", s.Name, a.Name, err)
		a.Counters.Failures++
		return
	}

	rec := metacsv.MetaRecord{
		Schedule:      s.Name,
		Action:        a.Name,
		Task:          a.Task,
		TaskOptions:   task.Options,
		ActionOptions: a.Options,
		Tags:          combinedTags(task, s, a),
		Event:         s.LastInvocation.OrElse(firedAt),
		Start:         now,
	}
	if ci, ok := ev.CycleInterval.Get(); ok {
		rec.CycleNumber = model.Some(evaluator.CycleNumber(firedAt, ci))
	}
	writeErr := metacsv.WriteMeta(metaFile, rec)
	metaFile.Close()
	if writeErr != nil {
		ae.log.Errorf("action %s/%s: write meta: %v", s.Name, a.Name, writeErr)
		a.Counters.Failures++
		return
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = a.Workspace
	cmd.Env = env
	cmd.Stdout = dataFile
	// SIGTERM first, escalate to SIGKILL only after `grace` has elapsed,
	// spec.md §5's cancellation sequence — expressed via the stdlib's
	// own Cancel/WaitDelay hooks (Go 1.20+) rather than a hand-rolled
	// signal-then-poll-then-kill loop.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(terminateSignal)
	}
	cmd.WaitDelay = ae.grace

	runErr := cmd.Start()
	if runErr != nil {
		ae.log.Errorf("action %s/%s: spawn failed: %v", s.Name, a.Name, runErr)
		a.Counters.Failures++
		_ = metacsv.AppendCompletion(metaPath, ae.clock(), -1)
		return
	}

	waitErr := cmd.Wait()
	status := exitStatus(waitErr)
	end := ae.clock()

	if appendErr := metacsv.AppendCompletion(metaPath, end, status); appendErr != nil {
		ae.log.Errorf("action %s/%s: append completion: %v", s.Name, a.Name, appendErr)
	}

	message := ""
	if waitErr != nil {
		message = waitErr.Error()
	}
	a.RecordCompletion(end, status, message)

	if err := ae.moveOutputs(s, a); err != nil {
		ae.log.Errorf("action %s/%s: move outputs: %v", s.Name, a.Name, err)
	}
}

// suppressed reports whether any suppression currently in force matches
// the action's own suppression-tags, mirroring Runner.suppressed's
// schedule-level check, spec.md §4.2 step 1.
func (ae *actionExecutor) suppressed(a *model.Action) bool {
	for _, su := range ae.m.Suppressions {
		if su.Matches(a.SuppressionTags) {
			return true
		}
	}
	return false
}

// moveOutputs implements spec.md §4.2 step 8: for each destination
// schedule, link every eligible output pair from the action's workspace
// either into the destination's _incoming directory, or — for a
// self-directed destination — directly into the destination's top
// level. Destinations is a set and self-loops are legal (spec.md §3),
// so delivery is link-only: unlinking after the first destination would
// starve every subsequent one of the same pair. The source pair is
// reclaimed later by CleanAction, not here.
func (ae *actionExecutor) moveOutputs(s *model.Schedule, a *model.Action) error {
	for _, dstName := range a.Destinations {
		dst, ok := ae.m.ScheduleByName(dstName)
		if !ok {
			continue
		}
		target := workspace.Incoming(dst.Workspace)
		if dstName == s.Name {
			target = dst.Workspace
		}
		if _, err := workspace.LinkPairs(a.Workspace, target); err != nil {
			return err
		}
	}
	return nil
}

