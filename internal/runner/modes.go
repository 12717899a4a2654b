package runner

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lmapcloud/lmapd/internal/model"
)

// modeRunner executes a schedule's action list under one of the three
// spec.md §4.2 execution-mode semantics.
type modeRunner interface {
	run(ctx context.Context, s *model.Schedule, ev *model.Event, firedAt time.Time, ae *actionExecutor)
}

func modeRunnerFor(mode model.ExecutionMode) modeRunner {
	switch mode {
	case model.ExecutionModeSequential:
		return sequentialRunner{}
	case model.ExecutionModeParallel:
		return parallelRunner{}
	default:
		return pipelinedRunner{}
	}
}

// sequentialRunner runs actions one at a time in declaration order;
// action k+1 starts only after action k completes, including its output
// move, so a self-directed output is visible to k+1 before it starts
// (spec.md §4.2, §8 "Self-directed action output is visible...").
type sequentialRunner struct{}

func (sequentialRunner) run(ctx context.Context, s *model.Schedule, ev *model.Event, firedAt time.Time, ae *actionExecutor) {
	for _, a := range s.Actions {
		if ctx.Err() != nil {
			return
		}
		ae.Execute(ctx, s, a, ev, firedAt)
	}
}

// parallelRunner starts all actions at once; they do not observe each
// other's outputs within this invocation (spec.md §4.2).
type parallelRunner struct{}

func (parallelRunner) run(ctx context.Context, s *model.Schedule, ev *model.Event, firedAt time.Time, ae *actionExecutor) {
	var wg sync.WaitGroup
	for _, a := range s.Actions {
		wg.Add(1)
		go func(a *model.Action) {
			defer wg.Done()
			ae.Execute(ctx, s, a, ev, firedAt)
		}(a)
	}
	wg.Wait()
}

// pipelinedRunner starts actions in declaration order as a pipeline:
// action k+1 may start as soon as action k has produced at least one
// complete .data/.meta pair in action k's workspace (spec.md §4.2),
// detected via fsnotify file-creation events, with a polling loop as the
// fallback when the watcher cannot be set up.
type pipelinedRunner struct{}

func (pipelinedRunner) run(ctx context.Context, s *model.Schedule, ev *model.Event, firedAt time.Time, ae *actionExecutor) {
	var wg sync.WaitGroup
	for i, a := range s.Actions {
		if i > 0 {
			waitForFirstPair(ctx, s.Actions[i-1].Workspace)
		}
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(a *model.Action) {
			defer wg.Done()
			ae.Execute(ctx, s, a, ev, firedAt)
		}(a)
	}
	wg.Wait()
}

// waitForFirstPair blocks until dir contains at least one complete
// <base>.meta/<base>.data pair, or ctx is cancelled.
func waitForFirstPair(ctx context.Context, dir string) {
	if hasCompletePair(dir) {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		// fsnotify unavailable: fall back to a short poll loop rather
		// than blocking the pipeline forever.
		pollForFirstPair(ctx, dir)
		return
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		pollForFirstPair(ctx, dir)
		return
	}

	for {
		if hasCompletePair(dir) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-watcher.Events:
			continue
		case <-watcher.Errors:
			continue
		case <-time.After(time.Second):
			continue
		}
	}
}

func pollForFirstPair(ctx context.Context, dir string) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		if hasCompletePair(dir) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
