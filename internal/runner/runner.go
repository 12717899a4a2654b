// Package runner drives schedule firings to completion: it applies the
// suppression and overlap checks of spec.md §4.2's firing contract, then
// hands the schedule's action list to one of the three execution-mode
// runners, which in turn invoke actionExecutor for each action.
package runner

import (
	"context"
	"time"

	"github.com/lmapcloud/lmapd/internal/evaluator"
	"github.com/lmapcloud/lmapd/internal/logger"
	"github.com/lmapcloud/lmapd/internal/model"
)

// Runner owns a Model and reacts to evaluator.FireEvent notifications by
// starting (or suppressing) the schedules that reference the fired event
// as their start event, and stopping schedules that reference it as their
// end event.
type Runner struct {
	m        *model.Model
	queueDir string
	log      logger.Logger
	clock    func() time.Time
	grace    time.Duration

	running map[string]context.CancelFunc // schedule name -> cancel, while StateRunning
}

// Config bundles Runner's construction parameters.
type Config struct {
	Model    *model.Model
	QueueDir string
	Log      logger.Logger
	Clock    func() time.Time
	Grace    time.Duration // SIGTERM-to-SIGKILL grace period, spec.md §5
}

// New constructs a Runner. A nil Clock defaults to time.Now; a zero Grace
// defaults to 10s.
func New(cfg Config) *Runner {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	grace := cfg.Grace
	if grace <= 0 {
		grace = 10 * time.Second
	}
	return &Runner{
		m:        cfg.Model,
		queueDir: cfg.QueueDir,
		log:      cfg.Log,
		clock:    clock,
		grace:    grace,
		running:  make(map[string]context.CancelFunc),
	}
}

// OnFire implements the firing contract of spec.md §4.2: every schedule
// whose start event is ev.Event fires (subject to suppression), and every
// schedule whose end event is ev.Event is cancelled.
func (r *Runner) OnFire(ctx context.Context, ev evaluator.FireEvent) {
	r.updateSuppressions(ev)
	for _, s := range r.m.Schedules {
		if end, ok := s.End.Get(); ok && end == ev.Event.Name {
			r.stopSchedule(s)
		}
	}
	for _, s := range r.m.Schedules {
		if s.Start == ev.Event.Name {
			r.fireSchedule(ctx, s, ev)
		}
	}
}

// updateSuppressions implements a suppression's own start/end-event
// lifecycle (spec.md §3's `state ∈ {enabled, disabled, active}`): its
// end event (if any) returns it from active to enabled first, so a
// suppression whose start and end fire on the same event notification
// does not stay latched active; its start event (if any, and only while
// enabled) then drives it to active.
func (r *Runner) updateSuppressions(ev evaluator.FireEvent) {
	for _, su := range r.m.Suppressions {
		if end, ok := su.End.Get(); ok && end == ev.Event.Name && su.State == model.SuppressionActive {
			su.State = model.SuppressionEnabled
			r.log.Infof("suppression %q: end event %q fired, no longer active", su.Name, end)
		}
	}
	for _, su := range r.m.Suppressions {
		if start, ok := su.Start.Get(); ok && start == ev.Event.Name && su.State == model.SuppressionEnabled {
			su.State = model.SuppressionActive
			r.log.Infof("suppression %q: start event %q fired, now active", su.Name, start)
		}
	}
}

// fireSchedule implements spec.md §4.2 step-by-step: suppression check,
// overlap check, RUNNING transition, cycle-number stamp, execution-mode
// dispatch, and the return to ENABLED.
func (r *Runner) fireSchedule(ctx context.Context, s *model.Schedule, ev evaluator.FireEvent) {
	if r.suppressed(s) {
		s.Counters.Suppressions++
		r.log.Infof("schedule %q: suppressed", s.Name)
		return
	}

	if s.State == model.StateRunning {
		s.Counters.Overlaps++
		r.log.Infof("schedule %q: overlapping invocation skipped", s.Name)
		return
	}

	if err := s.TransitionTo(model.StateRunning); err != nil {
		r.log.Errorf("schedule %q: %v", s.Name, err)
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	if startEv, ok := r.m.EventByName(s.Start); ok {
		if ci, ok := startEv.CycleInterval.Get(); ok {
			s.CycleNumber = model.Some(evaluator.CycleNumber(ev.At, ci))
		}
	}
	s.LastInvocation = model.Some(ev.At)
	r.running[s.Name] = cancel

	s.Counters.Invocations++

	go func() {
		defer func() {
			cancel()
			delete(r.running, s.Name)
			if err := s.TransitionTo(model.StateEnabled); err != nil {
				r.log.Errorf("schedule %q: %v", s.Name, err)
			}
		}()

		ae := &actionExecutor{m: r.m, queueDir: r.queueDir, log: r.log, clock: r.clock, grace: r.grace}
		modeRunnerFor(s.ExecutionMode).run(runCtx, s, ev.Event, ev.At, ae)
	}()
}

// stopSchedule implements spec.md §4.2's end-event contract: a running
// schedule is cancelled (its in-flight actions receive the same
// SIGTERM-then-grace sequence as agent shutdown, spec.md §5).
func (r *Runner) stopSchedule(s *model.Schedule) {
	cancel, ok := r.running[s.Name]
	if !ok {
		return
	}
	cancel()
}

// suppressed reports whether any suppression currently in force matches
// the schedule's own suppression-tags (action-level tags are checked per-action by
// actionExecutor, spec.md §4.2 step 1).
func (r *Runner) suppressed(s *model.Schedule) bool {
	for _, su := range r.m.Suppressions {
		if su.Matches(s.SuppressionTags) {
			return true
		}
	}
	return false
}
