// Package evaluator computes, for each enabled event, the next absolute
// wall-clock instant it fires and delivers (event, fire-time) notifications
// on a channel, spec.md §4.1.
package evaluator

import (
	"container/heap"
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
)

// FireEvent is delivered to the runner each time an armed event fires.
type FireEvent struct {
	Event *model.Event
	At    time.Time
}

// Clock abstracts wall-clock time so tests can inject a fixed or
// step-controlled time source, matching the teacher's
// internal/scheduler fixed-time test seam (now()/setFixedTime()).
type Clock func() time.Time

// Evaluator owns one armedEvent per enabled model.Event, stored in a
// container/heap-backed priority queue ordered by next fire time.
type Evaluator struct {
	mu    sync.Mutex
	clock Clock
	queue armedHeap
	rands map[string]*rand.Rand // per-event independent random source

	fire chan FireEvent

	loc *time.Location // agent-local zone, used when timezone-offset is unset
}

// New constructs an Evaluator. loc is the agent-local timezone used for
// calendar events that do not set their own timezone-offset.
func New(loc *time.Location) *Evaluator {
	if loc == nil {
		loc = time.Local
	}
	return &Evaluator{
		clock: time.Now,
		rands: make(map[string]*rand.Rand),
		fire:  make(chan FireEvent, 16),
		loc:   loc,
	}
}

// SetClock overrides the time source; for tests only.
func (ev *Evaluator) SetClock(c Clock) {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	ev.clock = c
}

// Fire returns the channel on which fire notifications are delivered.
func (ev *Evaluator) Fire() <-chan FireEvent {
	return ev.fire
}

// now returns the current time via the (possibly overridden) clock.
func (ev *Evaluator) now() time.Time {
	return ev.clock()
}

// randFor returns the event-specific random source, seeded deterministically
// from the event's name so that re-arming (e.g. across a reload) behaves
// consistently, and so two events never share a draw (spec.md §4.1).
func (ev *Evaluator) randFor(name string) *rand.Rand {
	r, ok := ev.rands[name]
	if !ok {
		seed := fnv64(name)
		r = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
		ev.rands[name] = r
	}
	return r
}

func fnv64(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// spread applies the event's random-spread delay, spec.md §4.1: a
// uniformly random amount in [0, random-spread] added to t.
func (ev *Evaluator) spread(e *model.Event, t time.Time) time.Time {
	if e.RandomSpread <= 0 {
		return t
	}
	r := ev.randFor(e.Name)
	n := r.Int64N(int64(e.RandomSpread) + 1)
	return t.Add(time.Duration(n))
}

// Arm (re)computes and enqueues the next fire time for every event in
// events, replacing any prior armed state. startup and immediate events
// are enqueued as due at now; Run fires them, not this call.
func (ev *Evaluator) Arm(events []*model.Event, now time.Time) error {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	ev.queue = nil
	heap.Init(&ev.queue)

	for _, e := range events {
		next, ok, err := ev.computeNext(e, now)
		if err != nil {
			return fmt.Errorf("arming event %q: %w", e.Name, err)
		}
		if !ok {
			continue
		}
		heap.Push(&ev.queue, &armedEvent{event: e, next: ev.spread(e, next)})
	}
	return nil
}

// computeNext dispatches to the per-type algorithm. ok is false when the
// event never fires again (e.g. a one-off whose start is already past).
func (ev *Evaluator) computeNext(e *model.Event, now time.Time) (time.Time, bool, error) {
	switch e.Type {
	case model.EventPeriodic:
		return nextPeriodic(e, now)
	case model.EventOneOff:
		return nextOneOff(e, now)
	case model.EventCalendar:
		return nextCalendar(e, now, ev.loc)
	case model.EventStartup:
		return now, true, nil
	case model.EventImmediate:
		return now, true, nil
	case model.EventControllerLost, model.EventControllerConnected:
		// external triggers only, spec.md §4.1; never armed as a timer.
		return time.Time{}, false, nil
	default:
		return time.Time{}, false, fmt.Errorf("unknown event type %d", e.Type)
	}
}

// rearm recomputes and re-enqueues an event after it fires, for event
// types that fire repeatedly (periodic, calendar). One-off, startup, and
// immediate are not re-armed.
func (ev *Evaluator) rearm(e *model.Event, firedAt time.Time) {
	switch e.Type {
	case model.EventPeriodic, model.EventCalendar:
		next, ok, err := ev.computeNext(e, firedAt.Add(time.Nanosecond))
		if err != nil || !ok {
			return
		}
		heap.Push(&ev.queue, &armedEvent{event: e, next: ev.spread(e, next)})
	}
}

// Run drives the evaluator's single logical thread: block until the
// soonest armed event fires or ctx is cancelled, spec.md §5.
func (ev *Evaluator) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		ev.mu.Lock()
		var wait time.Duration
		var top *armedEvent
		if ev.queue.Len() > 0 {
			top = ev.queue[0]
			wait = top.next.Sub(ev.now())
		} else {
			wait = time.Hour
		}
		ev.mu.Unlock()

		if wait < 0 {
			wait = 0
		}
		timer.Reset(wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			ev.mu.Lock()
			if ev.queue.Len() == 0 {
				ev.mu.Unlock()
				continue
			}
			next := ev.queue[0]
			if next.next.After(ev.now()) {
				ev.mu.Unlock()
				continue
			}
			heap.Pop(&ev.queue)
			firedAt := ev.now()
			ev.rearm(next.event, firedAt)
			ev.mu.Unlock()

			select {
			case ev.fire <- FireEvent{Event: next.event, At: firedAt}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// NotifyControllerLost synthesizes a fire for every controller-lost event
// in events, spec.md §4.1's "external trigger" contract.
func (ev *Evaluator) NotifyControllerLost(events []*model.Event) {
	ev.notifyExternal(events, model.EventControllerLost)
}

// NotifyControllerConnected synthesizes a fire for every
// controller-connected event in events.
func (ev *Evaluator) NotifyControllerConnected(events []*model.Event) {
	ev.notifyExternal(events, model.EventControllerConnected)
}

func (ev *Evaluator) notifyExternal(events []*model.Event, typ model.EventType) {
	at := ev.now()
	for _, e := range events {
		if e.Type != typ {
			continue
		}
		ev.fire <- FireEvent{Event: e, At: at}
	}
}

// CycleNumber truncates fireTime to the nearest multiple of cycleInterval
// and formats it YYYYMMDD.HHMMSS in UTC, spec.md §4.1.
func CycleNumber(fireTime time.Time, cycleInterval time.Duration) string {
	u := fireTime.UTC()
	if cycleInterval > 0 {
		secs := u.Unix()
		step := int64(cycleInterval / time.Second)
		if step > 0 {
			secs -= secs % step
		}
		u = time.Unix(secs, 0).UTC()
	}
	return u.Format("20060102.150405")
}
