package evaluator

import (
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
)

// nextPeriodic implements spec.md §4.1: fires every interval seconds,
// optionally bounded by [start, end]. First fire >= max(now, start)
// aligned on the nearest multiple of interval past start (or past the
// epoch when start is unset).
func nextPeriodic(e *model.Event, now time.Time) (time.Time, bool, error) {
	if end, ok := e.End.Get(); ok && !now.Before(end) {
		return time.Time{}, false, nil
	}

	base := time.Unix(0, 0).UTC()
	if start, ok := e.Start.Get(); ok {
		base = start
	}

	floor := now
	if base.After(floor) {
		floor = base
	}

	interval := e.Interval
	elapsed := floor.Sub(base)
	k := elapsed / interval
	next := base.Add(k * interval)
	if next.Before(floor) {
		next = next.Add(interval)
	}

	if end, ok := e.End.Get(); ok && next.After(end) {
		return time.Time{}, false, nil
	}
	return next, true, nil
}
