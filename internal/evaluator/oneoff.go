package evaluator

import (
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
)

// nextOneOff implements spec.md §4.1: fires exactly once at start; if
// start is in the past at arming time, it is not fired.
func nextOneOff(e *model.Event, now time.Time) (time.Time, bool, error) {
	start, ok := e.Start.Get()
	if !ok {
		return time.Time{}, false, nil
	}
	if start.Before(now) {
		return time.Time{}, false, nil
	}
	return start, true, nil
}
