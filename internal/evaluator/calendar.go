package evaluator

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/robfig/cron/v3"
)

var calendarParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// nextCalendar implements spec.md §4.1's calendar algorithm by delegating
// the "all fields match, OR-combined when both day-of-month and
// day-of-week are restricted" computation to robfig/cron/v3 (the cron-union
// tie-break resolution recorded in SPEC_FULL.md §5 and DESIGN.md).
func nextCalendar(e *model.Event, now time.Time, agentLoc *time.Location) (time.Time, bool, error) {
	loc := agentLoc
	if e.Calendar.TimezoneName != "" {
		l, err := parseTimezone(e.Calendar.TimezoneName)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("calendar event %q: %w", e.Name, err)
		}
		loc = l
	}

	expr, err := calendarCronExpr(e.Calendar)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("calendar event %q: %w", e.Name, err)
	}
	schedule, err := calendarParser.Parse(expr)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("calendar event %q: invalid synthesized cron expression %q: %w", e.Name, expr, err)
	}

	localNow := now.In(loc)
	localNext := schedule.Next(localNow)
	next := localNext.In(time.UTC)

	if end, ok := e.End.Get(); ok && next.After(end) {
		return time.Time{}, false, nil
	}
	if start, ok := e.Start.Get(); ok && next.Before(start) {
		// robfig/cron never returns an instant before localNow, and localNow
		// already reflects "now"; start only matters when it is still ahead
		// of now, in which case reseed the search from start.
		localNext = schedule.Next(start.In(loc).Add(-time.Second))
		next = localNext.In(time.UTC)
	}

	return next, true, nil
}

// calendarCronExpr synthesizes a six-field cron expression (seconds
// enabled) from the event's bitsets, spec.md §4.1/SPEC_FULL.md §4.2: "*"
// for a wildcard bitset, a comma-joined sorted list of set bits otherwise.
func calendarCronExpr(c model.Calendar) (string, error) {
	second, err := bitsetField(c.Seconds)
	if err != nil {
		return "", fmt.Errorf("seconds: %w", err)
	}
	minute, err := bitsetField(c.Minutes)
	if err != nil {
		return "", fmt.Errorf("minutes: %w", err)
	}
	hour, err := bitsetField(c.Hours)
	if err != nil {
		return "", fmt.Errorf("hours: %w", err)
	}
	dom, err := bitsetField(c.DaysOfMonth)
	if err != nil {
		return "", fmt.Errorf("days-of-month: %w", err)
	}
	month, err := bitsetField(c.Months)
	if err != nil {
		return "", fmt.Errorf("months: %w", err)
	}
	dow, err := bitsetField(c.DaysOfWeek)
	if err != nil {
		return "", fmt.Errorf("days-of-week: %w", err)
	}
	return strings.Join([]string{second, minute, hour, dom, month, dow}, " "), nil
}

// parseTimezone accepts either an IANA zone name ("Europe/Berlin") or a
// fixed "+HH:MM"/"-HH:MM" offset, the latter matching the ISO-8601
// timezone-offset spelling spec.md §3 uses for the calendar event field.
func parseTimezone(name string) (*time.Location, error) {
	if len(name) == 6 && (name[0] == '+' || name[0] == '-') && name[3] == ':' {
		sign := 1
		if name[0] == '-' {
			sign = -1
		}
		hh, err := strconv.Atoi(name[1:3])
		if err != nil {
			return nil, fmt.Errorf("invalid timezone-offset %q", name)
		}
		mm, err := strconv.Atoi(name[4:6])
		if err != nil {
			return nil, fmt.Errorf("invalid timezone-offset %q", name)
		}
		offset := sign * (hh*3600 + mm*60)
		return time.FixedZone(name, offset), nil
	}
	return time.LoadLocation(name)
}

func bitsetField(b model.Bitset64) (string, error) {
	if b.Wildcard {
		return "*", nil
	}
	values := b.Values()
	if len(values) == 0 {
		return "", fmt.Errorf("empty, non-wildcard calendar field never matches")
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ","), nil
}
