package evaluator

import (
	"context"
	"testing"
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
	"github.com/stretchr/testify/require"
)

func TestNextPeriodic_ArmingAndNextFire(t *testing.T) {
	start := time.Date(2015, 2, 1, 15, 44, 21, 0, time.UTC)
	e := model.NewEvent("p", model.EventPeriodic)
	e.Start = model.Some(start)
	require.NoError(t, e.SetInterval(4321*time.Second))

	armedAt := time.Date(2015, 2, 1, 15, 44, 20, 0, time.UTC)
	first, ok, err := nextPeriodic(e, armedAt)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, first.Equal(start))

	second, ok, err := nextPeriodic(e, first.Add(time.Nanosecond))
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, second.Equal(time.Date(2015, 2, 1, 16, 56, 22, 0, time.UTC)))
}

func TestNextCalendar_Wildcard(t *testing.T) {
	e := model.NewEvent("c", model.EventCalendar)
	e.Calendar = model.Calendar{
		Months:      model.Wildcard64(),
		DaysOfMonth: model.NewBitset64(1),
		DaysOfWeek:  model.Wildcard64(),
		Hours:       model.NewBitset64(0),
		Minutes:     model.NewBitset64(0),
		Seconds:     model.NewBitset64(0),
		TimezoneName: "+00:00",
	}

	now := time.Date(2020, 3, 15, 10, 0, 0, 0, time.UTC)
	next, ok, err := nextCalendar(e, now, time.UTC)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, next.Equal(time.Date(2020, 4, 1, 0, 0, 0, 0, time.UTC)), "got %s", next)
}

func TestNextOneOff_SkippedWhenPast(t *testing.T) {
	e := model.NewEvent("o", model.EventOneOff)
	e.Start = model.Some(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	_, ok, err := nextOneOff(e, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCycleNumber_TruncatesAndFormats(t *testing.T) {
	fireTime := time.Date(2020, 1, 1, 0, 0, 50, 0, time.UTC)
	got := CycleNumber(fireTime, time.Minute)
	require.Equal(t, "20200101.000000", got)
}

func TestEvaluator_ArmAndFireStartup(t *testing.T) {
	ev := New(time.UTC)
	startupEvt := model.NewEvent("boot", model.EventStartup)
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ev.Arm([]*model.Event{startupEvt}, now))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go func() { _ = ev.Run(ctx) }()

	select {
	case fired := <-ev.Fire():
		require.Equal(t, "boot", fired.Event.Name)
	case <-ctx.Done():
		t.Fatal("timed out waiting for startup event to fire")
	}
}
