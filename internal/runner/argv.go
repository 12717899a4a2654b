package runner

import (
	"fmt"
	"time"

	"github.com/lmapcloud/lmapd/internal/model"
)

// buildArgv composes task.program followed by the concatenation of task
// options then action options, each expanded per spec.md §4.2 step 2 via
// model.Option.Argv (name and/or value, in declaration order).
func buildArgv(task *model.Task, action *model.Action) []string {
	argv := []string{task.Program}
	for _, o := range task.Options {
		argv = append(argv, o.Argv()...)
	}
	for _, o := range action.Options {
		argv = append(argv, o.Argv()...)
	}
	return argv
}

// buildEnv composes the child process environment: the five LMAP_* vars
// of spec.md §4.2 step 3 plus the inherited parent environment.
func buildEnv(parentEnv []string, schedule *model.Schedule, action *model.Action, task *model.Task, eventEpoch time.Time) []string {
	env := make([]string, len(parentEnv), len(parentEnv)+5)
	copy(env, parentEnv)

	env = append(env,
		"LMAP_SCHEDULE="+schedule.Name,
		"LMAP_ACTION="+action.Name,
		"LMAP_TASK="+task.Name,
		fmt.Sprintf("LMAP_EVENT=%d", eventEpoch.Unix()),
	)
	if cycle, ok := schedule.CycleNumber.Get(); ok {
		env = append(env, "LMAP_CYCLE_NUMBER="+cycle)
	}
	return env
}

// combinedTags concatenates task, schedule, and action tags in that
// order, matching spec.md §4.3 step 7's `.meta` tag row ordering.
func combinedTags(task *model.Task, schedule *model.Schedule, action *model.Action) []string {
	var tags []string
	tags = append(tags, task.Tags...)
	tags = append(tags, schedule.Tags...)
	tags = append(tags, action.Tags...)
	return tags
}
