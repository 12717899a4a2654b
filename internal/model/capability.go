package model

import "runtime"

// Registry describes a task's provenance, spec.md §3: { uri, roles(set) }.
type Registry struct {
	URI   string
	Roles []string
}

// Tag is a plain string tag attached to tasks, schedules, actions,
// capability blocks, and suppressions' match sets.
type Tag = string

// Task is defined both under the executable `tasks` collection and,
// advertised read-only, under `capabilities/tasks`. Only tasks under the
// executable collection may be referenced by actions (spec.md §3).
type Task struct {
	Name      string // key
	Program   string // filesystem path
	Version   Optional[string]
	Tags      []Tag
	Registries []Registry
	Options   []*Option
}

// Option is translated at exec time into argv elements, spec.md §3/§4.2.
type Option struct {
	ID    string // key
	Name  Optional[string]
	Value Optional[string]
}

// Argv returns the argv fragment this option contributes: "name value",
// "name", "value", or nothing, per spec.md §4.2 step 2.
func (o *Option) Argv() []string {
	name, hasName := o.Name.Get()
	value, hasValue := o.Value.Get()
	switch {
	case hasName && hasValue:
		return []string{name, value}
	case hasName:
		return []string{name}
	case hasValue:
		return []string{value}
	default:
		return nil
	}
}

// Capability is the agent's advertised task set plus built-in version/tag
// metadata, populated from system data and runtime-discovered tasks. It is
// read-only to the controller (spec.md §3).
type Capability struct {
	Version Optional[string]
	Tags    []Tag
	Tasks   []*Task
}

// NewCapability builds a Capability pre-populated with the built-in
// system tags the original lmap_capability_add_system_tags() call
// installs on startup (SPEC_FULL.md §3): "os:<GOOS>" and "arch:<GOARCH>"
// tags, with the daemon version stored in the Version field rather than
// as a tag. Runtime-discovered task capabilities are left for the caller
// to append afterward.
func NewCapability(daemonVersion string) *Capability {
	c := &Capability{
		Version: Some(daemonVersion),
	}
	c.Tags = append(c.Tags,
		"os:"+runtime.GOOS,
		"arch:"+runtime.GOARCH,
	)
	return c
}

// SetVersion sets the capability block's version string, matching
// lmap_capability_set_version() in the original.
func (c *Capability) SetVersion(v string) {
	c.Version.SetValue(v)
}
