package model

import (
	"time"

	"github.com/google/uuid"
)

// Agent is the LMAP agent identity block, spec.md §3. At most one exists
// per Model.
type Agent struct {
	AgentID           Optional[string]
	GroupID           Optional[string]
	MeasurementPoint  Optional[string]
	ControllerTimeout time.Duration // 0 means disabled, spec.md §9 Open Question

	ReportAgentID          bool
	ReportGroupID          bool
	ReportMeasurementPoint bool

	LastStarted Optional[time.Time]
	ReportDate  Optional[time.Time]
}

// NewAgent returns a zero-value Agent with no identity fields set.
func NewAgent() *Agent {
	return &Agent{}
}

// SetAgentID validates and sets the agent's UUID identity.
func (a *Agent) SetAgentID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return invalidf("agent-id %q is not a valid UUID", id)
	}
	a.AgentID.SetValue(id)
	return nil
}

// SetReportAgentID enforces the boolean-coupling invariant from spec.md §3:
// report-agent-id may be true only if agent-id is set.
func (a *Agent) SetReportAgentID(v bool) error {
	if v && !a.AgentID.Set {
		return invalidf("report-agent-id cannot be true when agent-id is unset")
	}
	a.ReportAgentID = v
	return nil
}

// SetReportGroupID enforces the boolean-coupling invariant for group-id.
func (a *Agent) SetReportGroupID(v bool) error {
	if v && !a.GroupID.Set {
		return invalidf("report-group-id cannot be true when group-id is unset")
	}
	a.ReportGroupID = v
	return nil
}

// SetReportMeasurementPoint enforces the boolean-coupling invariant for
// measurement-point.
func (a *Agent) SetReportMeasurementPoint(v bool) error {
	if v && !a.MeasurementPoint.Set {
		return invalidf("report-measurement-point cannot be true when measurement-point is unset")
	}
	a.ReportMeasurementPoint = v
	return nil
}

// Validate checks the invariants that only depend on the Agent itself.
func (a *Agent) Validate() error {
	if a == nil {
		return nil
	}
	if a.ReportAgentID && !a.AgentID.Set {
		return invalidf("agent: report-agent-id set without agent-id")
	}
	if a.ReportGroupID && !a.GroupID.Set {
		return invalidf("agent: report-group-id set without group-id")
	}
	if a.ReportMeasurementPoint && !a.MeasurementPoint.Set {
		return invalidf("agent: report-measurement-point set without measurement-point")
	}
	return nil
}
