package scheduler

import "errors"

// ScheduleError is returned by Scheduler.ScheduleAttached / ScheduleSecondary
// when no node can be selected. Apart from ConsistencyCheck, which reports
// through ConsistencyError, every other operation is synchronous and
// infallible.
type ScheduleError struct {
	kind scheduleErrorKind
}

type scheduleErrorKind int

const (
	errKindNoPageservers scheduleErrorKind = iota
	errKindImpossibleConstraint
)

// ErrNoPageservers is returned when the node table holds no nodes at all.
var ErrNoPageservers = &ScheduleError{kind: errKindNoPageservers}

// ErrImpossibleConstraint is returned when every node is either in
// hard_exclude or ineligible (MaySchedule == No).
var ErrImpossibleConstraint = &ScheduleError{kind: errKindImpossibleConstraint}

func (e *ScheduleError) Error() string {
	switch e.kind {
	case errKindNoPageservers:
		return "no pageservers found"
	case errKindImpossibleConstraint:
		return "no pageserver found matching constraint"
	default:
		return "scheduling error"
	}
}

// Is allows errors.Is(err, ErrNoPageservers) / errors.Is(err, ErrImpossibleConstraint)
// to work against a ScheduleError returned by the scheduler.
func (e *ScheduleError) Is(target error) bool {
	var other *ScheduleError
	if !errors.As(target, &other) {
		return false
	}
	return e.kind == other.kind
}

// ConsistencyError is returned by Scheduler.ConsistencyCheck when the live
// node table disagrees with the counters derived by replaying shard intents.
type ConsistencyError struct {
	// NodeID is set (with HasNode) when the discrepancy is attributable to
	// one node, including a node present in only one of the two node sets;
	// it is the zero value when a shard references a node absent from the
	// supplied node set, which Reason names instead.
	NodeID  NodeID
	HasNode bool
	Reason  string
}

func (e *ConsistencyError) Error() string {
	if e.HasNode {
		return "inconsistent scheduling state for node " + e.NodeID.String() + ": " + e.Reason
	}
	return "inconsistent scheduling state: " + e.Reason
}
