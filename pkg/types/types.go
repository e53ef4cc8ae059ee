// Package types holds the small set of data types shared between the
// scheduler and the collaborators that drive it (a node registry and a
// tenant-shard store). None of these types carry behavior of their own
// beyond what the scheduler needs to score and place shards.
package types

import "fmt"

// NodeID is an opaque, totally ordered storage-node identifier. Ordering is
// used only as a final, deterministic tiebreak during scheduling.
type NodeID uint64

func (id NodeID) String() string {
	return fmt.Sprintf("node-%d", uint64(id))
}

// Utilization is the opaque per-node load signal the node registry attaches
// to every schedulable node. The scheduler never interprets its internals:
// it only ever compares CachedScore values and asks IsOverloaded.
type Utilization interface {
	// CachedScore returns the last-known load score for this node. Lower is
	// better. The scheduler treats this as an opaque total order.
	CachedScore() uint64

	// IsOverloaded reports whether the given cached score represents a node
	// that is critically loaded and should only be used if no alternative
	// exists.
	IsOverloaded(score uint64) bool

	// AdjustShardCountMax raises the utilization's internal shard-count
	// estimate to at least n. Used by the scheduler to reflect placements it
	// has made that the node has not yet reported back through a heartbeat.
	AdjustShardCountMax(n uint64)
}

// MaySchedule records whether a node is currently eligible to receive new
// shard placements, and if so, carries its latest utilization snapshot.
type MaySchedule struct {
	eligible    bool
	utilization Utilization
}

// Schedulable builds a MaySchedule for a node that may receive placements,
// carrying its current utilization snapshot.
func Schedulable(u Utilization) MaySchedule {
	return MaySchedule{eligible: true, utilization: u}
}

// NotSchedulable builds a MaySchedule for a node that is not currently
// eligible for new placements (e.g. offline, draining, paused).
func NotSchedulable() MaySchedule {
	return MaySchedule{}
}

// Eligible reports whether the node may currently receive new placements.
func (m MaySchedule) Eligible() bool {
	return m.eligible
}

// Utilization returns the node's utilization snapshot. Only meaningful when
// Eligible() is true.
func (m MaySchedule) Utilization() Utilization {
	return m.utilization
}

// RefCountUpdate enumerates the ways a tenant shard store's committed intent
// change affects a node's scheduler counters.
type RefCountUpdate int

const (
	// Attach is issued when a shard's attached location is newly set to a node.
	Attach RefCountUpdate = iota
	// Detach is issued when a shard's attached location is cleared from a node.
	Detach
	// AddSecondary is issued when a secondary location is added on a node.
	AddSecondary
	// RemoveSecondary is issued when a secondary location is removed from a node.
	RemoveSecondary
	// PromoteSecondary is issued when an existing secondary on a node becomes attached.
	PromoteSecondary
	// DemoteAttached is issued when an attached location on a node becomes a secondary.
	DemoteAttached
)

func (u RefCountUpdate) String() string {
	switch u {
	case Attach:
		return "attach"
	case Detach:
		return "detach"
	case AddSecondary:
		return "add_secondary"
	case RemoveSecondary:
		return "remove_secondary"
	case PromoteSecondary:
		return "promote_secondary"
	case DemoteAttached:
		return "demote_attached"
	default:
		return "unknown"
	}
}

// AddsLoad reports whether this update increases the load the node's
// utilization snapshot should reflect immediately, rather than waiting for
// the node's next heartbeat. Removals deliberately leave the cached
// utilization stale until the node's next report: see Scheduler.UpdateRefCounts.
func (u RefCountUpdate) AddsLoad() bool {
	return u == Attach || u == AddSecondary
}
