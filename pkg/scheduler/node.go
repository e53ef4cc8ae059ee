package scheduler

import "github.com/pageplane/shardsched/pkg/types"

// NodeID is the scheduler's node identifier; a type alias for the shared
// contract type so callers outside this package never need to import
// pkg/types directly just to call NodeID(n).
type NodeID = types.NodeID

// Utilization is the scheduler's view of the shared contract type: an
// opaque per-node load signal supplied by the node registry.
type Utilization = types.Utilization

// MaySchedule is the scheduler's view of the shared contract type.
type MaySchedule = types.MaySchedule

// RefCountUpdate is the scheduler's view of the shared contract type.
type RefCountUpdate = types.RefCountUpdate

// NodeDescriptor is what the node registry supplies when a node is first
// seen or its eligibility/utilization changes.
type NodeDescriptor struct {
	ID          NodeID
	MaySchedule MaySchedule
}

// schedulerNode is the scheduler's private per-node counter state. It is
// never exposed directly; callers observe it through NodeSnapshot.
type schedulerNode struct {
	// shardCount is the total number of shard locations (attached or
	// secondary) whose intent currently references this node.
	shardCount uint64
	// attachedShardCount is the subset of shardCount that are attached
	// locations.
	attachedShardCount uint64
	// maySchedule carries the node's current eligibility and utilization.
	maySchedule MaySchedule
}

// equalCounters reports whether two schedulerNode values carry identical
// counters and comparable eligibility (ignoring the utilization payload
// itself, which is opaque and not meaningfully comparable). Used only by
// ConsistencyCheck.
func (n schedulerNode) equalCounters(other schedulerNode) bool {
	if n.maySchedule.Eligible() != other.maySchedule.Eligible() {
		return false
	}
	return n.shardCount == other.shardCount && n.attachedShardCount == other.attachedShardCount
}

// NodeSnapshot is a read-only, copyable view of one node's scheduler state,
// returned by debug/diagnostic operations.
type NodeSnapshot struct {
	ID                 NodeID `json:"id"`
	ShardCount         uint64 `json:"shard_count"`
	AttachedShardCount uint64 `json:"attached_shard_count"`
	Eligible           bool   `json:"eligible"`
}

// ShardCount returns a node's current total shard-location count, and
// whether the node is known to the scheduler at all.
func (s *Scheduler) ShardCount(id NodeID) (uint64, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return 0, false
	}
	return n.shardCount, true
}

// AttachedShardCount returns a node's current attached shard count, and
// whether the node is known to the scheduler at all.
func (s *Scheduler) AttachedShardCount(id NodeID) (uint64, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return 0, false
	}
	return n.attachedShardCount, true
}
