package scheduler

import "github.com/pageplane/shardsched/pkg/metrics"

// ShardIntent is the minimal view of one tenant shard's placement intent
// that ConsistencyCheck needs. The shard store is the source of truth for
// intents; this is just the projection the scheduler's diagnostic replays.
type ShardIntent struct {
	// ShardID identifies the shard, used only for error messages.
	ShardID string
	// Attached is the shard's attached node, if it has one.
	Attached NodeID
	// HasAttached reports whether Attached is meaningful.
	HasAttached bool
	// Secondaries lists the shard's secondary nodes.
	Secondaries []NodeID
}

// ConsistencyCheck is an offline diagnostic: it rebuilds the per-node
// counters that `nodes` and `shards` imply and compares them against the
// live node table, failing on any discrepancy or on a shard referencing an
// unknown node. It does not mutate the scheduler.
func (s *Scheduler) ConsistencyCheck(nodes []NodeDescriptor, shards []ShardIntent) error {
	expected := make(map[NodeID]*schedulerNode, len(nodes))
	for _, n := range nodes {
		expected[n.ID] = &schedulerNode{maySchedule: n.MaySchedule}
	}

	for _, shard := range shards {
		if shard.HasAttached {
			node, ok := expected[shard.Attached]
			if !ok {
				metrics.ConsistencyCheckFailuresTotal.Inc()
				return &ConsistencyError{
					Reason: "shard " + shard.ShardID + " references nonexistent node " + shard.Attached.String(),
				}
			}
			node.shardCount++
			node.attachedShardCount++
		}

		for _, secondary := range shard.Secondaries {
			node, ok := expected[secondary]
			if !ok {
				metrics.ConsistencyCheckFailuresTotal.Inc()
				return &ConsistencyError{
					Reason: "shard " + shard.ShardID + " references nonexistent node " + secondary.String(),
				}
			}
			node.shardCount++
		}
	}

	for id, exp := range expected {
		actual, ok := s.nodes[id]
		if !ok {
			metrics.ConsistencyCheckFailuresTotal.Inc()
			return &ConsistencyError{NodeID: id, HasNode: true, Reason: "node not found in live scheduler state"}
		}
		if !actual.equalCounters(*exp) {
			metrics.ConsistencyCheckFailuresTotal.Inc()
			s.logger.Error().
				Stringer("node_id", id).
				Uint64("expected_shard_count", exp.shardCount).
				Uint64("expected_attached_shard_count", exp.attachedShardCount).
				Uint64("actual_shard_count", actual.shardCount).
				Uint64("actual_attached_shard_count", actual.attachedShardCount).
				Msg("inconsistency detected in scheduling state")
			return &ConsistencyError{NodeID: id, HasNode: true, Reason: "counters do not match replayed intents"}
		}
	}

	if len(expected) != len(s.nodes) {
		for id := range s.nodes {
			if _, ok := expected[id]; !ok {
				metrics.ConsistencyCheckFailuresTotal.Inc()
				return &ConsistencyError{NodeID: id, HasNode: true, Reason: "node found in live scheduler state but not in expected nodes"}
			}
		}
	}

	return nil
}
