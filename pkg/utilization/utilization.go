// Package utilization provides the node registry's reference implementation
// of the scheduler's types.Utilization contract: an opaque per-node load
// signal combining a shard-count estimate with disk fill.
package utilization

// OverloadThreshold is the cached-score value at or above which a node is
// considered overloaded: the scheduler will only place a shard there if
// every alternative is also overloaded.
const OverloadThreshold = 10000

// perShard is the score weight of a single shard location. Disk fill is
// folded in as a sub-perShard remainder, so shard count always dominates
// the ordering and disk fill only breaks ties between nodes carrying the
// same number of shards.
const perShard = 1000

// Utilization is a node's load snapshot as reported by the node registry's
// heartbeat, plus whatever shard-count bumps the scheduler has applied
// ahead of the next heartbeat (see Scheduler.UpdateRefCounts).
type Utilization struct {
	shardCount    uint64
	diskUsedBytes uint64
	diskCapBytes  uint64
}

// New builds a Utilization from a node's self-reported shard count and disk
// usage.
func New(shardCount, diskUsedBytes, diskCapBytes uint64) *Utilization {
	return &Utilization{
		shardCount:    shardCount,
		diskUsedBytes: diskUsedBytes,
		diskCapBytes:  diskCapBytes,
	}
}

// CachedScore combines shard count and disk fill into a single total order.
// Lower is better.
func (u *Utilization) CachedScore() uint64 {
	var fillPerMille uint64
	if u.diskCapBytes > 0 {
		fillPerMille = (u.diskUsedBytes * perShard) / u.diskCapBytes
		if fillPerMille >= perShard {
			fillPerMille = perShard - 1
		}
	}
	return u.shardCount*perShard + fillPerMille
}

// IsOverloaded reports whether score represents a critically loaded node.
func (u *Utilization) IsOverloaded(score uint64) bool {
	return score >= OverloadThreshold
}

// AdjustShardCountMax raises the shard-count estimate to at least n, if it
// isn't already there. It never lowers the estimate: that only happens when
// the node registry delivers a fresh heartbeat via NodeUpsert.
func (u *Utilization) AdjustShardCountMax(n uint64) {
	if n > u.shardCount {
		u.shardCount = n
	}
}

// ShardCount returns the utilization's current shard-count estimate, for
// diagnostics and tests.
func (u *Utilization) ShardCount() uint64 {
	return u.shardCount
}
