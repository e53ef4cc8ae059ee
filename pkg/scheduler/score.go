package scheduler

// AttachedScore ranks a candidate node for an attached-location placement.
// Lower is better. Fields are compared in declaration order, so ordering
// this struct's fields IS the scoring policy: do not reorder them casually.
type AttachedScore struct {
	AffinityScore           AffinityScore
	AttachedShardsInContext int
	UtilizationScore        uint64
	TotalAttachedShardCount uint64
	ID                      NodeID

	overloaded bool
}

// Less reports whether s is strictly preferred to o.
func (s AttachedScore) Less(o AttachedScore) bool {
	if s.AffinityScore != o.AffinityScore {
		return s.AffinityScore < o.AffinityScore
	}
	if s.AttachedShardsInContext != o.AttachedShardsInContext {
		return s.AttachedShardsInContext < o.AttachedShardsInContext
	}
	if s.UtilizationScore != o.UtilizationScore {
		return s.UtilizationScore < o.UtilizationScore
	}
	if s.TotalAttachedShardCount != o.TotalAttachedShardCount {
		return s.TotalAttachedShardCount < o.TotalAttachedShardCount
	}
	return s.ID < o.ID
}

// Overloaded reports whether this candidate's node is critically loaded.
func (s AttachedScore) Overloaded() bool { return s.overloaded }

// Node returns the node id this score was generated for.
func (s AttachedScore) Node() NodeID { return s.ID }

// generateAttachedScore scores a candidate node for an attached placement:
// affinity, then in-batch attached count, then utilization, then
// cluster-wide attached count, then node id as a final tiebreak. Returns
// ok=false for nodes that are not currently schedulable.
func generateAttachedScore(id NodeID, node *schedulerNode, ctx *ScheduleContext) (AttachedScore, bool) {
	if !node.maySchedule.Eligible() {
		return AttachedScore{}, false
	}
	u := node.maySchedule.Utilization()
	cached := u.CachedScore()
	return AttachedScore{
		AffinityScore:           ctx.NodeAffinity(id),
		AttachedShardsInContext: ctx.NodeAttachments(id),
		UtilizationScore:        cached,
		TotalAttachedShardCount: node.attachedShardCount,
		ID:                      id,
		overloaded:              u.IsOverloaded(cached),
	}, true
}

// SecondaryScore ranks a candidate node for a secondary-location placement.
// Identical to AttachedScore but omits the in-batch attached-count field:
// secondary placements don't carry the same anti-affinity pressure within a
// batch that attached placements do.
type SecondaryScore struct {
	AffinityScore           AffinityScore
	UtilizationScore        uint64
	TotalAttachedShardCount uint64
	ID                      NodeID

	overloaded bool
}

func (s SecondaryScore) Less(o SecondaryScore) bool {
	if s.AffinityScore != o.AffinityScore {
		return s.AffinityScore < o.AffinityScore
	}
	if s.UtilizationScore != o.UtilizationScore {
		return s.UtilizationScore < o.UtilizationScore
	}
	if s.TotalAttachedShardCount != o.TotalAttachedShardCount {
		return s.TotalAttachedShardCount < o.TotalAttachedShardCount
	}
	return s.ID < o.ID
}

func (s SecondaryScore) Overloaded() bool { return s.overloaded }

func (s SecondaryScore) Node() NodeID { return s.ID }

func generateSecondaryScore(id NodeID, node *schedulerNode, ctx *ScheduleContext) (SecondaryScore, bool) {
	if !node.maySchedule.Eligible() {
		return SecondaryScore{}, false
	}
	u := node.maySchedule.Utilization()
	cached := u.CachedScore()
	return SecondaryScore{
		AffinityScore:           ctx.NodeAffinity(id),
		UtilizationScore:        cached,
		TotalAttachedShardCount: node.attachedShardCount,
		ID:                      id,
		overloaded:              u.IsOverloaded(cached),
	}, true
}
