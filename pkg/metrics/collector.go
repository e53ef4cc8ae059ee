package metrics

import "time"

// nodeCounter is the minimal view Collector needs of the node registry,
// satisfied structurally by *registry.Registry. Defined here rather than
// imported directly: pkg/registry already imports this package (through
// pkg/scheduler), so importing it back would be a cycle.
type nodeCounter interface {
	NodeCounts() (eligible, ineligible int)
}

// raftStats is the minimal view Collector needs of the shard store,
// satisfied structurally by *shardstore.Store for the same reason.
type raftStats interface {
	IsLeader() bool
	Stats() (lastLogIndex, appliedIndex uint64)
}

// Collector periodically polls the node registry and the shard store and
// republishes what it finds as gauges, the way a cluster's manager process
// polls its own Raft handle on a ticker rather than pushing metrics inline
// from every mutation.
type Collector struct {
	nodes  nodeCounter
	store  raftStats
	stopCh chan struct{}
}

// NewCollector creates a Collector that polls the given node registry and
// shard store on each tick. Either argument may be nil to skip that half of
// collection (useful for a process that only runs one of the two).
func NewCollector(nodes nodeCounter, store raftStats) *Collector {
	return &Collector{
		nodes:  nodes,
		store:  store,
		stopCh: make(chan struct{}),
	}
}

// Start begins polling on a 15 second interval, matching the scrape
// interval recommended for this package's metrics.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts polling.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	c.collectNodeMetrics()
	c.collectRaftMetrics()
}

func (c *Collector) collectNodeMetrics() {
	if c.nodes == nil {
		return
	}
	eligible, ineligible := c.nodes.NodeCounts()
	NodesTotal.WithLabelValues("true").Set(float64(eligible))
	NodesTotal.WithLabelValues("false").Set(float64(ineligible))
}

func (c *Collector) collectRaftMetrics() {
	if c.store == nil {
		return
	}

	if c.store.IsLeader() {
		RaftLeader.Set(1)
	} else {
		RaftLeader.Set(0)
	}

	lastLogIndex, appliedIndex := c.store.Stats()
	RaftLogIndex.Set(float64(lastLogIndex))
	RaftAppliedIndex.Set(float64(appliedIndex))
}
