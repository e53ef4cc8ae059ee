// Package registry tracks every storage node's eligibility and utilization
// as reported by its periodic heartbeat, persists the latest report per
// node, and projects the result into the node descriptors
// pkg/scheduler.New and Scheduler.NodeUpsert consume. It is the node
// registry collaborator referenced throughout pkg/scheduler's doc comments.
package registry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pageplane/shardsched/pkg/log"
	"github.com/pageplane/shardsched/pkg/scheduler"
	"github.com/pageplane/shardsched/pkg/types"
	"github.com/pageplane/shardsched/pkg/utilization"
	"github.com/rs/zerolog"
)

var bucketNodes = []byte("registry_nodes")

// NodeID is the registry's view of the shared contract type.
type NodeID = types.NodeID

// Heartbeat is what a storage node reports periodically.
type Heartbeat struct {
	NodeID        NodeID `json:"node_id"`
	Eligible      bool   `json:"eligible"`
	ShardCount    uint64 `json:"shard_count"`
	DiskUsedBytes uint64 `json:"disk_used_bytes"`
	DiskCapBytes  uint64 `json:"disk_cap_bytes"`
}

// record is a heartbeat plus the registry's own bookkeeping, persisted as
// one JSON value per node.
type record struct {
	Heartbeat
	LastSeen time.Time `json:"last_seen"`
}

// Registry is a durable, in-memory-cached table of node heartbeats.
type Registry struct {
	mu     sync.RWMutex
	nodes  map[NodeID]*record
	db     *bolt.DB
	logger zerolog.Logger
}

// New opens (creating if necessary) a node registry backed by a bolt
// database at dbPath, and loads any previously persisted heartbeats into
// memory.
func New(dbPath string) (*Registry, error) {
	db, err := bolt.Open(dbPath, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketNodes)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	r := &Registry{
		nodes:  make(map[NodeID]*record),
		db:     db,
		logger: log.WithComponent("registry"),
	}
	if err := r.load(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load persisted nodes: %w", err)
	}
	return r, nil
}

func (r *Registry) load() error {
	return r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).ForEach(func(_, v []byte) error {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			r.nodes[rec.NodeID] = &rec
			return nil
		})
	})
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// Heartbeat records a node's latest self-report, persisting it and updating
// the in-memory cache Snapshot reads from.
func (r *Registry) Heartbeat(hb Heartbeat) error {
	rec := &record{Heartbeat: hb, LastSeen: time.Now()}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal heartbeat: %w", err)
	}
	if err := r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).Put(nodeKey(hb.NodeID), data)
	}); err != nil {
		return fmt.Errorf("persist heartbeat: %w", err)
	}

	r.mu.Lock()
	r.nodes[hb.NodeID] = rec
	r.mu.Unlock()
	return nil
}

// MarkOffline marks a node ineligible without discarding its last known
// shard count, so a later heartbeat's AdjustShardCountMax comparison still
// has something meaningful to compare against.
func (r *Registry) MarkOffline(id NodeID) error {
	r.mu.Lock()
	rec, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return nil
	}
	rec.Eligible = false
	r.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal heartbeat: %w", err)
	}
	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).Put(nodeKey(id), data)
	})
}

// Remove forgets a node entirely: used when a node is decommissioned, not
// merely offline.
func (r *Registry) Remove(id NodeID) error {
	r.mu.Lock()
	delete(r.nodes, id)
	r.mu.Unlock()

	return r.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketNodes).Delete(nodeKey(id))
	})
}

// Snapshot projects every known node into scheduler.NodeDescriptor, ready to
// pass to scheduler.New or to drive repeated Scheduler.NodeUpsert calls.
func (r *Registry) Snapshot() []scheduler.NodeDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]scheduler.NodeDescriptor, 0, len(r.nodes))
	for id, rec := range r.nodes {
		out = append(out, scheduler.NodeDescriptor{ID: id, MaySchedule: maySchedule(rec.Heartbeat)})
	}
	return out
}

// NodeCounts returns the number of known nodes that are currently eligible
// versus ineligible for new placements, for metrics polling.
func (r *Registry) NodeCounts() (eligible, ineligible int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.nodes {
		if rec.Eligible {
			eligible++
		} else {
			ineligible++
		}
	}
	return eligible, ineligible
}

// Stale returns the ids of every node whose last heartbeat is older than
// threshold, for a caller's liveness sweep to mark offline or remove.
func (r *Registry) Stale(threshold time.Time) []NodeID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []NodeID
	for id, rec := range r.nodes {
		if rec.LastSeen.Before(threshold) {
			stale = append(stale, id)
		}
	}
	return stale
}

func maySchedule(hb Heartbeat) types.MaySchedule {
	if !hb.Eligible {
		return types.NotSchedulable()
	}
	return types.Schedulable(utilization.New(hb.ShardCount, hb.DiskUsedBytes, hb.DiskCapBytes))
}

func nodeKey(id NodeID) []byte {
	return []byte(id.String())
}
