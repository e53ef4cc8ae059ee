package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestHeartbeat_NewNodeAppearsInSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Heartbeat(Heartbeat{NodeID: 1, Eligible: true, ShardCount: 3}))

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, NodeID(1), snap[0].ID)
	assert.True(t, snap[0].MaySchedule.Eligible())
	assert.Equal(t, uint64(3000), snap[0].MaySchedule.Utilization().CachedScore())
}

func TestHeartbeat_IneligibleNodeHasNoUtilization(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Heartbeat(Heartbeat{NodeID: 1, Eligible: false}))

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.False(t, snap[0].MaySchedule.Eligible())
}

func TestHeartbeat_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.db")

	r1, err := New(path)
	require.NoError(t, err)
	require.NoError(t, r1.Heartbeat(Heartbeat{NodeID: 7, Eligible: true, ShardCount: 5}))
	require.NoError(t, r1.Close())

	r2, err := New(path)
	require.NoError(t, err)
	defer r2.Close()

	snap := r2.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, NodeID(7), snap[0].ID)
}

func TestMarkOffline_NodeBecomesIneligible(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Heartbeat(Heartbeat{NodeID: 1, Eligible: true}))
	require.NoError(t, r.MarkOffline(1))

	snap := r.Snapshot()
	require.Len(t, snap, 1)
	assert.False(t, snap[0].MaySchedule.Eligible())
}

func TestMarkOffline_UnknownNodeIsNoop(t *testing.T) {
	r := newTestRegistry(t)
	assert.NoError(t, r.MarkOffline(42))
}

func TestRemove_DeletesNodeFromSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Heartbeat(Heartbeat{NodeID: 1, Eligible: true}))
	require.NoError(t, r.Remove(1))
	assert.Empty(t, r.Snapshot())
}

func TestStale_ReturnsNodesOlderThanThreshold(t *testing.T) {
	r := newTestRegistry(t)
	require.NoError(t, r.Heartbeat(Heartbeat{NodeID: 1, Eligible: true}))

	assert.Empty(t, r.Stale(time.Now().Add(-time.Hour)))
	assert.ElementsMatch(t, []NodeID{1}, r.Stale(time.Now().Add(time.Hour)))
}
