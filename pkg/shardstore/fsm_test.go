package shardstore

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/hashicorp/raft"
	"github.com/pageplane/shardsched/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFSM(t *testing.T) *FSM {
	t.Helper()
	store, err := newBoltIntentStore(filepath.Join(t.TempDir(), "intents.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.close() })
	return newFSM(store)
}

func applyCmd(t *testing.T, f *FSM, op string, payload nodePayload) interface{} {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	cmd, err := json.Marshal(Command{Op: op, Data: data})
	require.NoError(t, err)
	return f.Apply(&raft.Log{Data: cmd})
}

func TestFSM_AttachThenDetach(t *testing.T) {
	f := newTestFSM(t)
	resp := applyCmd(t, f, opAttach, nodePayload{ShardID: "tenant-1/0000", NodeID: 1})
	require.Nil(t, resp)

	record, err := f.store.get("tenant-1/0000")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.HasAttached)
	assert.Equal(t, types.NodeID(1), record.Attached)

	resp = applyCmd(t, f, opDetach, nodePayload{ShardID: "tenant-1/0000"})
	require.Nil(t, resp)
	record, err = f.store.get("tenant-1/0000")
	require.NoError(t, err)
	assert.False(t, record.HasAttached)
}

func TestFSM_AddRemoveSecondaryIsIdempotent(t *testing.T) {
	f := newTestFSM(t)
	applyCmd(t, f, opAddSecondary, nodePayload{ShardID: "tenant-1/0000", NodeID: 2})
	applyCmd(t, f, opAddSecondary, nodePayload{ShardID: "tenant-1/0000", NodeID: 2})

	record, err := f.store.get("tenant-1/0000")
	require.NoError(t, err)
	assert.Equal(t, []types.NodeID{2}, record.Secondaries)

	applyCmd(t, f, opRemoveSecondary, nodePayload{ShardID: "tenant-1/0000", NodeID: 2})
	record, err = f.store.get("tenant-1/0000")
	require.NoError(t, err)
	assert.Empty(t, record.Secondaries)
}

func TestFSM_PromoteSecondaryMovesNodeToAttached(t *testing.T) {
	f := newTestFSM(t)
	applyCmd(t, f, opAddSecondary, nodePayload{ShardID: "tenant-1/0000", NodeID: 3})
	applyCmd(t, f, opPromoteSecondary, nodePayload{ShardID: "tenant-1/0000", NodeID: 3})

	record, err := f.store.get("tenant-1/0000")
	require.NoError(t, err)
	assert.True(t, record.HasAttached)
	assert.Equal(t, types.NodeID(3), record.Attached)
	assert.Empty(t, record.Secondaries)
}

func TestFSM_DemoteAttachedMovesNodeToSecondary(t *testing.T) {
	f := newTestFSM(t)
	applyCmd(t, f, opAttach, nodePayload{ShardID: "tenant-1/0000", NodeID: 4})
	applyCmd(t, f, opDemoteAttached, nodePayload{ShardID: "tenant-1/0000", NodeID: 4})

	record, err := f.store.get("tenant-1/0000")
	require.NoError(t, err)
	assert.False(t, record.HasAttached)
	assert.Equal(t, []types.NodeID{4}, record.Secondaries)
}

func TestFSM_UnknownOpReturnsError(t *testing.T) {
	f := newTestFSM(t)
	resp := applyCmd(t, f, "not_a_real_op", nodePayload{ShardID: "x"})
	assert.Error(t, resp.(error))
}

func TestFSM_SnapshotCapturesRecords(t *testing.T) {
	f := newTestFSM(t)
	applyCmd(t, f, opAttach, nodePayload{ShardID: "tenant-1/0000", NodeID: 1})
	applyCmd(t, f, opAddSecondary, nodePayload{ShardID: "tenant-1/0000", NodeID: 2})

	snap, err := f.Snapshot()
	require.NoError(t, err)
	fsmSnap, ok := snap.(*fsmSnapshot)
	require.True(t, ok)
	require.Len(t, fsmSnap.records, 1)
	assert.Equal(t, "tenant-1/0000", fsmSnap.records[0].ShardID)
}
