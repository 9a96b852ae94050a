package activity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/authd/internal/activity"
	"github.com/allisson/authd/internal/store"
	"github.com/allisson/authd/internal/testutil"
)

func setupIndex(t *testing.T) (*activity.Index, *store.RedisStore) {
	t.Helper()
	_, st := testutil.SetupRedisStore(t)
	idx := activity.NewIndex(st)
	require.NoError(t, idx.Load(context.Background()))
	return idx, st
}

func TestRegister_AssignsIncreasingIndices(t *testing.T) {
	ctx := context.Background()
	idx, _ := setupIndex(t)

	require.NoError(t, idx.Register(ctx, []string{"act_1", "act_2", "act_3"}))

	assert.Equal(t, map[string]int{"act_1": 0, "act_2": 1, "act_3": 2}, idx.Snapshot())
	assert.Equal(t, 3, idx.NextIndex())
}

func TestRegister_Idempotent(t *testing.T) {
	ctx := context.Background()
	idx, st := setupIndex(t)

	require.NoError(t, idx.Register(ctx, []string{"act_1"}))
	first, ok := idx.IndexOf("act_1")
	require.True(t, ok)

	// Second registration must not reassign nor rewrite the counter.
	require.NoError(t, idx.Register(ctx, []string{"act_1"}))
	second, ok := idx.IndexOf("act_1")
	require.True(t, ok)
	assert.Equal(t, first, second)

	raw, err := st.Get(ctx, store.NextIndexKey)
	require.NoError(t, err)
	assert.Equal(t, "1", raw)
}

func TestRegister_PersistsMapAndCounter(t *testing.T) {
	ctx := context.Background()
	idx, st := setupIndex(t)

	require.NoError(t, idx.Register(ctx, []string{"act_1", "act_2"}))

	stored, err := st.HGetAll(ctx, store.ActivityIndexKey)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"act_1": "0", "act_2": "1"}, stored)

	raw, err := st.Get(ctx, store.NextIndexKey)
	require.NoError(t, err)
	assert.Equal(t, "2", raw)
}

func TestRemoveAll_KeepsCounter(t *testing.T) {
	ctx := context.Background()
	idx, _ := setupIndex(t)

	require.NoError(t, idx.Register(ctx, []string{"act_1", "act_2", "act_3"}))
	require.NoError(t, idx.RemoveAll(ctx, "act_2"))

	assert.Equal(t, map[string]int{"act_1": 0, "act_3": 2}, idx.Snapshot())
	assert.Equal(t, 3, idx.NextIndex())

	require.NoError(t, idx.RemoveAll(ctx, "act_3"))
	require.NoError(t, idx.RemoveAll(ctx, "act_1"))
	assert.Empty(t, idx.Snapshot())
	assert.Equal(t, 3, idx.NextIndex())
}

func TestIndexPermanence_AfterRemoveAndReregister(t *testing.T) {
	ctx := context.Background()
	idx, _ := setupIndex(t)

	require.NoError(t, idx.Register(ctx, []string{"act_1"}))
	require.NoError(t, idx.RemoveAll(ctx, "act_1"))
	require.NoError(t, idx.Register(ctx, []string{"act_1"}))

	// The label gets a brand-new index; the old bit position stays retired.
	index, ok := idx.IndexOf("act_1")
	require.True(t, ok)
	assert.Equal(t, 1, index)
}

func TestLoad_RestoresPersistedState(t *testing.T) {
	ctx := context.Background()
	idx, st := setupIndex(t)

	require.NoError(t, idx.Register(ctx, []string{"act_1", "act_2"}))

	reloaded := activity.NewIndex(st)
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, idx.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, 2, reloaded.NextIndex())
}

func TestLoad_DefaultsWhenEmpty(t *testing.T) {
	ctx := context.Background()
	_, st := testutil.SetupRedisStore(t)

	idx := activity.NewIndex(st)
	require.NoError(t, idx.Load(ctx))

	assert.Empty(t, idx.Snapshot())
	assert.Equal(t, 0, idx.NextIndex())

	// Load writes the default counter so later reads see a well-formed value.
	raw, err := st.Get(ctx, store.NextIndexKey)
	require.NoError(t, err)
	assert.Equal(t, "0", raw)
}

func TestLoad_CorruptCounter(t *testing.T) {
	ctx := context.Background()
	_, st := testutil.SetupRedisStore(t)
	require.NoError(t, st.Set(ctx, store.NextIndexKey, "bogus"))

	idx := activity.NewIndex(st)
	assert.Error(t, idx.Load(ctx))
}

func TestSnapshot_Restricted(t *testing.T) {
	ctx := context.Background()
	idx, _ := setupIndex(t)

	require.NoError(t, idx.Register(ctx, []string{"act_1", "act_2", "act_3"}))

	snapshot := idx.Snapshot("act_1", "act_3", "unknown")
	assert.Equal(t, map[string]int{"act_1": 0, "act_3": 2}, snapshot)

	// Snapshots are copies; mutating one must not leak back.
	snapshot["act_1"] = 99
	index, _ := idx.IndexOf("act_1")
	assert.Equal(t, 0, index)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	idx, st := setupIndex(t)

	require.NoError(t, idx.Register(ctx, []string{"act_1", "act_2"}))
	require.NoError(t, idx.Reset(ctx))

	assert.Empty(t, idx.Snapshot())
	assert.Equal(t, 0, idx.NextIndex())

	raw, err := st.Get(ctx, store.NextIndexKey)
	require.NoError(t, err)
	assert.Equal(t, "0", raw)

	stored, err := st.HGetAll(ctx, store.ActivityIndexKey)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
