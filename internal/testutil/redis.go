// Package testutil provides testing utilities for store-backed tests.
//
// Store Setup:
//
//	mr, st := testutil.SetupRedisStore(t)
//	// mr is the miniredis instance, st the HashStore under test.
//
// The store and the miniredis server are torn down automatically via t.Cleanup.
package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/allisson/authd/internal/store"
)

// SetupRedisStore starts an in-process miniredis server and returns it along
// with a RedisStore connected to it. Both are cleaned up when the test ends.
func SetupRedisStore(t *testing.T) (*miniredis.Miniredis, *store.RedisStore) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.NewRedisStore(client)

	t.Cleanup(func() {
		_ = st.Close()
		mr.Close()
	})

	return mr, st
}
