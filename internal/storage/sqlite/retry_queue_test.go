package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/atscrawl/internal/common"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(arbor.NewLogger(), &common.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "test.db"), WALMode: false, CacheSizeMB: 8, BusyTimeoutMS: 2000, Environment: "development",
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRetryQueueEmptyReturnsNilMessage(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	msg, del, err := store.ReceiveRetry(ctx)
	require.NoError(t, err)
	require.Nil(t, msg)
	require.Nil(t, del)
}

func TestRetryQueueEnqueueThenReceiveThenDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.EnqueueRetry(ctx, RetryMessage{
		Provider: "ashby", CrawlID: "ashby-CC-MAIN-2026-04", Reason: "page_error_budget_exceeded",
	}))

	msg, del, err := store.ReceiveRetry(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Equal(t, "ashby", msg.Provider)
	require.Equal(t, "page_error_budget_exceeded", msg.Reason)

	require.NoError(t, del())

	// Draining again finds nothing left.
	msg, _, err = store.ReceiveRetry(ctx)
	require.NoError(t, err)
	require.Nil(t, msg)
}
