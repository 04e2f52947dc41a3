package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocx/syncx/internal/blobstore"
	"github.com/ocx/syncx/internal/cache"
	"github.com/ocx/syncx/internal/deadletter"
	"github.com/ocx/syncx/internal/events"
	"github.com/ocx/syncx/internal/metrics"
	"github.com/ocx/syncx/internal/queue"
)

func TestPool_DeadLettersAfterExhaustingRetries(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory(1)
	blobs := blobstore.NewMemory() // never has the zip or the remote object
	ch := cache.NewMemory()
	dlq := deadletter.NewMemory()
	emit := events.NewMemory()
	mx := metrics.New()

	pool := New(Config{MaxInflight: 1, RetryAttempts: 2, RetryBaseDelay: time.Millisecond}, q, blobs, ch, dlq, emit, mx)

	runCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, q.Push(ctx, "never-uploaded"))

	done := make(chan struct{})
	go func() {
		pool.Run(runCtx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(dlq.Entries) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "never-uploaded", dlq.Entries[0].JobID)

	cancel()
	<-done
}
