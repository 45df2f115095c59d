//go:build integration

package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"retailpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestDispatcherAndPoolDeliverEvents(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan string, 1)
	pool := NewPool(rdb)
	pool.Handle("order.created", func(_ context.Context, payload json.RawMessage) error {
		var body map[string]string
		if err := json.Unmarshal(payload, &body); err != nil {
			return err
		}
		got <- body["order_id"]
		return nil
	})
	pool.Start(ctx, 1)

	d := NewDispatcher(rdb, nil)
	require.NoError(t, d.Publish(ctx, "order.created", map[string]string{"order_id": "o-42"}))

	select {
	case id := <-got:
		assert.Equal(t, "o-42", id)
	case <-time.After(10 * time.Second):
		t.Fatal("job was not processed")
	}

	cancel()
	pool.Wait()
}

func TestPoolMovesExhaustedJobsToDLQ(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attempts := make(chan struct{}, MaxAttempts)
	pool := NewPool(rdb)
	pool.Handle("order.created", func(context.Context, json.RawMessage) error {
		attempts <- struct{}{}
		return errors.New("always fails")
	})
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb, nil).Publish(ctx, "order.created", map[string]string{"order_id": "o-1"}))

	require.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueEvents)
		return err == nil && n == 1
	}, 15*time.Second, 100*time.Millisecond)
	assert.Len(t, attempts, MaxAttempts)

	entries, err := ReadDLQ(ctx, rdb, QueueEvents, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "order.created", entries[0].JobType)
	assert.Equal(t, MaxAttempts, entries[0].Attempts)
	assert.Equal(t, "always fails", entries[0].Reason)

	cancel()
	pool.Wait()
}

func TestPoolParksUnknownJobTypes(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool := NewPool(rdb)
	pool.Start(ctx, 1)
	require.NoError(t, NewDispatcher(rdb, nil).Publish(ctx, "order.teleported", struct{}{}))

	require.Eventually(t, func() bool {
		n, err := DLQLength(ctx, rdb, QueueEvents)
		return err == nil && n == 1
	}, 15*time.Second, 100*time.Millisecond)

	cancel()
	pool.Wait()
}
