package ws

import (
	"context"
	"testing"
	"time"

	"nexusboard/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBridge_RelaysAcrossInstances(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	defer m.Close()
	rc := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rc.Close()

	local, remote := NewHub(), NewHub()
	sender := NewRedisBridge(rc, "events", local)
	receiver := NewRedisBridge(rc, "events", remote)

	c := newTestClient(1, 8)
	remote.Register(c)
	remote.Subscribe(c, domain.BoardRoom(5))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		receiver.Run(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool {
		return m.PubSubNumSub("events")["events"] == 1
	}, time.Second, 10*time.Millisecond)

	sender.Publish(context.Background(), domain.MembersChanged(5))
	require.Eventually(t, func() bool { return len(c.send) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.MembersChanged(5), recv(t, c))

	// garbage on the channel is skipped
	require.NoError(t, rc.Publish(context.Background(), "events", "not json").Err())
	sender.Publish(context.Background(), domain.TaskChanged(5))
	require.Eventually(t, func() bool { return len(c.send) == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, domain.TaskChanged(5), recv(t, c))

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not exit")
	}
}

func TestRedisBridge_FallsBackToLocalHub(t *testing.T) {
	m, err := miniredis.Run()
	require.NoError(t, err)
	rc := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	defer rc.Close()
	m.Close()

	hub := NewHub()
	c := newTestClient(1, 8)
	hub.Register(c)
	hub.Subscribe(c, domain.DashboardRoom)

	NewRedisBridge(rc, "events", hub).Publish(context.Background(), domain.BoardsChanged(3))
	assert.Equal(t, domain.BoardsChanged(3), recv(t, c))
}
