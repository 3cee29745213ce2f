package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversToEverySubscriberOfTopic(t *testing.T) {
	b := New(nil)
	first := b.Subscribe(TopicRefresh)
	second := b.Subscribe(TopicRefresh)
	other := b.Subscribe(TopicSignedOut)

	b.Publish(Refresh("department"))

	ctx := context.Background()
	for _, s := range []*Subscription{first, second} {
		ev, err := s.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, TopicRefresh, ev.Topic)
		assert.Equal(t, "department", ev.Resource)
	}
	assert.Equal(t, 0, other.Pending())
}

func TestBus_SubscribeWithoutTopicsReceivesEverything(t *testing.T) {
	b := New(nil)
	all := b.Subscribe()

	b.Publish(Refresh("role"))
	b.Publish(SignedOut())

	assert.Equal(t, 2, all.Pending())
}

func TestBus_QueuesWithoutDropping(t *testing.T) {
	b := New(nil)
	s := b.Subscribe(TopicRefresh)

	for i := 0; i < 100; i++ {
		b.Publish(Refresh("member"))
	}

	assert.Equal(t, 100, s.Pending())
}

func TestSubscription_NextWaitsForPublish(t *testing.T) {
	b := New(nil)
	s := b.Subscribe(TopicRefresh)

	var wg sync.WaitGroup
	wg.Add(1)
	var got Event
	go func() {
		defer wg.Done()
		got, _ = s.Next(context.Background())
	}()

	time.Sleep(10 * time.Millisecond)
	b.Publish(Refresh("role"))
	wg.Wait()

	assert.Equal(t, "role", got.Resource)
}

func TestSubscription_NextHonoursContext(t *testing.T) {
	b := New(nil)
	s := b.Subscribe(TopicRefresh)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Next(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSubscription_Close(t *testing.T) {
	b := New(nil)
	s := b.Subscribe(TopicRefresh)
	require.Equal(t, 1, b.SubscribersCount())

	s.Close()
	s.Close()

	assert.Equal(t, 0, b.SubscribersCount())
	b.Publish(Refresh("role"))
	_, err := s.Next(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	s := r.Subscribe(TopicRefresh)

	r.Publish(Refresh("department"))
	r.Publish(SignedOut())

	assert.Len(t, r.Events(), 2)
	require.Len(t, r.Published(TopicRefresh), 1)
	assert.Equal(t, "department", r.Published(TopicRefresh)[0].Resource)
	assert.Equal(t, 1, s.Pending())
}
