package eventbus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEvent struct {
	id string
}

func (e testEvent) EventType() string     { return "test.event" }
func (e testEvent) AggregateID() string   { return e.id }
func (e testEvent) AggregateType() string { return "test" }

func TestEmit_DispatchesToAllHandlers(t *testing.T) {
	bus := New()

	var mu sync.Mutex
	var got []string
	var wg sync.WaitGroup
	wg.Add(2)

	bus.On("test.event", func(ctx context.Context, e Event) {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		got = append(got, "first:"+e.AggregateID())
	})
	bus.On("test.event", func(ctx context.Context, e Event) {
		defer wg.Done()
		mu.Lock()
		defer mu.Unlock()
		got = append(got, "second:"+e.AggregateID())
	})

	bus.Emit(context.Background(), testEvent{id: "run-1"})

	waitOrTimeout(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, got, 2)
	assert.Contains(t, got, "first:run-1")
	assert.Contains(t, got, "second:run-1")
}

func TestEmit_NoHandlersIsSafe(t *testing.T) {
	bus := New()
	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), testEvent{id: "run-1"})
	})
}

func TestEmit_HandlerPanicDoesNotEscapeOrBlockOthers(t *testing.T) {
	bus := New()

	var wg sync.WaitGroup
	wg.Add(2)

	bus.On("test.event", func(ctx context.Context, e Event) {
		defer wg.Done()
		panic("boom")
	})

	var ran bool
	var mu sync.Mutex
	bus.On("test.event", func(ctx context.Context, e Event) {
		defer wg.Done()
		mu.Lock()
		ran = true
		mu.Unlock()
	})

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), testEvent{id: "run-1"})
	})

	waitOrTimeout(t, &wg)

	mu.Lock()
	defer mu.Unlock()
	assert.True(t, ran, "a panicking handler must not prevent sibling handlers from running")
}

func TestOff_RemovesAllHandlersForType(t *testing.T) {
	bus := New()

	var called bool
	bus.On("test.event", func(ctx context.Context, e Event) {
		called = true
	})
	bus.Off("test.event")
	bus.Emit(context.Background(), testEvent{id: "run-1"})

	time.Sleep(20 * time.Millisecond)
	assert.False(t, called)
}

func TestSubscribe_IsAnAliasForOn(t *testing.T) {
	bus := New()

	var wg sync.WaitGroup
	wg.Add(1)
	var gotID string
	bus.Subscribe("test.event", func(ctx context.Context, e Event) {
		defer wg.Done()
		gotID = e.AggregateID()
	})

	bus.Emit(context.Background(), testEvent{id: "run-42"})
	waitOrTimeout(t, &wg)
	assert.Equal(t, "run-42", gotID)
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		require.Fail(t, "timed out waiting for handlers")
	}
}
