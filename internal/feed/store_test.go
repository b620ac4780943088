package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStoreGetSet(t *testing.T) {
	store := NewStore("initial")
	require.Equal(t, "initial", store.Get())

	store.Set("updated")
	require.Equal(t, "updated", store.Get())
}

func TestStoreWatchReceivesUpdates(t *testing.T) {
	store := NewStore(0)
	ch, cancel := store.Watch()
	defer cancel()

	store.Set(1)

	select {
	case got := <-ch:
		require.Equal(t, 1, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestStoreWatchLatestWins(t *testing.T) {
	store := NewStore(0)
	ch, cancel := store.Watch()
	defer cancel()

	// No receiver between sets: the subscriber must observe the newest value,
	// not a stale intermediate.
	store.Set(1)
	store.Set(2)
	store.Set(3)

	select {
	case got := <-ch:
		require.Equal(t, 3, got)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for notification")
	}
}

func TestStoreCancelClosesChannel(t *testing.T) {
	store := NewStore(0)
	ch, cancel := store.Watch()
	cancel()

	_, ok := <-ch
	require.False(t, ok)

	// Set after cancel must not panic or notify.
	store.Set(5)

	// Cancel is idempotent.
	cancel()
}

func TestStoreConcurrentSetAndWatch(t *testing.T) {
	store := NewStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		ch, cancel := store.Watch()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer cancel()
			for range ch {
				if store.Get() == 99 {
					return
				}
			}
		}()
	}

	for i := 1; i < 100; i++ {
		store.Set(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	for {
		select {
		case <-done:
			return
		case <-time.After(10 * time.Millisecond):
			// Re-publish the terminal value for any subscriber that drained
			// its buffer before it arrived.
			store.Set(99)
		}
	}
}
