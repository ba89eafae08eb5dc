package net

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPacketQueueFIFO(t *testing.T) {
	q := NewPacketQueue[int]("test", 64)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []int
	done := make(chan struct{})
	go func() {
		q.Start(ctx, func(v int) {
			mu.Lock()
			got = append(got, v)
			if len(got) == 10 {
				close(done)
			}
			mu.Unlock()
		})
	}()

	for i := 0; i < 10; i++ {
		require.NoError(t, q.Enqueue(i))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain the queue")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestPacketQueueConcurrentProducers(t *testing.T) {
	const producers = 8
	const perProducer = 50

	q := NewPacketQueue[int]("test", producers*perProducer)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var count sync.WaitGroup
	count.Add(producers * perProducer)
	go q.Start(ctx, func(int) { count.Done() })

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				require.NoError(t, q.Enqueue(i))
			}
		}()
	}
	wg.Wait()

	finished := make(chan struct{})
	go func() { count.Wait(); close(finished) }()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("not all items were processed")
	}
}

func TestPacketQueuePanicRecovery(t *testing.T) {
	q := NewPacketQueue[int]("test", 8)
	defer q.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go q.Start(ctx, func(v int) {
		if v == 0 {
			panic("boom")
		}
		close(done)
	})

	require.NoError(t, q.Enqueue(0))
	require.NoError(t, q.Enqueue(1))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer died after a panicking item")
	}
}

func TestPacketQueueFullAndClosed(t *testing.T) {
	q := NewPacketQueue[int]("test", 2)
	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	require.Error(t, q.Enqueue(3))

	q.Close()
	require.Error(t, q.Enqueue(4))
}
