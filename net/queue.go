package net

import (
	"context"
	"fmt"
	"sync"

	"github.com/lcx/garuda/log"
	"github.com/lcx/garuda/metrics"
)

// PacketQueue is a bounded FIFO with exactly one consumer goroutine.
// Producers enqueue from any goroutine; items are processed strictly in
// arrival order. A panicking item is logged and skipped, the consumer
// keeps running.
type PacketQueue[T any] struct {
	name      string
	ch        chan T
	closeOnce sync.Once
	done      chan struct{}
}

// NewPacketQueue returns a queue holding at most capacity items.
func NewPacketQueue[T any](name string, capacity int) *PacketQueue[T] {
	if capacity <= 0 {
		capacity = 256
	}
	return &PacketQueue[T]{
		name: name,
		ch:   make(chan T, capacity),
		done: make(chan struct{}),
	}
}

// Enqueue adds one item without blocking. A full queue is an error; the
// caller decides whether that kills the connection.
func (q *PacketQueue[T]) Enqueue(item T) error {
	select {
	case <-q.done:
		return fmt.Errorf("net: queue %s closed", q.name)
	default:
	}
	select {
	case q.ch <- item:
		return nil
	default:
		metrics.IncrCounterWithGroup("net", "queue_full", 1)
		return fmt.Errorf("net: queue %s full (%d items)", q.name, cap(q.ch))
	}
}

// Start runs the consumer loop until ctx is cancelled or the queue is
// closed and drained. It blocks; run it on its own goroutine.
func (q *PacketQueue[T]) Start(ctx context.Context, process func(T)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-q.done:
			// Drain what producers managed to enqueue before close.
			for {
				select {
				case item := <-q.ch:
					q.safeProcess(process, item)
				default:
					return
				}
			}
		case item := <-q.ch:
			q.safeProcess(process, item)
		}
	}
}

func (q *PacketQueue[T]) safeProcess(process func(T), item T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("queue", q.name).Interface("panic", r).Msg("packet handler panicked")
			metrics.IncrCounterWithGroup("net", "queue_panic", 1)
		}
	}()
	process(item)
}

// Close stops accepting new items. The consumer drains what is buffered
// and exits. Safe to call more than once.
func (q *PacketQueue[T]) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Len reports the number of buffered items.
func (q *PacketQueue[T]) Len() int {
	return len(q.ch)
}
