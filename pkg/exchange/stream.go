package exchange

import (
	"context"
	"sync"

	"github.com/mikrotik-api/mikrotik-go/pkg/wire"
)

// queue is the unbounded delivery buffer of one streaming exchange.
// Pushes never block, so a stalled consumer cannot stall dispatch for
// the other exchanges multiplexed on the connection. It supports a
// single consumer.
type queue struct {
	mu        sync.Mutex
	items     []wire.Sentence
	endErr    error
	abandoned bool

	notify chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

// push appends one sentence for the consumer. It reports false when the
// consumer side has been abandoned and the sentence was dropped.
func (q *queue) push(s wire.Sentence) bool {
	q.mu.Lock()
	if q.abandoned || q.endErr != nil {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, s)
	q.mu.Unlock()
	q.wake()
	return true
}

// end records the terminal condition of the stream. The first call
// wins. Sentences buffered before the end remain consumable; err is
// surfaced once the queue is drained.
func (q *queue) end(err error) {
	q.mu.Lock()
	if q.endErr == nil {
		q.endErr = err
	}
	q.mu.Unlock()
	q.wake()
}

// abandon marks the consumer side gone and releases buffered sentences.
func (q *queue) abandon() {
	q.mu.Lock()
	q.abandoned = true
	q.items = nil
	q.mu.Unlock()
	q.wake()
}

func (q *queue) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// pop removes and returns the oldest buffered sentence. It blocks until
// a sentence is available, the stream ends, or ctx is done.
func (q *queue) pop(ctx context.Context) (wire.Sentence, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			s := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return s, nil
		}
		if q.abandoned {
			q.mu.Unlock()
			return wire.Sentence{}, ErrEndOfStream
		}
		if q.endErr != nil {
			err := q.endErr
			q.mu.Unlock()
			return wire.Sentence{}, err
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return wire.Sentence{}, ctx.Err()
		case <-q.notify:
		}
	}
}
