package queue

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// pollInterval is how often an empty Receive rechecks for work.
	pollInterval = 20 * time.Millisecond
	// redeliveryLimit caps how many times an unacknowledged message is
	// handed out before it is dropped.
	redeliveryLimit = 5
)

type pendingMessage struct {
	msg         Message
	attempts    int
	redeliverAt time.Time
}

// MemoryQueue is a Queue for tests and offline runs. Received messages stay
// in flight until Delete acknowledges them; unacknowledged messages come
// back after the visibility window, up to the redelivery limit.
type MemoryQueue struct {
	mu         sync.Mutex
	pending    []*pendingMessage
	inflight   map[string]*pendingMessage
	capacity   int
	visibility time.Duration
	seq        int64
}

// NewMemoryQueue creates a MemoryQueue. capacity bounds the backlog; Send
// fails once it is full.
func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = 128
	}
	return &MemoryQueue{
		pending:    make([]*pendingMessage, 0, capacity),
		inflight:   make(map[string]*pendingMessage),
		capacity:   capacity,
		visibility: 30 * time.Second,
	}
}

// Send enqueues a payload.
func (q *MemoryQueue) Send(ctx context.Context, body string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending)+len(q.inflight) >= q.capacity {
		return fmt.Errorf("queue: backlog full (%d messages)", q.capacity)
	}
	q.seq++
	id := fmt.Sprintf("mem-%d", q.seq)
	q.pending = append(q.pending, &pendingMessage{
		msg: Message{ID: id, Body: body, ReceiptHandle: id},
	})
	return nil
}

// Receive returns up to maxMessages pending messages, polling until
// something arrives, waitSeconds elapses, or ctx is done.
func (q *MemoryQueue) Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]Message, error) {
	if maxMessages <= 0 {
		maxMessages = 1
	}
	deadline := time.Now().Add(time.Duration(waitSeconds) * time.Second)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if msgs := q.take(maxMessages); len(msgs) > 0 {
			return msgs, nil
		}
		if !time.Now().Before(deadline) {
			return nil, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Delete acknowledges an in-flight message so it is never redelivered.
func (q *MemoryQueue) Delete(_ context.Context, receiptHandle string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.inflight, receiptHandle)
	return nil
}

func (q *MemoryQueue) take(max int) []Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	for handle, p := range q.inflight {
		if now.Before(p.redeliverAt) {
			continue
		}
		delete(q.inflight, handle)
		if p.attempts >= redeliveryLimit {
			continue
		}
		q.pending = append(q.pending, p)
	}

	n := max
	if n > len(q.pending) {
		n = len(q.pending)
	}
	out := make([]Message, 0, n)
	for i := 0; i < n; i++ {
		p := q.pending[i]
		p.attempts++
		p.redeliverAt = now.Add(q.visibility)
		q.inflight[p.msg.ReceiptHandle] = p
		out = append(out, p.msg)
	}
	q.pending = q.pending[n:]
	return out
}
