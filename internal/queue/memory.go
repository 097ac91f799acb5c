package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQueueFull is returned by MemoryQueue.Enqueue when the buffer is full.
var ErrQueueFull = errors.New("job queue is full")

// ErrQueueClosed is returned after Close.
var ErrQueueClosed = errors.New("job queue is closed")

// MemoryQueue is an in-process JobQueue backed by a buffered channel. It is used when
// no broker is configured. Nacked jobs without requeue are kept as dead letters.
type MemoryQueue struct {
	jobs chan *Job
	done chan struct{}

	mu        sync.Mutex
	closed    bool
	nextTag   uint64
	pending   map[uint64]*Job
	dead      []deadLetter
	nextTimer uint64
	timers    map[uint64]*time.Timer
}

type deadLetter struct {
	job *Job
	at  time.Time
}

// NewMemoryQueue creates a queue holding up to size pending jobs.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 100
	}
	return &MemoryQueue{
		jobs:    make(chan *Job, size),
		done:    make(chan struct{}),
		pending: make(map[uint64]*Job),
		timers:  make(map[uint64]*time.Timer),
	}
}

// Enqueue adds a job without blocking. Jobs with a future NotBefore are held until due.
func (q *MemoryQueue) Enqueue(_ context.Context, job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	if job.NotBefore != nil {
		if delay := time.Until(*job.NotBefore); delay > 0 {
			q.nextTimer++
			id := q.nextTimer
			q.timers[id] = time.AfterFunc(delay, func() {
				q.mu.Lock()
				defer q.mu.Unlock()
				delete(q.timers, id)
				if !q.closed {
					q.pushLocked(job)
				}
			})
			return nil
		}
	}

	if !q.pushLocked(job) {
		return ErrQueueFull
	}
	return nil
}

func (q *MemoryQueue) pushLocked(job *Job) bool {
	select {
	case q.jobs <- job:
		return true
	default:
		return false
	}
}

// Dequeue returns the next ready job, or nil when none is waiting.
func (q *MemoryQueue) Dequeue(_ context.Context) (*Message, error) {
	for {
		select {
		case job := <-q.jobs:
			if msg := q.deliver(job); msg != nil {
				return msg, nil
			}
		default:
			return nil, nil
		}
	}
}

// Consume delivers jobs until ctx is cancelled or the queue is closed.
func (q *MemoryQueue) Consume(ctx context.Context, prefetchCount int) (<-chan *Message, <-chan error, error) {
	q.mu.Lock()
	closed := q.closed
	q.mu.Unlock()
	if closed {
		return nil, nil, ErrQueueClosed
	}
	if prefetchCount <= 0 {
		prefetchCount = 1
	}

	msgChan := make(chan *Message, prefetchCount)
	errChan := make(chan error, 1)

	go func() {
		defer close(msgChan)
		defer close(errChan)
		for {
			select {
			case <-ctx.Done():
				return
			case <-q.done:
				return
			case job := <-q.jobs:
				msg := q.deliver(job)
				if msg == nil {
					continue
				}
				select {
				case msgChan <- msg:
				case <-ctx.Done():
					_ = msg.Nack(true)
					return
				case <-q.done:
					return
				}
			}
		}
	}()

	return msgChan, errChan, nil
}

// deliver wraps a job in a message, dropping expired jobs and deferring early ones.
func (q *MemoryQueue) deliver(job *Job) *Message {
	if job.IsExpired() {
		q.mu.Lock()
		q.dead = append(q.dead, deadLetter{job: job, at: time.Now()})
		q.mu.Unlock()
		return nil
	}
	if !job.ShouldProcess() {
		_ = q.Enqueue(context.Background(), job)
		return nil
	}

	q.mu.Lock()
	q.nextTag++
	tag := q.nextTag
	q.pending[tag] = job
	q.mu.Unlock()

	return &Message{Job: job, DeliveryTag: tag, Channel: memoryAcker{q: q}}
}

// PurgeOlderThan drops dead letters recorded before now-retention.
func (q *MemoryQueue) PurgeOlderThan(_ context.Context, retention time.Duration) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	kept := q.dead[:0]
	purged := 0
	for _, d := range q.dead {
		if d.at.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, d)
	}
	q.dead = kept
	return purged, nil
}

// DeadLetters returns the number of jobs currently dead-lettered.
func (q *MemoryQueue) DeadLetters() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.dead)
}

// HealthCheck fails once the queue is closed.
func (q *MemoryQueue) HealthCheck(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	return nil
}

// Close stops consumers and cancels delayed jobs.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	for _, t := range q.timers {
		t.Stop()
	}
	close(q.done)
	return nil
}

type memoryAcker struct {
	q *MemoryQueue
}

func (a memoryAcker) Ack(tag uint64, _ bool) error {
	q := a.q
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, tag)
	return nil
}

func (a memoryAcker) Nack(tag uint64, _ bool, requeue bool) error {
	q := a.q
	q.mu.Lock()
	defer q.mu.Unlock()

	job, ok := q.pending[tag]
	if !ok {
		return nil
	}
	delete(q.pending, tag)

	if requeue && !q.closed && q.pushLocked(job) {
		return nil
	}
	q.dead = append(q.dead, deadLetter{job: job, at: time.Now()})
	return nil
}

var (
	_ JobQueue  = (*MemoryQueue)(nil)
	_ JobQueue  = (*RabbitMQQueue)(nil)
	_ DLQPurger = (*MemoryQueue)(nil)
	_ DLQPurger = (*RabbitMQQueue)(nil)
)
