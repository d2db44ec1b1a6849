package buckindex

// Queue is a minimal single-writer task queue fronting an [Index].
//
// The source sketches two concurrency wrappers (bli_async.h,
// bli_concurrent.h: a background-writer queue and a multi-thread
// batching variant) that spec §9 explicitly says not to port - they do
// not compile as shipped and share state with undefined semantics.
// Queue is NOT a port of either: it is the "queue-based wrapper on top"
// spec §5 allows for, built from scratch as a plain serialized-write
// channel. It carries none of the source's half-finished promise/future
// plumbing and is not covered by the invariants in spec §8 - it exists
// purely so a multi-goroutine caller has a safe way to serialize writes
// against a single [Index] without hand-rolling its own mutex.
type Queue struct {
	idx  *Index
	jobs chan func()
	done chan struct{}
}

// NewQueue starts a background goroutine that applies every enqueued
// write to idx in submission order.
func NewQueue(idx *Index) *Queue {
	q := &Queue{idx: idx, jobs: make(chan func()), done: make(chan struct{})}

	go q.run()

	return q
}

func (q *Queue) run() {
	for job := range q.jobs {
		job()
	}

	close(q.done)
}

// Insert enqueues k/v for insertion and blocks until it has been applied,
// returning the same bool [Index.Insert] would.
func (q *Queue) Insert(k, v uint64) bool {
	result := make(chan bool, 1)

	q.jobs <- func() {
		result <- q.idx.Insert(k, v)
	}

	return <-result
}

// TryInsert behaves like Insert but returns [ErrBusy] immediately instead
// of blocking when the queue's single in-flight job slot is occupied.
func (q *Queue) TryInsert(k, v uint64) (bool, error) {
	result := make(chan bool, 1)

	select {
	case q.jobs <- func() { result <- q.idx.Insert(k, v) }:
	default:
		return false, ErrBusy
	}

	return <-result, nil
}

// Close stops accepting new writes and waits for the queue to drain.
func (q *Queue) Close() {
	close(q.jobs)
	<-q.done
}
