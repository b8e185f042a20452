package quill

import "sync"

// TaskQueue carries continuations from background goroutines back to the
// main loop. Post may be called from any goroutine; Drain runs on the main
// loop only.
type TaskQueue struct {
	mu    sync.Mutex
	tasks []func()
}

// Post schedules fn for the next Drain.
func (q *TaskQueue) Post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

// Drain runs every queued task in post order and returns how many ran.
// Tasks posted while draining run on the next call.
func (q *TaskQueue) Drain() int {
	q.mu.Lock()
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// Pending returns the number of queued tasks.
func (q *TaskQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}
