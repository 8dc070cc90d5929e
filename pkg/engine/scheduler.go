package engine

const MaxPriority = 64

// Scheduler is a single-threaded work list with priority buckets and
// dominance pruning. Lower priorities pop first and a bucket is FIFO. A task
// is never scheduled twice: pushing a task that is pending, was already
// popped, or is dominated by a pending task is a no-op, and pushing a task
// removes every pending task it dominates.
type Scheduler[T comparable] struct {
	queues    [MaxPriority][]T
	pending   map[T]struct{}
	seen      map[T]struct{}
	dominates func(a, b T) bool
}

// NewScheduler returns a scheduler. dominates(a, b) reports that b is made
// redundant by a; it may be nil.
func NewScheduler[T comparable](dominates func(a, b T) bool) *Scheduler[T] {
	return &Scheduler[T]{
		pending:   make(map[T]struct{}),
		seen:      make(map[T]struct{}),
		dominates: dominates,
	}
}

// Push schedules task and reports whether it was accepted.
func (s *Scheduler[T]) Push(task T, priority int) bool {
	if priority < 0 {
		priority = 0
	}
	if priority >= MaxPriority {
		priority = MaxPriority - 1
	}
	if _, ok := s.seen[task]; ok {
		return false
	}
	if s.dominates != nil {
		for p := range s.pending {
			if s.dominates(p, task) {
				return false
			}
		}
		for p := range s.pending {
			if s.dominates(task, p) {
				delete(s.pending, p)
			}
		}
	}
	s.seen[task] = struct{}{}
	s.pending[task] = struct{}{}
	s.queues[priority] = append(s.queues[priority], task)
	return true
}

// Pop returns the pending task with the lowest priority.
func (s *Scheduler[T]) Pop() (T, bool) {
	for i := 0; i < MaxPriority; i++ {
		for len(s.queues[i]) > 0 {
			task := s.queues[i][0]
			s.queues[i] = s.queues[i][1:]
			if _, ok := s.pending[task]; ok {
				delete(s.pending, task)
				return task, true
			}
		}
	}
	var zero T
	return zero, false
}

// Len is the number of pending tasks.
func (s *Scheduler[T]) Len() int {
	return len(s.pending)
}
