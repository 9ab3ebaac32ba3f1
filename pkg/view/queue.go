package view

// Queue runs work scheduled during an event after the grid has been drawn.
// Jobs carry the generation they were scheduled for; jobs of an older
// generation are dropped when the queue is flushed.
type Queue struct {
	jobs []job
}

type job struct {
	generation uint64
	fn         func()
}

// Schedule queues fn for the given generation.
func (q *Queue) Schedule(generation uint64, fn func()) {
	q.jobs = append(q.jobs, job{generation: generation, fn: fn})
}

// Len returns the number of pending jobs.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Flush runs, in scheduling order, the jobs of the current generation and
// discards the others. Jobs scheduled while flushing run in the same pass.
// It returns the number of jobs run.
func (q *Queue) Flush(current uint64) int {
	ran := 0
	for len(q.jobs) > 0 {
		j := q.jobs[0]
		q.jobs = q.jobs[1:]
		if j.generation != current {
			continue
		}
		j.fn()
		ran++
	}
	return ran
}
