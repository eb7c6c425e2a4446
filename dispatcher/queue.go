package dispatcher

import (
	"container/list"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PriorityQueue holds jobs waiting for a worker; higher priority first, FIFO within a priority
type PriorityQueue struct {
	jobs  *list.List
	mu    sync.Mutex
	gauge prometheus.Gauge
}

// Len returns the length of the priority queue
func (pq *PriorityQueue) Len() int {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	return pq.jobs.Len()
}

// Enqueue queues the item in its correct position
func (pq *PriorityQueue) Enqueue(job *Job) {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	var marker *list.Element
	for e := pq.jobs.Back(); e != nil; e = e.Prev() {
		if job.Priority <= e.Value.(*Job).Priority {
			marker = e
			break
		}
	}
	if marker == nil {
		pq.jobs.PushFront(job)
	} else {
		pq.jobs.InsertAfter(job, marker)
	}
	if pq.gauge != nil {
		pq.gauge.Inc()
	}
}

// Dequeue pops the item next in order; nil when empty
func (pq *PriorityQueue) Dequeue() *Job {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	frontElement := pq.jobs.Front()
	if frontElement == nil {
		return nil
	}
	if pq.gauge != nil {
		pq.gauge.Dec()
	}
	return pq.jobs.Remove(frontElement).(*Job)
}

// NewJobPriorityQueue initializes a priority queue for Jobs; gauge tracks its length and may be nil
func NewJobPriorityQueue(gauge prometheus.Gauge) *PriorityQueue {
	return &PriorityQueue{jobs: list.New(), gauge: gauge}
}
