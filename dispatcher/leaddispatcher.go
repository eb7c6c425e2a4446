package dispatcher

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	defaultStopTimeout = 5 * time.Second
	stopPollInterval   = 10 * time.Millisecond
)

// LeadDispatcher is the contract for distributing arriving leads through the worker pool
type LeadDispatcher interface {
	// Dispatch queues the lead and waits for its result
	Dispatch(ctx context.Context, lead *data.Lead, actor string, priority uint) (Result, error)
	// Submit queues the lead without waiting for the result
	Submit(lead *data.Lead, actor string, priority uint) error
	// DistributeAll dispatches the leads concurrently; results keep the order of leads
	DistributeAll(ctx context.Context, leads []*data.Lead, actor string) ([]Result, error)
	Stop()
}

// LeadDispatcherImpl feeds leads from a priority queue to a fixed pool of workers
type LeadDispatcherImpl struct {
	router           *LeadRouter
	workerPool       chan chan *Job
	workers          []*Worker
	jobQueue         chan *Job
	jobPriorityQueue *PriorityQueue
	dispatcherStop   chan bool
	stopped          atomic.Bool
	stopTimeout      time.Duration
	maxWorkers       int
}

// Dispatch queues the lead and waits for its result or ctx
func (leadDispatcher *LeadDispatcherImpl) Dispatch(ctx context.Context, lead *data.Lead, actor string, priority uint) (Result, error) {
	job, err := leadDispatcher.submit(lead, actor, priority)
	if err != nil {
		return Result{}, err
	}
	select {
	case done := <-job.done:
		return done.result, done.err
	case <-ctx.Done():
		return Result{LeadID: lead.ID}, ctx.Err()
	}
}

// Submit queues the lead; its result is only logged
func (leadDispatcher *LeadDispatcherImpl) Submit(lead *data.Lead, actor string, priority uint) error {
	_, err := leadDispatcher.submit(lead, actor, priority)
	return err
}

// DistributeAll dispatches every lead with at most as many in flight as there are workers
func (leadDispatcher *LeadDispatcherImpl) DistributeAll(ctx context.Context, leads []*data.Lead, actor string) ([]Result, error) {
	results := make([]Result, len(leads))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(leadDispatcher.maxWorkers)
	for index, lead := range leads {
		index, lead := index, lead
		group.Go(func() error {
			result, err := leadDispatcher.Dispatch(groupCtx, lead, actor, 0)
			results[index] = result
			return err
		})
	}
	return results, group.Wait()
}

func (leadDispatcher *LeadDispatcherImpl) submit(lead *data.Lead, actor string, priority uint) (*Job, error) {
	if lead == nil || !lead.IsInValidState() {
		return nil, ErrInvalidLead
	}
	if leadDispatcher.stopped.Load() {
		return nil, ErrDispatcherStopped
	}
	job := NewJob(lead, actor, priority)
	leadDispatcher.jobQueue <- job
	return job, nil
}

func (leadDispatcher *LeadDispatcherImpl) startLeadDispatcher() {
	for {
		select {
		case job := <-leadDispatcher.jobQueue:
			leadDispatcher.dispatchJob(job)
		case <-leadDispatcher.dispatcherStop:
			return
		}
	}
}

var asyncDequeueToWorker = func(leadDispatcher *LeadDispatcherImpl) {
	// blocks until a worker is idle
	jobChannel := <-leadDispatcher.workerPool
	jobChannel <- leadDispatcher.jobPriorityQueue.Dequeue()
}

func (leadDispatcher *LeadDispatcherImpl) dispatchJob(job *Job) {
	leadDispatcher.jobPriorityQueue.Enqueue(job)
	go asyncDequeueToWorker(leadDispatcher)
}

// Stop stops accepting leads and waits for the workers to finish, at most for the stop timeout
func (leadDispatcher *LeadDispatcherImpl) Stop() {
	if !leadDispatcher.stopped.CompareAndSwap(false, true) {
		return
	}
	leadDispatcher.dispatcherStop <- true
	log.Info().Int("workers", len(leadDispatcher.workers)).Msg("stopping workers")
	for _, worker := range leadDispatcher.workers {
		worker.Stop()
	}
	deadline := time.Now().Add(leadDispatcher.stopTimeout)
	for leadDispatcher.anyWorking() {
		if time.Now().After(deadline) {
			log.Warn().Msg("dispatcher stop timed out")
			return
		}
		time.Sleep(stopPollInterval)
	}
}

func (leadDispatcher *LeadDispatcherImpl) anyWorking() bool {
	for _, worker := range leadDispatcher.workers {
		if worker.IsWorking() {
			return true
		}
	}
	return false
}

// NewLeadDispatcher starts the workers and returns the running dispatcher
func NewLeadDispatcher(router *LeadRouter, routerConfig config.RouterConfig) LeadDispatcher {
	if router == nil || routerConfig == nil {
		panic(panicString)
	}
	maxWorkers := int(routerConfig.GetMaxWorkers())
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	leadDispatcher := &LeadDispatcherImpl{router: router, workerPool: make(chan chan *Job, maxWorkers),
		jobQueue: make(chan *Job, routerConfig.GetMaxLeadQueueSize()), jobPriorityQueue: NewJobPriorityQueue(router.metrics.QueuedLeadCount),
		dispatcherStop: make(chan bool, 1), stopTimeout: defaultStopTimeout, maxWorkers: maxWorkers}
	workers := make([]*Worker, maxWorkers)
	for i := 0; i < len(workers); i++ {
		workers[i] = NewWorker(leadDispatcher.workerPool, router)
		workers[i].Start()
	}
	leadDispatcher.workers = workers
	go leadDispatcher.startLeadDispatcher()
	return leadDispatcher
}
