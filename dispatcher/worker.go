package dispatcher

import (
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Worker represents the worker that executes the job
type Worker struct {
	workerPool chan chan *Job
	jobChannel chan *Job
	quit       chan bool
	working    atomic.Bool
	router     *LeadRouter
}

// NewWorker creates a Worker
func NewWorker(workerPool chan chan *Job, router *LeadRouter) *Worker {
	return &Worker{
		workerPool: workerPool,
		jobChannel: make(chan *Job, 1),
		quit:       make(chan bool, 1),
		router:     router}
}

var processJob = func(w *Worker, job *Job) {
	log.Debug().Str("leadId", job.Lead.ID).Msg("processing lead in worker")
	result, err := w.executeJob(job)
	if err != nil {
		log.Error().Err(err).Str("leadId", job.Lead.ID).Msg("could not dispatch lead")
	}
	job.complete(result, err)
}

// Start method starts the run loop for the worker, listening for a quit channel in
// case we need to stop it
func (w *Worker) Start() {
	w.working.Store(true)
	go func() {
		for {
			// register the current worker into the worker queue.
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				processJob(w, job)
			case <-w.quit:
				w.working.Store(false)
				return
			}
		}
	}()
}

func (w *Worker) executeJob(job *Job) (result Result, err error) {
	// a panicking lead must not take the worker down
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic dispatching lead %s: %v", job.Lead.ID, r)
		}
	}()
	return w.router.Dispatch(job.Lead, job.Actor)
}

// IsWorking retrieves whether the work is active
func (w *Worker) IsWorking() bool {
	return w.working.Load()
}

// Stop signals the worker to stop listening for work requests.
func (w *Worker) Stop() {
	go func() {
		w.quit <- true
	}()
}
