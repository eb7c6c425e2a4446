package dispatcher

import (
	"errors"

	"github.com/google/wire"
	"github.com/newscred/lead-router/routing"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
)

const (
	panicString = "parameters null"
)

var (
	// DispatcherInjector is the injector for the Dispatcher module
	DispatcherInjector = wire.NewSet(NewCoordinator, NewLeadRouter, NewLeadDispatcher, MetricsInjector,
		wire.Struct(new(Configuration), "Coordinator", "PoolLeadRepo", "AuditRepo", "RouterConfig", "Metrics"))
	// ErrDispatcherStopped is returned when a lead is dispatched after Stop
	ErrDispatcherStopped = errors.New("dispatcher stopped")
	// ErrInvalidLead is returned for a lead without id
	ErrInvalidLead = errors.New("lead must have an id")
)

// Result is what happened to one lead. Held follows the routing outcome (a queue matched but nobody was
// available); Pooled is set whenever the lead ended up in the held pool, for either reason.
type Result struct {
	LeadID        string `json:"leadId"`
	QueueID       string `json:"queueId,omitempty"`
	MemberID      string `json:"memberId,omitempty"`
	Held          bool   `json:"held"`
	Pooled        bool   `json:"pooled"`
	Reason        string `json:"reason,omitempty"`
	EscalatedFrom string `json:"escalatedFrom,omitempty"`
}

// Assigned returns true when a member took the lead
func (result Result) Assigned() bool {
	return len(result.MemberID) > 0
}

type jobResult struct {
	result Result
	err    error
}

// Job represents the job to be run
type Job struct {
	Lead     *data.Lead
	Actor    string
	Priority uint
	done     chan jobResult
}

// NewJob returns a new instance of Job whose result can be awaited
func NewJob(lead *data.Lead, actor string, priority uint) *Job {
	return &Job{Lead: lead, Actor: actor, Priority: priority, done: make(chan jobResult, 1)}
}

func (job *Job) complete(result Result, err error) {
	job.done <- jobResult{result: result, err: err}
}

// NewCoordinator loads every stored queue into a coordinator persisting rotation state back to the repository
func NewCoordinator(queueRepo storage.QueueRepository) (*routing.Coordinator, error) {
	if queueRepo == nil {
		panic(panicString)
	}
	queues, err := queueRepo.GetAll()
	if err != nil {
		return nil, err
	}
	return routing.NewCoordinator(queues, queueRepo), nil
}
