package redistribution

import (
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/dispatcher"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	heldDestinationKey  = "held"
	maxDispatchAttempts = 3
)

// Worker is the contract for bulk redistribution of pooled leads
type Worker interface {
	// Preview reports what Execute would do without changing anything
	Preview(selection *Selection, destination data.Destination) (*Preview, error)
	// Execute takes the selected leads out of the pools into a queued job
	Execute(selection *Selection, destination data.Destination, requestedBy string, filtersUsed map[string]string) (*Execution, error)
	// ImportBatch materializes leads at the front of the archive
	ImportBatch(payload *ImportPayload) (*ImportResult, error)
	GetJob(jobID string) (*data.RedistributionJob, error)
}

// Preview is the read only estimate of a redistribution
type Preview struct {
	TotalSelected             int            `json:"totalSelected"`
	DistributionByDestination map[string]int `json:"distributionByDestination"`
	EstimatedDurationMinutes  int            `json:"estimatedDurationMinutes"`
	EstimatedCompletionAt     time.Time      `json:"estimatedCompletionAt"`
	ReasonBreakdown           map[string]int `json:"reasonBreakdown"`
}

// Execution is the result of Execute; Job and AuditEntry are nil when nothing was selected
type Execution struct {
	Job           *data.RedistributionJob `json:"job,omitempty"`
	AuditEntry    *data.AuditEntry        `json:"auditEntry,omitempty"`
	AffectedLeads int                     `json:"affectedLeads"`
}

// Configuration represents the collaborators of the redistribution worker and job runner
type Configuration struct {
	PoolLeadRepo         storage.PoolLeadRepository
	JobRepo              storage.RedistributionJobRepository
	LockRepo             storage.LockRepository
	Router               *dispatcher.LeadRouter
	RedistributionConfig config.RedistributionConfig
	Metrics              *dispatcher.MetricsContainer
}

func (configuration *Configuration) isIncomplete() bool {
	return configuration == nil || configuration.PoolLeadRepo == nil || configuration.JobRepo == nil || configuration.LockRepo == nil ||
		configuration.Router == nil || configuration.RedistributionConfig == nil || configuration.Metrics == nil
}

// WorkerImpl implements Worker over the pool and job repositories
type WorkerImpl struct {
	poolLeadRepo storage.PoolLeadRepository
	jobRepo      storage.RedistributionJobRepository
	router       *dispatcher.LeadRouter
	redistConfig config.RedistributionConfig
	metrics      *dispatcher.MetricsContainer
}

// NewWorker creates the redistribution worker
func NewWorker(configuration *Configuration) Worker {
	if configuration.isIncomplete() {
		panic(panicString)
	}
	return &WorkerImpl{poolLeadRepo: configuration.PoolLeadRepo, jobRepo: configuration.JobRepo, router: configuration.Router,
		redistConfig: configuration.RedistributionConfig, metrics: configuration.Metrics}
}

// Preview resolves the selection and estimates where the leads go and how long it takes
func (worker *WorkerImpl) Preview(selection *Selection, destination data.Destination) (*Preview, error) {
	if err := worker.validateDestination(destination); err != nil {
		return nil, err
	}
	selected, err := ResolveSelection(worker.poolLeadRepo, selection)
	if err != nil {
		return nil, err
	}
	preview := &Preview{TotalSelected: len(selected), ReasonBreakdown: make(map[string]int)}
	for _, poolLead := range selected {
		preview.ReasonBreakdown[poolLead.Reason]++
	}
	if destination.Kind == data.DestinationQueue {
		preview.DistributionByDestination = spreadAcrossQueues(len(selected), destination.QueueIDs)
	} else {
		preview.DistributionByDestination = worker.predictRoulette(selected)
	}
	preview.EstimatedDurationMinutes = estimateMinutes(len(selected), worker.redistConfig.GetThroughputPerMinute())
	preview.EstimatedCompletionAt = worker.router.Now().Add(time.Duration(preview.EstimatedDurationMinutes) * time.Minute)
	return preview, nil
}

// Execute moves the selection into a queued job. The pool mutation is all or nothing; when a concurrent
// change consumed some selected lead the selection is resolved again.
func (worker *WorkerImpl) Execute(selection *Selection, destination data.Destination, requestedBy string, filtersUsed map[string]string) (*Execution, error) {
	if err := worker.validateDestination(destination); err != nil {
		return nil, err
	}
	if filtersUsed == nil && selection != nil && selection.Filter != nil {
		filtersUsed = selection.Filter.AsMap()
	}
	for attempt := 1; ; attempt++ {
		selected, err := ResolveSelection(worker.poolLeadRepo, selection)
		if err != nil {
			return nil, err
		}
		if len(selected) <= 0 {
			return &Execution{}, nil
		}
		job, err := data.NewRedistributionJob(selected, destination, requestedBy, filtersUsed)
		if err != nil {
			return nil, err
		}
		entry, _ := data.NewAuditEntry(data.AuditRedistributed, job.RequestedBy, worker.router.Now())
		entry.Details["jobId"] = job.ID.String()
		entry.Details["totalLeads"] = job.TotalLeads
		entry.Details["destination"] = destination.String()
		err = worker.jobRepo.Dispatch(job, entry)
		if err == storage.ErrPoolLeadConsumed && attempt < maxDispatchAttempts {
			log.Warn().Int("attempt", attempt).Msg("selection changed while executing, resolving again")
			continue
		}
		if err != nil {
			return nil, err
		}
		worker.metrics.ObserveHeldPool(worker.poolLeadRepo)
		log.Info().Str("jobId", job.ID.String()).Int("totalLeads", job.TotalLeads).Str("destination", destination.String()).Msg("redistribution job queued")
		return &Execution{Job: job, AuditEntry: entry, AffectedLeads: job.TotalLeads}, nil
	}
}

// GetJob retrieves a redistribution job
func (worker *WorkerImpl) GetJob(jobID string) (*data.RedistributionJob, error) {
	return worker.jobRepo.Get(jobID)
}

func (worker *WorkerImpl) validateDestination(destination data.Destination) error {
	if err := destination.Validate(); err != nil {
		return err
	}
	for _, queueID := range destination.QueueIDs {
		if _, err := worker.router.Coordinator().Queue(queueID); err != nil {
			return data.ErrInvalidDestination
		}
	}
	return nil
}

// predictRoulette runs queue matching for every lead in parallel; matching is read only
func (worker *WorkerImpl) predictRoulette(selected []*data.PoolLead) map[string]int {
	distribution := make(map[string]int)
	var mutex sync.Mutex
	group := &errgroup.Group{}
	group.SetLimit(runtime.NumCPU())
	for _, poolLead := range selected {
		poolLead := poolLead
		group.Go(func() error {
			key := heldDestinationKey
			if queue := worker.router.Coordinator().Predict(poolLead.Lead); queue != nil {
				key = queue.QueueID
			}
			mutex.Lock()
			distribution[key]++
			mutex.Unlock()
			return nil
		})
	}
	_ = group.Wait()
	return distribution
}

// spreadAcrossQueues mirrors the job runner's round robin over the destination queues
func spreadAcrossQueues(total int, queueIDs []string) map[string]int {
	distribution := make(map[string]int, len(queueIDs))
	for index := 0; index < total; index++ {
		distribution[queueIDs[index%len(queueIDs)]]++
	}
	return distribution
}

func estimateMinutes(total int, throughputPerMinute uint) int {
	if total <= 0 {
		return 0
	}
	if throughputPerMinute == 0 {
		throughputPerMinute = 1
	}
	return int(math.Ceil(float64(total) / float64(throughputPerMinute)))
}
