package redistribution

import (
	"sync"
	"time"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/dispatcher"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/zerolog/log"
)

const (
	resultAssigned = "assigned"
	resultReheld   = "reheld"
	// jobs inflight for this many runner intervals are considered abandoned by a crashed runner
	staleInflightIntervals = 10
)

// JobRunner is the contract for the service completing queued redistribution jobs
type JobRunner interface {
	Start()
	Stop()
}

// JobRunnerImpl periodically distributes the leads of queued jobs
type JobRunnerImpl struct {
	poolLeadRepo storage.PoolLeadRepository
	jobRepo      storage.RedistributionJobRepository
	lockRepo     storage.LockRepository
	router       *dispatcher.LeadRouter
	redistConfig config.RedistributionConfig
	metrics      *dispatcher.MetricsContainer
	stopChan     chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewJobRunner creates the job runner; it does nothing until started
func NewJobRunner(configuration *Configuration) JobRunner {
	if configuration.isIncomplete() {
		panic(panicString)
	}
	return &JobRunnerImpl{poolLeadRepo: configuration.PoolLeadRepo, jobRepo: configuration.JobRepo, lockRepo: configuration.LockRepo,
		router: configuration.Router, redistConfig: configuration.RedistributionConfig, metrics: configuration.Metrics, stopChan: make(chan struct{})}
}

// Start begins the runner loop
func (runner *JobRunnerImpl) Start() {
	runner.wg.Add(1)
	go func() {
		defer runner.wg.Done()
		ticker := time.NewTicker(runner.redistConfig.GetJobRunnerInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				runner.processJobs()
			case <-runner.stopChan:
				return
			}
		}
	}()
}

// Stop halts the runner loop and waits for the current run to finish
func (runner *JobRunnerImpl) Stop() {
	runner.stopOnce.Do(func() { close(runner.stopChan) })
	runner.wg.Wait()
}

func (runner *JobRunnerImpl) processJobs() {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic in redistribution job runner")
		}
	}()
	threshold := time.Now().Add(-staleInflightIntervals * runner.redistConfig.GetJobRunnerInterval())
	if requeued, err := runner.jobRepo.RequeueStaleInflightJobs(threshold); err != nil {
		log.Error().Err(err).Msg("could not requeue stale inflight jobs")
	} else if requeued > 0 {
		log.Warn().Int64("requeued", requeued).Msg("requeued stale inflight redistribution jobs")
	}
	jobs, err := runner.jobRepo.GetJobsByStatus(data.JobQueued, int(runner.redistConfig.GetJobBatchSize()))
	if err != nil {
		log.Error().Err(err).Msg("could not read queued redistribution jobs")
		return
	}
	for _, job := range jobs {
		err = storage.WithLock(runner.lockRepo, job, func() error {
			return runner.runJob(job)
		})
		switch err {
		case nil:
		case storage.ErrAlreadyLocked:
			log.Debug().Str("jobId", job.ID.String()).Msg("job locked by another runner")
		default:
			log.Error().Err(err).Str("jobId", job.ID.String()).Msg("could not run redistribution job")
		}
	}
	runner.metrics.ObserveHeldPool(runner.poolLeadRepo)
}

// runJob distributes every lead of the job; leads nobody takes go back to the held pool. Each assignment is recorded
// on the job before the next lead is routed, so a job requeued after a failed completion skips the leads already taken.
func (runner *JobRunnerImpl) runJob(job *data.RedistributionJob) error {
	if err := runner.jobRepo.MarkJobInflight(job); err != nil {
		if err == storage.ErrNoRowsUpdated {
			return nil
		}
		return err
	}
	reheld := make([]*data.PoolLead, 0)
	job.AssignedCount, job.ReheldCount = len(job.AssignedLeadIDs), 0
	for index, poolLead := range job.Leads {
		if job.AssignedLeadIDs.Has(poolLead.LeadID()) {
			continue
		}
		result, err := runner.distribute(job, index, poolLead)
		if err == nil && result.Assigned() {
			runner.metrics.RedistributedLeadCount.WithLabelValues(resultAssigned).Inc()
			if err = runner.jobRepo.MarkLeadAssigned(job, poolLead.LeadID()); err != nil {
				log.Error().Err(err).Str("jobId", job.ID.String()).Str("leadId", poolLead.LeadID()).Msg("could not record assignment")
				return err
			}
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("jobId", job.ID.String()).Str("leadId", poolLead.LeadID()).Msg("could not redistribute lead")
		}
		reheld = append(reheld, rehold(poolLead, result))
		job.ReheldCount++
		runner.metrics.RedistributedLeadCount.WithLabelValues(resultReheld).Inc()
	}
	entry, _ := data.NewAuditEntry(data.AuditRedistributed, job.RequestedBy, runner.router.Now())
	entry.Details["jobId"] = job.ID.String()
	entry.Details["status"] = data.JobCompletedStr
	entry.Details["assigned"] = job.AssignedCount
	entry.Details["reheld"] = job.ReheldCount
	return runner.jobRepo.MarkJobCompleted(job, reheld, []*data.AuditEntry{entry})
}

func (runner *JobRunnerImpl) distribute(job *data.RedistributionJob, index int, poolLead *data.PoolLead) (dispatcher.Result, error) {
	if job.Destination.Kind == data.DestinationQueue {
		queueID := job.Destination.QueueIDs[index%len(job.Destination.QueueIDs)]
		return runner.router.RouteTo(poolLead.Lead, queueID, job.RequestedBy)
	}
	return runner.router.Route(poolLead.Lead, job.RequestedBy)
}

func rehold(poolLead *data.PoolLead, result dispatcher.Result) *data.PoolLead {
	reason := result.Reason
	if len(reason) <= 0 {
		reason = data.ReasonNoAvailableMember
	}
	held := &data.PoolLead{Lead: poolLead.Lead, Pool: data.PoolHeld, Reason: reason, MatchedQueueID: result.QueueID,
		PreviousQueueID: poolLead.PreviousQueueID, Owner: poolLead.Owner, Tags: poolLead.Tags, BatchID: poolLead.BatchID}
	if len(result.QueueID) > 0 {
		held.PreviousQueueID = result.QueueID
	}
	held.QuickFix()
	return held
}
