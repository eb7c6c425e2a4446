package scheduler

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
	panicString   = "parameters null"
	resultRetried = "retried"
)

// HeldLeadScheduler is the contract for the held lead retry service
type HeldLeadScheduler interface {
	// Start begins the scheduler service
	Start()
	// Stop halts the scheduler service
	Stop()
}

// SchedulerConfiguration represents the configuration for the scheduler
type SchedulerConfiguration struct {
	PoolLeadRepo storage.PoolLeadRepository
	AuditRepo    storage.AuditRepository
	LockRepo     storage.LockRepository
	Router       *dispatcher.LeadRouter
	Metrics      *dispatcher.MetricsContainer
	SchedulerCfg config.SchedulerConfig
}

func NewSchedulerConfiguration(poolLeadRepo storage.PoolLeadRepository, auditRepo storage.AuditRepository, lockRepo storage.LockRepository,
	router *dispatcher.LeadRouter, metrics *dispatcher.MetricsContainer, schedulerCfg config.SchedulerConfig) *SchedulerConfiguration {
	return &SchedulerConfiguration{
		PoolLeadRepo: poolLeadRepo,
		AuditRepo:    auditRepo,
		LockRepo:     lockRepo,
		Router:       router,
		Metrics:      metrics,
		SchedulerCfg: schedulerCfg,
	}
}

// HeldLeadSchedulerImpl is the implementation of the scheduler service
type HeldLeadSchedulerImpl struct {
	poolLeadRepo     storage.PoolLeadRepository
	auditRepo        storage.AuditRepository
	lockRepo         storage.LockRepository
	router           *dispatcher.LeadRouter
	routerMetrics    *dispatcher.MetricsContainer
	schedulerConfig  config.SchedulerConfig
	stopChan         chan struct{}
	stopOnce         sync.Once
	wg               sync.WaitGroup
	metricsCollector *MetricsContainer
}

// NewHeldLeadScheduler creates a new held lead scheduler service
func NewHeldLeadScheduler(configuration *SchedulerConfiguration) HeldLeadScheduler {
	if configuration.PoolLeadRepo == nil || configuration.AuditRepo == nil || configuration.LockRepo == nil ||
		configuration.Router == nil || configuration.Metrics == nil || configuration.SchedulerCfg == nil {
		panic(panicString)
	}

	scheduler := &HeldLeadSchedulerImpl{
		poolLeadRepo:     configuration.PoolLeadRepo,
		auditRepo:        configuration.AuditRepo,
		lockRepo:         configuration.LockRepo,
		router:           configuration.Router,
		routerMetrics:    configuration.Metrics,
		schedulerConfig:  configuration.SchedulerCfg,
		stopChan:         make(chan struct{}),
		metricsCollector: NewMetricsContainer(),
	}

	return scheduler
}

// Start begins the scheduler processing loop
func (scheduler *HeldLeadSchedulerImpl) Start() {
	scheduler.wg.Add(1)
	go func() {
		defer scheduler.wg.Done()
		ticker := time.NewTicker(scheduler.schedulerConfig.GetHeldRetryInterval())
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				scheduler.retryHeldLeads()
			case <-scheduler.stopChan:
				return
			}
		}
	}()
}

// Stop halts the scheduler processing loop
func (scheduler *HeldLeadSchedulerImpl) Stop() {
	scheduler.stopOnce.Do(func() { close(scheduler.stopChan) })
	scheduler.wg.Wait()
}

// retryHeldLeads runs the oldest held leads through distribution again, one goroutine per lead
func (scheduler *HeldLeadSchedulerImpl) retryHeldLeads() {
	heldLeads, err := scheduler.poolLeadRepo.GetOldest(data.PoolHeld, scheduler.schedulerConfig.GetHeldRetryBatchSize())
	if err != nil {
		log.Error().Err(err).Msg("could not read held leads")
		scheduler.metricsCollector.IncreaseRetryErrorCount()
		return
	}

	var wg sync.WaitGroup
	for _, heldLead := range heldLeads {
		wg.Add(1)
		go func(heldLead *data.PoolLead) {
			defer wg.Done()
			scheduler.retryHeldLead(heldLead)
		}(heldLead)
	}
	wg.Wait()
	if len(heldLeads) > 0 {
		scheduler.routerMetrics.ObserveHeldPool(scheduler.poolLeadRepo)
	}
}

// retryHeldLead claims the lead from the pool first and only then routes it, so a lead taken by a redistribution
// meanwhile is never assigned twice; when nobody is available the lead is put back unchanged
func (scheduler *HeldLeadSchedulerImpl) retryHeldLead(heldLead *data.PoolLead) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("leadId", heldLead.LeadID()).Msg("Recovered from panic in retryHeldLead")
			scheduler.metricsCollector.IncreaseRetryErrorCount()
		}
	}()
	if !scheduler.retryEnabled(heldLead) {
		return
	}

	err := storage.WithLock(scheduler.lockRepo, heldLead, func() error {
		removed, err := scheduler.poolLeadRepo.Remove(heldLead.LeadID())
		if err != nil {
			return err
		}
		if removed <= 0 {
			log.Debug().Str("leadId", heldLead.LeadID()).Msg("held lead left the pool before being retried")
			return nil
		}
		scheduler.metricsCollector.IncreaseRetriedLeadCount()
		result, err := scheduler.router.Route(heldLead.Lead, data.SystemActor)
		if err != nil || !result.Assigned() {
			if restoreErr := scheduler.poolLeadRepo.Add(heldLead); restoreErr != nil && restoreErr != storage.ErrDuplicatePoolLead {
				log.Error().Err(restoreErr).Str("leadId", heldLead.LeadID()).Msg("could not put held lead back in the pool")
				return restoreErr
			}
			return err
		}

		scheduler.metricsCollector.IncreaseRedistributedLeadCount()
		scheduler.metricsCollector.SetLatestHoldDuration(scheduler.router.Now().Sub(heldLead.CreatedAt))
		scheduler.routerMetrics.RedistributedLeadCount.WithLabelValues(resultRetried).Inc()

		entry, _ := data.NewAuditEntry(data.AuditRedistributed, data.SystemActor, scheduler.router.Now())
		entry.QueueID = result.QueueID
		entry.LeadID = result.LeadID
		entry.MemberID = result.MemberID
		entry.Details["previousReason"] = heldLead.Reason
		if err := scheduler.auditRepo.Create(entry); err != nil {
			log.Error().Err(err).Str("leadId", heldLead.LeadID()).Msg("could not write audit entry")
		}
		return nil
	})

	switch err {
	case nil:
	case storage.ErrAlreadyLocked:
		log.Debug().Str("leadId", heldLead.LeadID()).Msg("held lead locked by another instance")
	default:
		log.Error().Err(err).Str("leadId", heldLead.LeadID()).Msg("Error retrying held lead")
		scheduler.metricsCollector.IncreaseRetryErrorCount()
	}
}

// retryEnabled is false when the queue the lead was held in has redistribution switched off
func (scheduler *HeldLeadSchedulerImpl) retryEnabled(heldLead *data.PoolLead) bool {
	if len(heldLead.MatchedQueueID) <= 0 {
		return true
	}
	queue, err := scheduler.router.Coordinator().Queue(heldLead.MatchedQueueID)
	if err != nil {
		return true
	}
	return queue.AdvancedConfig.RedistributionActive
}
