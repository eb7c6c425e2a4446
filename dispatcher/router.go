package dispatcher

import (
	"errors"
	"time"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/routing"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/zerolog/log"
)

const (
	detailReason        = "reason"
	detailEscalatedFrom = "escalatedFrom"
	detailMemberIDs     = "memberIds"
)

var currentTime = time.Now

// Configuration represents the collaborators of the lead router
type Configuration struct {
	Coordinator  *routing.Coordinator
	PoolLeadRepo storage.PoolLeadRepository
	AuditRepo    storage.AuditRepository
	RouterConfig config.RouterConfig
	Metrics      *MetricsContainer
}

// LeadRouter applies distribution outcomes: escalation, held pool insertion, audit and metrics. The
// rotation itself stays with the coordinator.
type LeadRouter struct {
	coordinator  *routing.Coordinator
	poolLeadRepo storage.PoolLeadRepository
	auditRepo    storage.AuditRepository
	routerConfig config.RouterConfig
	metrics      *MetricsContainer
}

// NewLeadRouter creates the router; every collaborator is mandatory
func NewLeadRouter(configuration *Configuration) *LeadRouter {
	if configuration == nil || configuration.Coordinator == nil || configuration.PoolLeadRepo == nil || configuration.AuditRepo == nil {
		panic(panicString)
	}
	if configuration.RouterConfig == nil || configuration.Metrics == nil {
		panic(panicString)
	}
	return &LeadRouter{coordinator: configuration.Coordinator, poolLeadRepo: configuration.PoolLeadRepo, auditRepo: configuration.AuditRepo,
		routerConfig: configuration.RouterConfig, metrics: configuration.Metrics}
}

// Coordinator exposes the coordinator for read access
func (router *LeadRouter) Coordinator() *routing.Coordinator {
	return router.coordinator
}

// Now is the wall clock in the configured timezone
func (router *LeadRouter) Now() time.Time {
	location := router.routerConfig.GetTimezone()
	if location == nil {
		location = time.UTC
	}
	return currentTime().In(location)
}

// Dispatch distributes a newly arrived lead; when nobody takes it the lead goes to the held pool
func (router *LeadRouter) Dispatch(lead *data.Lead, actor string) (Result, error) {
	if lead == nil || !lead.IsInValidState() {
		return Result{}, ErrInvalidLead
	}
	now := router.Now()
	outcome, escalatedFrom, err := router.route(lead, now)
	if err != nil {
		return Result{LeadID: lead.ID}, err
	}
	result := newResult(lead, outcome, escalatedFrom)
	if result.Assigned() {
		router.recordAssignment(result, actor, now)
		return result, nil
	}
	matchedQueueID := ""
	if outcome.Queue != nil {
		matchedQueueID = outcome.Queue.QueueID
	}
	held, err := data.NewHeldLead(lead, outcome.Reason, matchedQueueID)
	if err == nil {
		err = router.poolLeadRepo.Add(held)
	}
	if err == storage.ErrDuplicatePoolLead {
		log.Warn().Str("leadId", lead.ID).Msg("lead already pooled")
		err = nil
	}
	if err != nil {
		log.Error().Err(err).Str("leadId", lead.ID).Msg("could not hold lead")
		return result, err
	}
	result.Pooled = true
	router.metrics.HeldLeadCount.WithLabelValues(outcome.Reason).Inc()
	router.metrics.ObserveHeldPool(router.poolLeadRepo)
	entry := router.newAuditEntry(data.AuditHeld, actor, now, matchedQueueID, lead.ID, "")
	entry.Details[detailReason] = outcome.Reason
	router.audit(entry)
	return result, nil
}

// Route distributes a lead without holding it on failure; used for leads that already live in a pool
func (router *LeadRouter) Route(lead *data.Lead, actor string) (Result, error) {
	if lead == nil || !lead.IsInValidState() {
		return Result{}, ErrInvalidLead
	}
	now := router.Now()
	outcome, escalatedFrom, err := router.route(lead, now)
	if err != nil {
		return Result{LeadID: lead.ID}, err
	}
	result := newResult(lead, outcome, escalatedFrom)
	if result.Assigned() {
		router.recordAssignment(result, actor, now)
	}
	return result, nil
}

// RouteTo assigns a lead within the queue ignoring its rules
func (router *LeadRouter) RouteTo(lead *data.Lead, queueID string, actor string) (Result, error) {
	if lead == nil || !lead.IsInValidState() {
		return Result{}, ErrInvalidLead
	}
	now := router.Now()
	outcome, err := router.coordinator.DistributeTo(queueID, now)
	if err != nil {
		return Result{LeadID: lead.ID}, err
	}
	result := newResult(lead, outcome, "")
	if result.Assigned() {
		router.recordAssignment(result, actor, now)
	}
	return result, nil
}

// SetPresence checks a member in or out
func (router *LeadRouter) SetPresence(queueID, memberID string, available bool, actor string) (*data.Member, error) {
	now := router.Now()
	member, err := router.coordinator.SetPresence(queueID, memberID, available, now)
	if err != nil {
		return nil, err
	}
	auditType := data.AuditCheckout
	if available {
		auditType = data.AuditCheckin
	}
	router.audit(router.newAuditEntry(auditType, actor, now, queueID, "", memberID))
	return member, nil
}

// Reorder puts the listed members first in the given order
func (router *LeadRouter) Reorder(queueID string, memberIDs []string, actor string) (*data.Queue, error) {
	queue, err := router.coordinator.Reorder(queueID, memberIDs)
	if err != nil {
		return nil, err
	}
	entry := router.newAuditEntry(data.AuditReordered, actor, router.Now(), queueID, "", "")
	entry.Details[detailMemberIDs] = memberIDs
	router.audit(entry)
	return queue, nil
}

// route runs the regular distribution and then follows the escalation target of each queue that had
// nobody available. When escalation finds nobody either, the outcome of the first matched queue is kept.
func (router *LeadRouter) route(lead *data.Lead, now time.Time) (routing.Outcome, string, error) {
	origin, err := router.coordinator.Distribute(lead, now)
	if err != nil || origin.Queue == nil || origin.Assigned() {
		return origin, "", err
	}
	visited := map[string]bool{origin.Queue.QueueID: true}
	current := origin
	for !current.Assigned() {
		var next routing.Outcome
		switch current.Queue.AdvancedConfig.EscalationTarget {
		case data.EscalateToNextQueue:
			next, err = router.coordinator.DistributeAfter(lead, current.Queue.QueueID, now)
		case data.EscalateToRoulette:
			rouletteQueueID := router.routerConfig.GetRouletteQueueID()
			if len(rouletteQueueID) <= 0 || visited[rouletteQueueID] {
				return origin, "", nil
			}
			next, err = router.coordinator.DistributeTo(rouletteQueueID, now)
		default:
			return origin, "", nil
		}
		if errors.Is(err, routing.ErrQueueNotFound) {
			log.Warn().Str("queueId", router.routerConfig.GetRouletteQueueID()).Msg("roulette queue not found")
			return origin, "", nil
		}
		if err != nil {
			return routing.Outcome{}, "", err
		}
		if next.Queue == nil || visited[next.Queue.QueueID] {
			return origin, "", nil
		}
		visited[next.Queue.QueueID] = true
		current = next
	}
	return current, origin.Queue.QueueID, nil
}

func newResult(lead *data.Lead, outcome routing.Outcome, escalatedFrom string) Result {
	result := Result{LeadID: lead.ID, Held: outcome.Held, Reason: outcome.Reason, EscalatedFrom: escalatedFrom}
	if outcome.Queue != nil {
		result.QueueID = outcome.Queue.QueueID
	}
	if outcome.Member != nil {
		result.MemberID = outcome.Member.MemberID
	}
	return result
}

func (router *LeadRouter) recordAssignment(result Result, actor string, now time.Time) {
	router.metrics.DistributedLeadCount.WithLabelValues(result.QueueID).Inc()
	entry := router.newAuditEntry(data.AuditDistributed, actor, now, result.QueueID, result.LeadID, result.MemberID)
	if len(result.EscalatedFrom) > 0 {
		entry.Details[detailEscalatedFrom] = result.EscalatedFrom
	}
	router.audit(entry)
}

func (router *LeadRouter) newAuditEntry(auditType data.AuditType, actor string, now time.Time, queueID, leadID, memberID string) *data.AuditEntry {
	entry, _ := data.NewAuditEntry(auditType, actor, now)
	entry.QueueID = queueID
	entry.LeadID = leadID
	entry.MemberID = memberID
	return entry
}

// audit failures are logged only; the assignment already happened
func (router *LeadRouter) audit(entries ...*data.AuditEntry) {
	if err := router.auditRepo.Create(entries...); err != nil {
		log.Error().Err(err).Msg("could not write audit entry")
	}
}
