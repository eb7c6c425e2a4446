package scheduler

import (
	"errors"
	"testing"
	"time"

	configmocks "github.com/newscred/lead-router/config/mocks"
	"github.com/newscred/lead-router/dispatcher"
	"github.com/newscred/lead-router/routing"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	"github.com/newscred/lead-router/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type schedulerFixture struct {
	configuration *SchedulerConfiguration
	poolLeadRepo  *mocks.PoolLeadRepository
	auditRepo     *mocks.AuditRepository
	lockRepo      *mocks.LockRepository
}

func newQueue(queueID string, redistributionActive bool, memberIDs ...string) *data.Queue {
	queue, _ := data.NewQueue(queueID, queueID, 1)
	queue.AdvancedConfig.RedistributionActive = redistributionActive
	for index, memberID := range memberIDs {
		member, _ := data.NewMember(queueID, memberID, index+1)
		queue.Members = append(queue.Members, member)
	}
	return queue
}

func newHeldLead(t *testing.T, leadID, matchedQueueID string) *data.PoolLead {
	lead, err := data.NewLead(leadID, map[string]interface{}{"origem": "site"})
	assert.NoError(t, err)
	heldLead, err := data.NewHeldLead(lead, data.ReasonNoAvailableMember, matchedQueueID)
	assert.NoError(t, err)
	heldLead.CreatedAt = time.Now().Add(-time.Hour)
	return heldLead
}

func newSchedulerFixture(t *testing.T, queues ...*data.Queue) *schedulerFixture {
	fixture := &schedulerFixture{poolLeadRepo: mocks.NewPoolLeadRepository(t), auditRepo: mocks.NewAuditRepository(t), lockRepo: mocks.NewLockRepository(t)}
	routerConfig := configmocks.NewRouterConfig(t)
	routerConfig.On("GetTimezone").Return(time.UTC).Maybe()
	routerConfig.On("GetRouletteQueueID").Return("").Maybe()
	schedulerCfg := configmocks.NewSchedulerConfig(t)
	schedulerCfg.On("GetHeldRetryInterval").Return(5 * time.Millisecond).Maybe()
	schedulerCfg.On("GetHeldRetryBatchSize").Return(10).Maybe()
	metrics := dispatcher.NewMetricsContainer()
	router := dispatcher.NewLeadRouter(&dispatcher.Configuration{Coordinator: routing.NewCoordinator(queues, nil), PoolLeadRepo: fixture.poolLeadRepo,
		AuditRepo: fixture.auditRepo, RouterConfig: routerConfig, Metrics: metrics})
	fixture.configuration = NewSchedulerConfiguration(fixture.poolLeadRepo, fixture.auditRepo, fixture.lockRepo, router, metrics, schedulerCfg)
	return fixture
}

func (fixture *schedulerFixture) expectLock() {
	fixture.lockRepo.On("TryLock", mock.Anything).Return(nil).Once()
	fixture.lockRepo.On("ReleaseLock", mock.Anything).Return(nil).Once()
}

func (fixture *schedulerFixture) newScheduler() *HeldLeadSchedulerImpl {
	return NewHeldLeadScheduler(fixture.configuration).(*HeldLeadSchedulerImpl)
}

func TestNewHeldLeadScheduler(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		assert.NotNil(t, NewHeldLeadScheduler(newSchedulerFixture(t).configuration))
	})

	t.Run("nil configuration", func(t *testing.T) {
		breakers := []func(*SchedulerConfiguration){
			func(configuration *SchedulerConfiguration) { configuration.PoolLeadRepo = nil },
			func(configuration *SchedulerConfiguration) { configuration.AuditRepo = nil },
			func(configuration *SchedulerConfiguration) { configuration.LockRepo = nil },
			func(configuration *SchedulerConfiguration) { configuration.Router = nil },
			func(configuration *SchedulerConfiguration) { configuration.Metrics = nil },
			func(configuration *SchedulerConfiguration) { configuration.SchedulerCfg = nil },
		}
		for _, breaker := range breakers {
			configuration := newSchedulerFixture(t).configuration
			breaker(configuration)
			assert.PanicsWithValue(t, panicString, func() { NewHeldLeadScheduler(configuration) })
		}
	})
}

func TestStartStop(t *testing.T) {
	fixture := newSchedulerFixture(t)
	fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{}, nil)

	scheduler := NewHeldLeadScheduler(fixture.configuration)
	scheduler.Start()
	time.Sleep(20 * time.Millisecond)
	scheduler.Stop()
	scheduler.Stop()

	fixture.poolLeadRepo.AssertCalled(t, "GetOldest", data.PoolHeld, 10)
}

func TestRetryHeldLeads(t *testing.T) {
	t.Run("AssignedLeadLeavesPool", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", true, "m1"))
		heldLead := newHeldLead(t, "h1", "q1")
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{heldLead}, nil).Once()
		fixture.expectLock()
		fixture.auditRepo.On("Create", mock.MatchedBy(func(entry *data.AuditEntry) bool {
			return entry.Type == data.AuditRedistributed && entry.LeadID == "h1" && entry.QueueID == "q1" && entry.MemberID == "m1" &&
				entry.Actor == data.SystemActor && entry.Details["previousReason"] == data.ReasonNoAvailableMember
		})).Return(nil).Once()
		fixture.auditRepo.On("Create", mock.MatchedBy(func(entry *data.AuditEntry) bool {
			return entry.Type == data.AuditDistributed
		})).Return(nil).Once()
		fixture.poolLeadRepo.On("Remove", "h1").Return(int64(1), nil).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(0), nil).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		assert.Equal(t, uint64(1), scheduler.metricsCollector.RetriedLeads)
		assert.Equal(t, uint64(1), scheduler.metricsCollector.RedistributedLeads)
		assert.GreaterOrEqual(t, scheduler.metricsCollector.GetLatestHoldDuration(), time.Hour)
	})

	t.Run("StillUnavailableStaysHeld", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", true))
		heldLead := newHeldLead(t, "h1", "q1")
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{heldLead}, nil).Once()
		fixture.expectLock()
		fixture.poolLeadRepo.On("Remove", "h1").Return(int64(1), nil).Once()
		fixture.poolLeadRepo.On("Add", heldLead).Return(nil).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(1), nil).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		fixture.auditRepo.AssertNotCalled(t, "Create", mock.Anything)
		assert.Equal(t, uint64(1), scheduler.metricsCollector.RetriedLeads)
		assert.Equal(t, uint64(0), scheduler.metricsCollector.RedistributedLeads)
		assert.Equal(t, uint64(0), scheduler.metricsCollector.RetryErrors)
	})

	t.Run("RedistributionInactive", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", false, "m1"))
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{newHeldLead(t, "h1", "q1")}, nil).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(1), nil).Once()

		fixture.newScheduler().retryHeldLeads()

		fixture.lockRepo.AssertNotCalled(t, "TryLock", mock.Anything)
		fixture.poolLeadRepo.AssertNotCalled(t, "Remove", mock.Anything)
	})

	t.Run("UnmatchedLeadFindsNewQueue", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", false, "m1"))
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{newHeldLead(t, "h1", "")}, nil).Once()
		fixture.expectLock()
		fixture.auditRepo.On("Create", mock.Anything).Return(nil).Twice()
		fixture.poolLeadRepo.On("Remove", "h1").Return(int64(1), nil).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(0), nil).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		assert.Equal(t, uint64(1), scheduler.metricsCollector.RedistributedLeads)
	})

	t.Run("ClaimedByRedistribution", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", true, "m1"))
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{newHeldLead(t, "h1", "q1")}, nil).Once()
		fixture.expectLock()
		fixture.poolLeadRepo.On("Remove", "h1").Return(int64(0), nil).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(0), nil).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		queue, _ := fixture.configuration.Router.Coordinator().Queue("q1")
		assert.Equal(t, uint64(0), queue.ReceivedCount)
		fixture.auditRepo.AssertNotCalled(t, "Create", mock.Anything)
		assert.Equal(t, uint64(0), scheduler.metricsCollector.RetriedLeads)
		assert.Equal(t, uint64(0), scheduler.metricsCollector.RedistributedLeads)
	})

	t.Run("LockedElsewhere", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", true, "m1"))
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{newHeldLead(t, "h1", "q1")}, nil).Once()
		fixture.lockRepo.On("TryLock", mock.Anything).Return(storage.ErrAlreadyLocked).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(1), nil).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		assert.Equal(t, uint64(0), scheduler.metricsCollector.RetriedLeads)
		assert.Equal(t, uint64(0), scheduler.metricsCollector.RetryErrors)
	})

	t.Run("RemoveErr", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", true, "m1"))
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{newHeldLead(t, "h1", "q1")}, nil).Once()
		fixture.expectLock()
		fixture.poolLeadRepo.On("Remove", "h1").Return(int64(0), errors.New("database error")).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(1), nil).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		queue, _ := fixture.configuration.Router.Coordinator().Queue("q1")
		assert.Equal(t, uint64(0), queue.ReceivedCount)
		fixture.auditRepo.AssertNotCalled(t, "Create", mock.Anything)
		assert.Equal(t, uint64(1), scheduler.metricsCollector.RetryErrors)
		assert.Equal(t, uint64(0), scheduler.metricsCollector.RedistributedLeads)
	})

	t.Run("PutBackErr", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", true))
		heldLead := newHeldLead(t, "h1", "q1")
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{heldLead}, nil).Once()
		fixture.expectLock()
		fixture.poolLeadRepo.On("Remove", "h1").Return(int64(1), nil).Once()
		fixture.poolLeadRepo.On("Add", heldLead).Return(errors.New("database error")).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(0), nil).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		assert.Equal(t, uint64(1), scheduler.metricsCollector.RetryErrors)
	})

	t.Run("PooledAgainMeanwhile", func(t *testing.T) {
		fixture := newSchedulerFixture(t, newQueue("q1", true))
		heldLead := newHeldLead(t, "h1", "q1")
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return([]*data.PoolLead{heldLead}, nil).Once()
		fixture.expectLock()
		fixture.poolLeadRepo.On("Remove", "h1").Return(int64(1), nil).Once()
		fixture.poolLeadRepo.On("Add", heldLead).Return(storage.ErrDuplicatePoolLead).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(1), nil).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		assert.Equal(t, uint64(0), scheduler.metricsCollector.RetryErrors)
	})

	t.Run("ReadErr", func(t *testing.T) {
		fixture := newSchedulerFixture(t)
		fixture.poolLeadRepo.On("GetOldest", data.PoolHeld, 10).Return(nil, errors.New("database error")).Once()

		scheduler := fixture.newScheduler()
		scheduler.retryHeldLeads()

		assert.Equal(t, uint64(1), scheduler.metricsCollector.RetryErrors)
	})
}

func TestMetrics(t *testing.T) {
	m := NewMetricsContainer()

	assert.Equal(t, uint64(0), m.RetriedLeads)
	assert.Equal(t, uint64(1), m.IncreaseRetriedLeadCount())
	assert.Equal(t, uint64(1), m.RetriedLeads)

	assert.Equal(t, uint64(0), m.RedistributedLeads)
	assert.Equal(t, uint64(1), m.IncreaseRedistributedLeadCount())
	assert.Equal(t, uint64(1), m.RedistributedLeads)

	assert.Equal(t, uint64(0), m.RetryErrors)
	assert.Equal(t, uint64(1), m.IncreaseRetryErrorCount())
	assert.Equal(t, uint64(1), m.RetryErrors)

	assert.Equal(t, time.Duration(0), m.GetLatestHoldDuration())
	m.SetLatestHoldDuration(5 * time.Second)
	assert.Equal(t, 5*time.Second, m.GetLatestHoldDuration())
}
