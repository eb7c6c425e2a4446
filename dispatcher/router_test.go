package dispatcher

import (
	"errors"
	"testing"
	"time"

	configmocks "github.com/newscred/lead-router/config/mocks"
	"github.com/newscred/lead-router/routing"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	storagemocks "github.com/newscred/lead-router/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	site = map[string]interface{}{"origem": "site"}
)

func newRoutingQueue(queueID string, priority int, target data.EscalationTarget, rules data.Rules, memberIDs ...string) *data.Queue {
	queue, _ := data.NewQueue(queueID, queueID, priority)
	queue.AdvancedConfig.EscalationTarget = target
	if rules != nil {
		queue.Rules = rules
	}
	for index, memberID := range memberIDs {
		member, _ := data.NewMember(queueID, memberID, index+1)
		queue.Members = append(queue.Members, member)
	}
	return queue
}

func newRouterConfig(t *testing.T, rouletteQueueID string) *configmocks.RouterConfig {
	routerConfig := configmocks.NewRouterConfig(t)
	routerConfig.On("GetTimezone").Return(time.UTC).Maybe()
	routerConfig.On("GetRouletteQueueID").Return(rouletteQueueID).Maybe()
	routerConfig.On("GetMaxWorkers").Return(uint(2)).Maybe()
	routerConfig.On("GetMaxLeadQueueSize").Return(uint(10)).Maybe()
	return routerConfig
}

type routerFixture struct {
	router       *LeadRouter
	poolLeadRepo *storagemocks.PoolLeadRepository
	auditRepo    *storagemocks.AuditRepository
}

func newRouterFixture(t *testing.T, rouletteQueueID string, queues ...*data.Queue) *routerFixture {
	fixture := &routerFixture{poolLeadRepo: storagemocks.NewPoolLeadRepository(t), auditRepo: storagemocks.NewAuditRepository(t)}
	fixture.router = NewLeadRouter(&Configuration{Coordinator: routing.NewCoordinator(queues, nil), PoolLeadRepo: fixture.poolLeadRepo,
		AuditRepo: fixture.auditRepo, RouterConfig: newRouterConfig(t, rouletteQueueID), Metrics: NewMetricsContainer()})
	return fixture
}

func (fixture *routerFixture) expectAudit(auditType data.AuditType, match func(entry *data.AuditEntry) bool) {
	fixture.auditRepo.On("Create", mock.MatchedBy(func(entry *data.AuditEntry) bool {
		return entry.Type == auditType && match(entry)
	})).Return(nil).Once()
}

func (fixture *routerFixture) expectHold(reason, matchedQueueID string) {
	fixture.poolLeadRepo.On("Add", mock.MatchedBy(func(held *data.PoolLead) bool {
		return held.Pool == data.PoolHeld && held.Reason == reason && held.MatchedQueueID == matchedQueueID
	})).Return(nil).Once()
	fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(1), nil).Once()
	fixture.expectAudit(data.AuditHeld, func(entry *data.AuditEntry) bool {
		return entry.QueueID == matchedQueueID && entry.Details[detailReason] == reason
	})
}

func newLead(id string) *data.Lead {
	lead, _ := data.NewLead(id, site)
	return lead
}

func TestNewLeadRouter(t *testing.T) {
	deferFunc := func() {
		if r := recover(); r != panicString {
			t.Fail()
		}
	}
	t.Run("NilConfiguration", func(t *testing.T) {
		defer deferFunc()
		NewLeadRouter(nil)
	})
	t.Run("MissingRepo", func(t *testing.T) {
		defer deferFunc()
		NewLeadRouter(&Configuration{Coordinator: routing.NewCoordinator(nil, nil), AuditRepo: new(storagemocks.AuditRepository),
			RouterConfig: new(configmocks.RouterConfig), Metrics: NewMetricsContainer()})
	})
	t.Run("MissingMetrics", func(t *testing.T) {
		defer deferFunc()
		NewLeadRouter(&Configuration{Coordinator: routing.NewCoordinator(nil, nil), AuditRepo: new(storagemocks.AuditRepository),
			PoolLeadRepo: new(storagemocks.PoolLeadRepository), RouterConfig: new(configmocks.RouterConfig)})
	})
}

func TestLeadRouterDispatch(t *testing.T) {
	t.Run("Assigned", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, nil, "m1", "m2"))
		fixture.expectAudit(data.AuditDistributed, func(entry *data.AuditEntry) bool {
			return entry.QueueID == "q1" && entry.MemberID == "m1" && entry.LeadID == "lead-1" && entry.Actor == "alice"
		})
		result, err := fixture.router.Dispatch(newLead("lead-1"), "alice")
		assert.Nil(t, err)
		assert.True(t, result.Assigned())
		assert.Equal(t, Result{LeadID: "lead-1", QueueID: "q1", MemberID: "m1"}, result)
		fixture.expectAudit(data.AuditDistributed, func(entry *data.AuditEntry) bool { return entry.MemberID == "m2" })
		result, err = fixture.router.Dispatch(newLead("lead-2"), "alice")
		assert.Nil(t, err)
		assert.Equal(t, "m2", result.MemberID)
	})
	t.Run("NoMatchingQueueIsPooled", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, data.Rules{data.NewEqualsRule("origem", "fair")}, "m1"))
		fixture.expectHold(data.ReasonNoMatchingQueue, "")
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.False(t, result.Held)
		assert.True(t, result.Pooled)
		assert.Empty(t, result.QueueID)
		assert.Equal(t, data.ReasonNoMatchingQueue, result.Reason)
	})
	t.Run("NoAvailableMemberIsHeld", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, nil))
		fixture.expectHold(data.ReasonNoAvailableMember, "q1")
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.True(t, result.Held)
		assert.True(t, result.Pooled)
		assert.Equal(t, "q1", result.QueueID)
	})
	t.Run("EscalateToNextQueue", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNextQueue, nil),
			newRoutingQueue("q2", 2, data.EscalateToNone, nil, "m2"))
		fixture.expectAudit(data.AuditDistributed, func(entry *data.AuditEntry) bool {
			return entry.QueueID == "q2" && entry.Details[detailEscalatedFrom] == "q1"
		})
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.Equal(t, Result{LeadID: "lead-1", QueueID: "q2", MemberID: "m2", EscalatedFrom: "q1"}, result)
	})
	t.Run("EscalationChainExhausted", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNextQueue, nil),
			newRoutingQueue("q2", 2, data.EscalateToNextQueue, nil))
		fixture.expectHold(data.ReasonNoAvailableMember, "q1")
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.Equal(t, "q1", result.QueueID)
		assert.True(t, result.Held)
	})
	t.Run("EscalateToRoulette", func(t *testing.T) {
		fixture := newRouterFixture(t, "roulette", newRoutingQueue("q1", 1, data.EscalateToRoulette, nil),
			newRoutingQueue("roulette", 9, data.EscalateToNone, data.Rules{data.NewEqualsRule("origem", "nowhere")}, "r1"))
		fixture.expectAudit(data.AuditDistributed, func(entry *data.AuditEntry) bool { return entry.MemberID == "r1" })
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.Equal(t, "roulette", result.QueueID)
		assert.Equal(t, "q1", result.EscalatedFrom)
	})
	t.Run("RouletteNotConfigured", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToRoulette, nil))
		fixture.expectHold(data.ReasonNoAvailableMember, "q1")
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.True(t, result.Pooled)
	})
	t.Run("RouletteQueueUnknown", func(t *testing.T) {
		fixture := newRouterFixture(t, "missing", newRoutingQueue("q1", 1, data.EscalateToRoulette, nil))
		fixture.expectHold(data.ReasonNoAvailableMember, "q1")
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.True(t, result.Pooled)
	})
	t.Run("AlreadyPooled", func(t *testing.T) {
		fixture := newRouterFixture(t, "")
		fixture.poolLeadRepo.On("Add", mock.Anything).Return(storage.ErrDuplicatePoolLead).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(1), nil).Once()
		fixture.auditRepo.On("Create", mock.Anything).Return(nil).Once()
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.True(t, result.Pooled)
	})
	t.Run("HoldFails", func(t *testing.T) {
		fixture := newRouterFixture(t, "")
		expectedErr := errors.New("db down")
		fixture.poolLeadRepo.On("Add", mock.Anything).Return(expectedErr).Once()
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Equal(t, expectedErr, err)
		assert.False(t, result.Pooled)
	})
	t.Run("AuditFailureIsNotFatal", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, nil, "m1"))
		fixture.auditRepo.On("Create", mock.Anything).Return(errors.New("audit down")).Once()
		result, err := fixture.router.Dispatch(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.Equal(t, "m1", result.MemberID)
	})
	t.Run("InvalidLead", func(t *testing.T) {
		fixture := newRouterFixture(t, "")
		_, err := fixture.router.Dispatch(nil, "")
		assert.Equal(t, ErrInvalidLead, err)
		_, err = fixture.router.Dispatch(&data.Lead{}, "")
		assert.Equal(t, ErrInvalidLead, err)
	})
}

func TestLeadRouterRoute(t *testing.T) {
	t.Run("NobodyAvailableIsNotPooled", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, nil))
		result, err := fixture.router.Route(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.True(t, result.Held)
		assert.False(t, result.Pooled)
	})
	t.Run("Assigned", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, nil, "m1"))
		fixture.expectAudit(data.AuditDistributed, func(entry *data.AuditEntry) bool { return entry.MemberID == "m1" })
		result, err := fixture.router.Route(newLead("lead-1"), "")
		assert.Nil(t, err)
		assert.True(t, result.Assigned())
	})
	t.Run("RouteToIgnoresRules", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, data.Rules{data.NewEqualsRule("origem", "fair")}, "m1"))
		fixture.expectAudit(data.AuditDistributed, func(entry *data.AuditEntry) bool { return entry.QueueID == "q1" })
		result, err := fixture.router.RouteTo(newLead("lead-1"), "q1", "bob")
		assert.Nil(t, err)
		assert.Equal(t, "m1", result.MemberID)
	})
	t.Run("RouteToUnknownQueue", func(t *testing.T) {
		fixture := newRouterFixture(t, "")
		_, err := fixture.router.RouteTo(newLead("lead-1"), "nope", "bob")
		assert.Equal(t, routing.ErrQueueNotFound, err)
		_, err = fixture.router.RouteTo(nil, "nope", "bob")
		assert.Equal(t, ErrInvalidLead, err)
	})
}

func TestLeadRouterPresenceAndReorder(t *testing.T) {
	t.Run("CheckinAndCheckout", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, nil, "m1"))
		fixture.expectAudit(data.AuditCheckin, func(entry *data.AuditEntry) bool { return entry.MemberID == "m1" && entry.QueueID == "q1" })
		member, err := fixture.router.SetPresence("q1", "m1", true, "m1")
		assert.Nil(t, err)
		assert.True(t, member.AvailableNow)
		assert.False(t, member.LastCheckIn.IsZero())
		fixture.expectAudit(data.AuditCheckout, func(entry *data.AuditEntry) bool { return entry.MemberID == "m1" })
		member, err = fixture.router.SetPresence("q1", "m1", false, "m1")
		assert.Nil(t, err)
		assert.False(t, member.AvailableNow)
	})
	t.Run("UnknownMember", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, nil, "m1"))
		_, err := fixture.router.SetPresence("q1", "ghost", true, "")
		assert.Equal(t, routing.ErrMemberNotFound, err)
	})
	t.Run("Reorder", func(t *testing.T) {
		fixture := newRouterFixture(t, "", newRoutingQueue("q1", 1, data.EscalateToNone, nil, "m1", "m2", "m3"))
		fixture.expectAudit(data.AuditReordered, func(entry *data.AuditEntry) bool { return entry.QueueID == "q1" })
		queue, err := fixture.router.Reorder("q1", []string{"m3", "m1"}, "")
		assert.Nil(t, err)
		assert.Equal(t, 1, queue.FindMember("m3").RotationOrder)
		assert.Equal(t, 2, queue.FindMember("m1").RotationOrder)
		assert.Equal(t, 3, queue.FindMember("m2").RotationOrder)
	})
	t.Run("ReorderUnknownQueue", func(t *testing.T) {
		fixture := newRouterFixture(t, "")
		_, err := fixture.router.Reorder("nope", []string{"m1"}, "")
		assert.Equal(t, routing.ErrQueueNotFound, err)
	})
}

func TestLeadRouterNow(t *testing.T) {
	oldCurrentTime := currentTime
	defer func() { currentTime = oldCurrentTime }()
	fixed := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	currentTime = func() time.Time { return fixed }
	location := time.FixedZone("BRT", -3*3600)
	routerConfig := configmocks.NewRouterConfig(t)
	routerConfig.On("GetTimezone").Return(location).Once()
	router := NewLeadRouter(&Configuration{Coordinator: routing.NewCoordinator(nil, nil), PoolLeadRepo: new(storagemocks.PoolLeadRepository),
		AuditRepo: new(storagemocks.AuditRepository), RouterConfig: routerConfig, Metrics: NewMetricsContainer()})
	now := router.Now()
	assert.Equal(t, 9, now.Hour())
	assert.True(t, now.Equal(fixed))
}

func TestNewCoordinator(t *testing.T) {
	t.Run("LoadsStoredQueues", func(t *testing.T) {
		queueRepo := storagemocks.NewQueueRepository(t)
		queueRepo.On("GetAll").Return([]*data.Queue{newRoutingQueue("q1", 1, data.EscalateToNone, nil, "m1")}, nil).Once()
		queueRepo.On("SaveRotationState", mock.Anything).Return(nil).Once()
		coordinator, err := NewCoordinator(queueRepo)
		assert.Nil(t, err)
		assert.Len(t, coordinator.Queues(), 1)
		outcome, err := coordinator.Distribute(newLead("lead-1"), time.Now())
		assert.Nil(t, err)
		assert.True(t, outcome.Assigned())
	})
	t.Run("LoadErr", func(t *testing.T) {
		queueRepo := storagemocks.NewQueueRepository(t)
		expectedErr := errors.New("db down")
		queueRepo.On("GetAll").Return(nil, expectedErr).Once()
		_, err := NewCoordinator(queueRepo)
		assert.Equal(t, expectedErr, err)
	})
	t.Run("NilRepo", func(t *testing.T) {
		defer func() {
			assert.Equal(t, panicString, recover())
		}()
		NewCoordinator(nil)
	})
}
