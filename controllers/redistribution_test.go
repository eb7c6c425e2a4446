package controllers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/newscred/lead-router/redistribution"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	queueRedistributionBody = `{"selection":{"filter":{"reason":"no available member"},"pool":"held"},"destination":{"kind":"queue","queueIds":["q1","q2"]}}`
)

func newWorkerMock(t *testing.T) *WorkerMockImpl {
	worker := &WorkerMockImpl{}
	t.Cleanup(func() { worker.AssertExpectations(t) })
	return worker
}

func isQueueDestination(destination data.Destination) bool {
	return destination.Kind == data.DestinationQueue && len(destination.QueueIDs) == 2
}

func isHeldReasonSelection(selection *redistribution.Selection) bool {
	return selection != nil && selection.Pool == data.PoolHeld && selection.Filter != nil && selection.Filter.Reason == data.ReasonNoAvailableMember
}

func newTestJob(t *testing.T, leadIDs ...string) *data.RedistributionJob {
	poolLeads := make([]*data.PoolLead, 0, len(leadIDs))
	for _, leadID := range leadIDs {
		poolLeads = append(poolLeads, newPoolLead(t, leadID))
	}
	job, err := data.NewRedistributionJob(poolLeads, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1", "q2"}}, "ana", nil)
	assert.Nil(t, err)
	return job
}

func TestPreviewController_Post(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("Preview", mock.MatchedBy(isHeldReasonSelection), mock.MatchedBy(isQueueDestination)).Return(&redistribution.Preview{TotalSelected: 3,
			DistributionByDestination: map[string]int{"q1": 2, "q2": 1}, EstimatedDurationMinutes: 1, ReasonBreakdown: map[string]int{data.ReasonNoAvailableMember: 3}}, nil).Once()

		rr := serve(newTestRouter(NewPreviewController(worker)), http.MethodPost, previewPath, queueRedistributionBody, nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		preview := &redistribution.Preview{}
		assert.Nil(t, json.Unmarshal(rr.Body.Bytes(), preview))
		assert.Equal(t, 3, preview.TotalSelected)
		assert.Equal(t, map[string]int{"q1": 2, "q2": 1}, preview.DistributionByDestination)
	})

	t.Run("InvalidDestination", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("Preview", mock.Anything, mock.Anything).Return(nil, data.ErrInvalidDestination).Once()
		rr := serve(newTestRouter(NewPreviewController(worker)), http.MethodPost, previewPath, `{"destination":{"kind":"nowhere"}}`, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, data.ErrInvalidDestination.Error(), rr.Body.String())
	})

	t.Run("EmptySelection", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("Preview", (*redistribution.Selection)(nil), mock.Anything).Return(nil, redistribution.ErrEmptySelection).Once()
		rr := serve(newTestRouter(NewPreviewController(worker)), http.MethodPost, previewPath, `{"destination":{"kind":"roulette"}}`, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("RepoErr", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("Preview", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
		rr := serve(newTestRouter(NewPreviewController(worker)), http.MethodPost, previewPath, queueRedistributionBody, nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestExecuteController_Post(t *testing.T) {
	newController := func(t *testing.T, worker *WorkerMockImpl) *ExecuteController {
		return NewExecuteController(worker, newRouterFixture(t).routerConfig, NewRedistributionJobController(worker))
	}

	t.Run("QueuesJob", func(t *testing.T) {
		worker := newWorkerMock(t)
		job := newTestJob(t, "h1", "h2")
		entry, _ := data.NewAuditEntry(data.AuditRedistributed, "ana", job.CreatedAt)
		worker.On("Execute", mock.MatchedBy(isHeldReasonSelection), mock.MatchedBy(isQueueDestination), "ana", map[string]string(nil)).
			Return(&redistribution.Execution{Job: job, AuditEntry: entry, AffectedLeads: 2}, nil).Once()

		rr := serve(newTestRouter(newController(t, worker)), http.MethodPost, executePath, queueRedistributionBody, map[string]string{testActorHeader: "ana"})

		assert.Equal(t, http.StatusAccepted, rr.Code)
		jobLink := "/redistribution/job/" + job.ID.String()
		assert.Equal(t, jobLink, rr.Header().Get(headerLocation))
		result := map[string]interface{}{}
		assert.Nil(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, float64(2), result["affectedLeads"])
		assert.Equal(t, jobLink, result["jobLink"])
		assert.Equal(t, entry.ID.String(), result["auditEntryId"])
		jobResult := result["job"].(map[string]interface{})
		assert.Equal(t, "queued", jobResult["status"])
		assert.Equal(t, []interface{}{"h1", "h2"}, jobResult["leadIds"])
	})

	t.Run("RequestedByFromBody", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("Execute", mock.Anything, mock.Anything, "bia", map[string]string(nil)).Return(&redistribution.Execution{}, nil).Once()
		rr := serve(newTestRouter(newController(t, worker)), http.MethodPost, executePath,
			`{"selection":{"leadIds":["gone"]},"destination":{"kind":"roulette"},"requestedBy":"bia"}`, map[string]string{testActorHeader: "ana"})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"affectedLeads":0}`, rr.Body.String())
	})

	t.Run("InvalidDestination", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("Execute", mock.Anything, mock.Anything, anonymousActor, map[string]string(nil)).Return(nil, data.ErrInvalidDestination).Once()
		rr := serve(newTestRouter(newController(t, worker)), http.MethodPost, executePath, `{"destination":{"kind":"queue"}}`, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("DispatchErr", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("Execute", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()
		rr := serve(newTestRouter(newController(t, worker)), http.MethodPost, executePath, queueRedistributionBody, nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestImportController_Post(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("ImportBatch", mock.MatchedBy(func(payload *redistribution.ImportPayload) bool {
			return payload.Quantity == 2 && payload.Destination == "roulette" && payload.RequestedBy == "ana"
		})).Return(&redistribution.ImportResult{BatchID: "b1", Created: 2}, nil).Once()

		rr := serve(newTestRouter(NewImportController(worker, newRouterFixture(t).routerConfig)), http.MethodPost, importPath,
			`{"quantity":2,"destination":"roulette"}`, map[string]string{testActorHeader: "ana"})

		assert.Equal(t, http.StatusCreated, rr.Code)
		result := &redistribution.ImportResult{}
		assert.Nil(t, json.Unmarshal(rr.Body.Bytes(), result))
		assert.Equal(t, "b1", result.BatchID)
		assert.Equal(t, 2, result.Created)
	})

	t.Run("InvalidImport", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("ImportBatch", mock.Anything).Return(nil, redistribution.ErrInvalidImport).Once()
		rr := serve(newTestRouter(NewImportController(worker, newRouterFixture(t).routerConfig)), http.MethodPost, importPath, `{"quantity":-1}`, nil)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("LeadAlreadyPooled", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("ImportBatch", mock.Anything).Return(nil, storage.ErrDuplicatePoolLead).Once()
		rr := serve(newTestRouter(NewImportController(worker, newRouterFixture(t).routerConfig)), http.MethodPost, importPath,
			`{"csv":"id,origem\nh1,site\n"}`, nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.Equal(t, storage.ErrDuplicatePoolLead.Error(), rr.Body.String())
	})
}

func TestRedistributionJobController_Get(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		worker := newWorkerMock(t)
		job := newTestJob(t, "h1")
		job.AssignedCount = 1
		worker.On("GetJob", job.ID.String()).Return(job, nil).Once()

		rr := serve(newTestRouter(NewRedistributionJobController(worker)), http.MethodGet, "/redistribution/job/"+job.ID.String(), "", nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		result := map[string]interface{}{}
		assert.Nil(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, job.ID.String(), result["id"])
		assert.Equal(t, float64(1), result["assignedCount"])
		assert.Equal(t, float64(1), result["totalLeads"])
	})

	t.Run("NotFound", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("GetJob", "missing").Return(nil, sql.ErrNoRows).Once()
		rr := serve(newTestRouter(NewRedistributionJobController(worker)), http.MethodGet, "/redistribution/job/missing", "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("RepoErr", func(t *testing.T) {
		worker := newWorkerMock(t)
		worker.On("GetJob", "broken").Return(nil, assert.AnError).Once()
		rr := serve(newTestRouter(NewRedistributionJobController(worker)), http.MethodGet, "/redistribution/job/broken", "", nil)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
