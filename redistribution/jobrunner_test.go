package redistribution

import (
	"errors"
	"testing"
	"time"

	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestJob(t *testing.T, destination data.Destination, ids ...string) *data.RedistributionJob {
	job, err := data.NewRedistributionJob(heldLeads(ids...), destination, "ana", nil)
	assert.Nil(t, err)
	return job
}

func newTestJobRunner(fixture *workerFixture) *JobRunnerImpl {
	return NewJobRunner(fixture.configuration).(*JobRunnerImpl)
}

func (fixture *workerFixture) expectAssignmentsRecorded(job *data.RedistributionJob) {
	fixture.jobRepo.On("MarkLeadAssigned", job, mock.Anything).Run(func(args mock.Arguments) {
		job.AssignedLeadIDs = append(job.AssignedLeadIDs, args.String(1))
		job.AssignedCount = len(job.AssignedLeadIDs)
	}).Return(nil)
}

func TestRunJob(t *testing.T) {
	t.Run("QueueRoundRobin", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("q1", 1, nil, "m1"), newTestQueue("q2", 2, nil))
		job := newTestJob(t, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1", "q2"}}, "h1", "h2", "h3")
		fixture.jobRepo.On("MarkJobInflight", job).Return(nil).Once()
		fixture.expectAssignmentsRecorded(job)
		fixture.jobRepo.On("MarkJobCompleted", job, mock.MatchedBy(func(reheld []*data.PoolLead) bool {
			return len(reheld) == 1 && reheld[0].LeadID() == "h2" && reheld[0].Pool == data.PoolHeld &&
				reheld[0].PreviousQueueID == "q2" && reheld[0].Reason == data.ReasonNoAvailableMember
		}), mock.MatchedBy(func(entries []*data.AuditEntry) bool {
			return len(entries) == 1 && entries[0].Type == data.AuditRedistributed && entries[0].Actor == "ana" &&
				entries[0].Details["assigned"] == 2 && entries[0].Details["reheld"] == 1
		})).Return(nil).Once()
		assert.Nil(t, newTestJobRunner(fixture).runJob(job))
		assert.Equal(t, 2, job.AssignedCount)
		assert.Equal(t, 1, job.ReheldCount)
		assert.Equal(t, data.LeadIDs{"h1", "h3"}, job.AssignedLeadIDs)
		queue, _ := fixture.configuration.Router.Coordinator().Queue("q1")
		assert.Equal(t, uint64(2), queue.ReceivedCount)
	})
	t.Run("RouletteKeepsPoolMetadata", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("site", 1, data.Rules{data.NewEqualsRule("origem", "site")}, "m1"),
			newTestQueue("fair", 2, data.Rules{data.NewEqualsRule("origem", "fair")}))
		job := newTestJob(t, data.Destination{Kind: data.DestinationRoulette}, "h1")
		stray, _ := data.NewLead("h2", map[string]interface{}{"origem": "fair"})
		job.Leads = append(job.Leads, &data.PoolLead{Lead: stray, Pool: data.PoolArchived, Reason: data.ReasonImported, Owner: "bia",
			Tags: data.Tags{"fair"}, BatchID: "b1"})
		fixture.jobRepo.On("MarkJobInflight", job).Return(nil).Once()
		fixture.expectAssignmentsRecorded(job)
		fixture.jobRepo.On("MarkJobCompleted", job, mock.MatchedBy(func(reheld []*data.PoolLead) bool {
			return len(reheld) == 1 && reheld[0].LeadID() == "h2" && reheld[0].Owner == "bia" && reheld[0].BatchID == "b1" &&
				reheld[0].Tags.Has("fair") && reheld[0].MatchedQueueID == "fair" && reheld[0].Pool == data.PoolHeld
		}), mock.Anything).Return(nil).Once()
		assert.Nil(t, newTestJobRunner(fixture).runJob(job))
		assert.Equal(t, 1, job.AssignedCount)
		assert.Equal(t, 1, job.ReheldCount)
	})
	t.Run("AlreadyTaken", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("q1", 1, nil, "m1"))
		job := newTestJob(t, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1"}}, "h1")
		fixture.jobRepo.On("MarkJobInflight", job).Return(storage.ErrNoRowsUpdated).Once()
		assert.Nil(t, newTestJobRunner(fixture).runJob(job))
		fixture.jobRepo.AssertNotCalled(t, "MarkJobCompleted", mock.Anything, mock.Anything, mock.Anything)
	})
	t.Run("InflightErr", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("q1", 1, nil, "m1"))
		job := newTestJob(t, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1"}}, "h1")
		expectedErr := errors.New("db down")
		fixture.jobRepo.On("MarkJobInflight", job).Return(expectedErr).Once()
		assert.Equal(t, expectedErr, newTestJobRunner(fixture).runJob(job))
	})
	t.Run("DeletedQueueReholds", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("q1", 1, nil, "m1"))
		job := newTestJob(t, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1"}}, "h1")
		fixture.configuration.Router.Coordinator().Replace(nil)
		fixture.jobRepo.On("MarkJobInflight", job).Return(nil).Once()
		fixture.jobRepo.On("MarkJobCompleted", job, mock.MatchedBy(func(reheld []*data.PoolLead) bool {
			return len(reheld) == 1 && reheld[0].Reason == data.ReasonNoAvailableMember
		}), mock.Anything).Return(nil).Once()
		assert.Nil(t, newTestJobRunner(fixture).runJob(job))
		fixture.jobRepo.AssertNotCalled(t, "MarkLeadAssigned", mock.Anything, mock.Anything)
	})
	t.Run("RequeuedJobSkipsAssignedLeads", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("q1", 1, nil, "m1", "m2"))
		job := newTestJob(t, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1"}}, "h1", "h2")
		fixture.jobRepo.On("MarkJobInflight", job).Return(nil).Twice()
		fixture.expectAssignmentsRecorded(job)
		fixture.jobRepo.On("MarkJobCompleted", job, mock.Anything, mock.Anything).Return(storage.ErrDuplicatePoolLead).Once()
		fixture.jobRepo.On("MarkJobCompleted", job, mock.MatchedBy(func(reheld []*data.PoolLead) bool { return len(reheld) == 0 }),
			mock.MatchedBy(func(entries []*data.AuditEntry) bool { return entries[0].Details["assigned"] == 2 })).Return(nil).Once()
		runner := newTestJobRunner(fixture)
		assert.Equal(t, storage.ErrDuplicatePoolLead, runner.runJob(job))
		assert.Nil(t, runner.runJob(job))
		queue, _ := fixture.configuration.Router.Coordinator().Queue("q1")
		assert.Equal(t, uint64(2), queue.ReceivedCount)
		assert.Equal(t, 2, job.AssignedCount)
		fixture.jobRepo.AssertNumberOfCalls(t, "MarkLeadAssigned", 2)
	})
	t.Run("RecordAssignmentErrStops", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("q1", 1, nil, "m1", "m2"))
		job := newTestJob(t, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1"}}, "h1", "h2")
		expectedErr := errors.New("db down")
		fixture.jobRepo.On("MarkJobInflight", job).Return(nil).Once()
		fixture.jobRepo.On("MarkLeadAssigned", job, "h1").Return(expectedErr).Once()
		assert.Equal(t, expectedErr, newTestJobRunner(fixture).runJob(job))
		queue, _ := fixture.configuration.Router.Coordinator().Queue("q1")
		assert.Equal(t, uint64(1), queue.ReceivedCount)
		fixture.jobRepo.AssertNotCalled(t, "MarkJobCompleted", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestProcessJobs(t *testing.T) {
	t.Run("RunsUnderLock", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("q1", 1, nil, "m1"))
		job := newTestJob(t, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1"}}, "h1")
		fixture.jobRepo.On("RequeueStaleInflightJobs", mock.Anything).Return(int64(1), nil).Once()
		fixture.jobRepo.On("GetJobsByStatus", data.JobQueued, 5).Return([]*data.RedistributionJob{job}, nil).Once()
		fixture.lockRepo.On("TryLock", mock.MatchedBy(func(lock *data.Lock) bool { return lock.LockID == job.GetLockID() })).Return(nil).Once()
		fixture.lockRepo.On("ReleaseLock", mock.Anything).Return(nil).Once()
		fixture.jobRepo.On("MarkJobInflight", job).Return(nil).Once()
		fixture.expectAssignmentsRecorded(job)
		fixture.jobRepo.On("MarkJobCompleted", job, mock.Anything, mock.Anything).Return(nil).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(0), nil).Once()
		newTestJobRunner(fixture).processJobs()
		assert.Equal(t, 1, job.AssignedCount)
	})
	t.Run("SkipsLockedJobs", func(t *testing.T) {
		fixture := newWorkerFixture(t, newTestQueue("q1", 1, nil, "m1"))
		job := newTestJob(t, data.Destination{Kind: data.DestinationQueue, QueueIDs: []string{"q1"}}, "h1")
		fixture.jobRepo.On("RequeueStaleInflightJobs", mock.Anything).Return(int64(0), nil).Once()
		fixture.jobRepo.On("GetJobsByStatus", data.JobQueued, 5).Return([]*data.RedistributionJob{job}, nil).Once()
		fixture.lockRepo.On("TryLock", mock.Anything).Return(storage.ErrAlreadyLocked).Once()
		fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(0), nil).Once()
		newTestJobRunner(fixture).processJobs()
		fixture.jobRepo.AssertNotCalled(t, "MarkJobInflight", mock.Anything)
	})
	t.Run("ReadErr", func(t *testing.T) {
		fixture := newWorkerFixture(t)
		fixture.jobRepo.On("RequeueStaleInflightJobs", mock.Anything).Return(int64(0), errors.New("requeue")).Once()
		fixture.jobRepo.On("GetJobsByStatus", data.JobQueued, 5).Return(nil, errors.New("read")).Once()
		newTestJobRunner(fixture).processJobs()
		fixture.lockRepo.AssertNotCalled(t, "TryLock", mock.Anything)
	})
	t.Run("RecoversPanic", func(t *testing.T) {
		fixture := newWorkerFixture(t)
		fixture.jobRepo.On("RequeueStaleInflightJobs", mock.Anything).Run(func(args mock.Arguments) { panic("boom") }).Return(int64(0), nil).Once()
		assert.NotPanics(t, newTestJobRunner(fixture).processJobs)
	})
}

func TestJobRunnerStartStop(t *testing.T) {
	fixture := newWorkerFixture(t)
	processed := make(chan struct{}, 10)
	fixture.jobRepo.On("RequeueStaleInflightJobs", mock.Anything).Return(int64(0), nil).Maybe()
	fixture.jobRepo.On("GetJobsByStatus", data.JobQueued, 5).Return([]*data.RedistributionJob{}, nil).Run(func(args mock.Arguments) {
		select {
		case processed <- struct{}{}:
		default:
		}
	}).Maybe()
	fixture.poolLeadRepo.On("Count", data.PoolHeld).Return(int64(0), nil).Maybe()
	runner := NewJobRunner(fixture.configuration)
	runner.Start()
	select {
	case <-processed:
	case <-time.After(time.Second):
		assert.Fail(t, "job runner did not tick")
	}
	runner.Stop()
	runner.Stop()
}
