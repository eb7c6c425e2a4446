package storage

import (
	"time"

	"github.com/newscred/lead-router/config"
	"github.com/newscred/lead-router/storage/data"
)

// DataAccessor is the facade to all the data repository
type DataAccessor interface {
	GetAppRepository() AppRepository
	GetQueueRepository() QueueRepository
	GetPoolLeadRepository() PoolLeadRepository
	GetAuditRepository() AuditRepository
	GetRedistributionJobRepository() RedistributionJobRepository
	GetLockRepository() LockRepository
	Close()
}

// AppRepository allows storage operation interaction for App
type AppRepository interface {
	GetApp() (*data.App, error)
	StartAppInit(data *config.SeedData) error
	CompleteAppInit() error
}

// QueueRepository allows storage operation interaction for Queue and its members
type QueueRepository interface {
	// Store creates or updates the queue together with its members; members not in the queue anymore are removed
	Store(queue *data.Queue) (*data.Queue, error)
	Get(queueID string) (*data.Queue, error)
	// GetAll returns every queue with members, ordered by priority
	GetAll() ([]*data.Queue, error)
	// SaveRotationState persists the rotation pointer, received count and member state of a queue
	SaveRotationState(queue *data.Queue) error
	Delete(queueID string) error
}

// PoolLeadRepository allows storage operation interaction for the held pool and the archive. Entries are keyed
// by lead id.
type PoolLeadRepository interface {
	Add(poolLeads ...*data.PoolLead) error
	Get(leadID string) (*data.PoolLead, error)
	// GetAll returns every entry of the pool, newest first
	GetAll(pool data.PoolKind) ([]*data.PoolLead, error)
	GetList(pool data.PoolKind, page *data.Pagination) ([]*data.PoolLead, *data.Pagination, error)
	// GetOldest returns up to limit entries of the pool, oldest first
	GetOldest(pool data.PoolKind, limit int) ([]*data.PoolLead, error)
	// Remove deletes the entries with the lead ids and returns how many were removed
	Remove(leadIDs ...string) (int64, error)
	Count(pool data.PoolKind) (int64, error)
}

// AuditRepository allows storage operation interaction for the append only audit log
type AuditRepository interface {
	Create(entries ...*data.AuditEntry) error
	GetList(queueID string, page *data.Pagination) ([]*data.AuditEntry, *data.Pagination, error)
	// GetEntriesOlderThan returns up to limit entries created before the threshold, oldest first
	GetEntriesOlderThan(threshold time.Time, limit int) ([]*data.AuditEntry, error)
	Delete(entries ...*data.AuditEntry) error
}

// RedistributionJobRepository allows storage operation interaction for RedistributionJob
type RedistributionJobRepository interface {
	// Dispatch removes the job's leads from the pool, stores the job and the audit entry atomically. If any lead
	// was already consumed nothing is written.
	Dispatch(job *data.RedistributionJob, entry *data.AuditEntry) error
	Get(jobID string) (*data.RedistributionJob, error)
	GetJobsByStatus(status data.JobStatus, limit int) ([]*data.RedistributionJob, error)
	GetList(page *data.Pagination) ([]*data.RedistributionJob, *data.Pagination, error)
	MarkJobInflight(job *data.RedistributionJob) error
	// MarkLeadAssigned records a lead of the inflight job as assigned; ErrNoRowsUpdated means the job is no longer inflight
	MarkLeadAssigned(job *data.RedistributionJob, leadID string) error
	// MarkJobCompleted stores the counts, returns the leads nobody took to the held pool unless they are pooled again
	// already and appends the audit entries
	MarkJobCompleted(job *data.RedistributionJob, reheld []*data.PoolLead, entries []*data.AuditEntry) error
	// RequeueStaleInflightJobs moves jobs inflight since before the threshold back to queued
	RequeueStaleInflightJobs(threshold time.Time) (int64, error)
}

// LockRepository allows storage operations for Lockable objects
type LockRepository interface {
	TryLock(lock *data.Lock) error
	ReleaseLock(lock *data.Lock) error
	TimeoutLocks(threshold time.Duration) error
}
