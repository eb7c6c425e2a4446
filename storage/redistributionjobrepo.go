package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/newscred/lead-router/storage/data"
)

const (
	jobColumns = "id, status, statusChangedAt, totalLeads, destination, requestedBy, filtersUsed, leads, assignedLeadIds, assignedCount, reheldCount, createdAt, updatedAt"
)

var (
	// ErrPoolLeadConsumed is returned when a lead of a job was removed from the pool by someone else first
	ErrPoolLeadConsumed = errors.New("pool lead already consumed")
)

// RedistributionJobDBRepository is the RDBMS implementation of RedistributionJobRepository
type RedistributionJobDBRepository struct {
	db *sql.DB
}

// NewRedistributionJobRepository creates the RDBMS job repository
func NewRedistributionJobRepository(db *sql.DB) RedistributionJobRepository {
	panicIfNoDBConnectionPool(db)
	return &RedistributionJobDBRepository{db: db}
}

// Dispatch takes the job's leads out of the pool and stores the job and its audit entry in one transaction
func (repo *RedistributionJobDBRepository) Dispatch(job *data.RedistributionJob, entry *data.AuditEntry) error {
	job.QuickFix()
	if !job.IsInValidState() {
		return ErrInvalidStateToSave
	}
	auditOps, err := auditInsertOps([]*data.AuditEntry{entry})
	if err != nil {
		return err
	}
	ops := make([]func(tx *sql.Tx) error, 0, len(job.Leads)+2)
	for _, poolLead := range job.Leads {
		ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps, "DELETE FROM pool_lead WHERE leadId = ?", args2SliceFnWrapper(poolLead.LeadID())))
	}
	ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps, "INSERT INTO redistribution_job ("+jobColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		args2SliceFnWrapper(job.ID, job.Status, job.StatusChangedAt, job.TotalLeads, job.Destination, job.RequestedBy, job.FiltersUsed, job.Leads,
			job.AssignedLeadIDs, job.AssignedCount, job.ReheldCount, job.CreatedAt, job.UpdatedAt)))
	ops = append(ops, auditOps...)
	err = transactionalWrites(repo.db, ops...)
	if err == ErrNoRowsUpdated {
		err = ErrPoolLeadConsumed
	}
	return err
}

// Get retrieves the job with its leads
func (repo *RedistributionJobDBRepository) Get(jobID string) (*data.RedistributionJob, error) {
	job := &data.RedistributionJob{}
	err := querySingleRow(repo.db, "SELECT "+jobColumns+" FROM redistribution_job WHERE id = ?", args2SliceFnWrapper(jobID), jobScanArgs(job))
	return job, err
}

// GetJobsByStatus retrieves up to limit jobs in the status, longest in the status first
func (repo *RedistributionJobDBRepository) GetJobsByStatus(status data.JobStatus, limit int) ([]*data.RedistributionJob, error) {
	return repo.query("SELECT "+jobColumns+" FROM redistribution_job WHERE status = ? ORDER BY statusChangedAt asc, id asc LIMIT ?", status, limit)
}

// GetList retrieves a page of jobs newest first
func (repo *RedistributionJobDBRepository) GetList(page *data.Pagination) ([]*data.RedistributionJob, *data.Pagination, error) {
	pagination := &data.Pagination{}
	if isPaginationInvalid(page) {
		return make([]*data.RedistributionJob, 0), pagination, ErrPaginationDeadlock
	}
	jobs, err := repo.query("SELECT "+jobColumns+" FROM redistribution_job"+getPaginationQueryFragment(page, false), getPaginationQueryArgs(page)...)
	if err == nil && len(jobs) > 0 {
		pagination = data.NewPagination(jobs[len(jobs)-1], jobs[0])
	}
	return jobs, pagination, err
}

// MarkJobInflight moves a queued job to inflight; ErrNoRowsUpdated means another runner took it
func (repo *RedistributionJobDBRepository) MarkJobInflight(job *data.RedistributionJob) error {
	currentTime := time.Now()
	err := transactionalSingleRowWriteExec(repo.db, emptyOps, "UPDATE redistribution_job SET status = ?, statusChangedAt = ?, updatedAt = ? WHERE id = ? AND status = ?",
		args2SliceFnWrapper(data.JobInflight, currentTime, currentTime, job.ID, data.JobQueued))
	if err == nil {
		job.Status = data.JobInflight
		job.StatusChangedAt = currentTime
		job.UpdatedAt = currentTime
	}
	return err
}

// MarkLeadAssigned records that a member took the lead of an inflight job. It also refreshes statusChangedAt so a job
// making progress is never taken for abandoned.
func (repo *RedistributionJobDBRepository) MarkLeadAssigned(job *data.RedistributionJob, leadID string) error {
	currentTime := time.Now()
	assigned := append(append(data.LeadIDs{}, job.AssignedLeadIDs...), leadID)
	err := transactionalSingleRowWriteExec(repo.db, emptyOps,
		"UPDATE redistribution_job SET assignedLeadIds = ?, assignedCount = ?, statusChangedAt = ?, updatedAt = ? WHERE id = ? AND status = ?",
		args2SliceFnWrapper(assigned, len(assigned), currentTime, currentTime, job.ID, data.JobInflight))
	if err == nil {
		job.AssignedLeadIDs = assigned
		job.AssignedCount = len(assigned)
		job.StatusChangedAt = currentTime
		job.UpdatedAt = currentTime
	}
	return err
}

// MarkJobCompleted completes an inflight job, puts the leads nobody took back in the held pool and appends the audit entries
func (repo *RedistributionJobDBRepository) MarkJobCompleted(job *data.RedistributionJob, reheld []*data.PoolLead, entries []*data.AuditEntry) error {
	currentTime := time.Now()
	auditOps, err := auditInsertOps(entries)
	if err != nil {
		return err
	}
	ops := make([]func(tx *sql.Tx) error, 0, len(reheld)+len(auditOps)+1)
	ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps,
		"UPDATE redistribution_job SET status = ?, statusChangedAt = ?, updatedAt = ?, assignedCount = ?, reheldCount = ? WHERE id = ? AND status = ?",
		args2SliceFnWrapper(data.JobCompleted, currentTime, currentTime, job.AssignedCount, job.ReheldCount, job.ID, data.JobInflight)))
	for _, poolLead := range reheld {
		poolLead.QuickFix()
		if !poolLead.IsInValidState() {
			return ErrInvalidStateToSave
		}
		ops = append(ops, insertPoolLeadIfAbsent(poolLead))
	}
	ops = append(ops, auditOps...)
	err = normalizeDBError(transactionalWrites(repo.db, ops...), poolLeadErrorMap)
	if err == nil {
		job.Status = data.JobCompleted
		job.StatusChangedAt = currentTime
		job.UpdatedAt = currentTime
	}
	return err
}

// insertPoolLeadIfAbsent leaves a lead already pooled by a newer arrival as it is
func insertPoolLeadIfAbsent(poolLead *data.PoolLead) func(tx *sql.Tx) error {
	return func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRow("SELECT COUNT(*) FROM pool_lead WHERE leadId = ?", poolLead.LeadID()).Scan(&count); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return inTransactionExec(tx, emptyOps, insertPoolLead, poolLeadInsertArgs(poolLead), int64(1))
	}
}

// RequeueStaleInflightJobs returns jobs stuck inflight since before the threshold to queued
func (repo *RedistributionJobDBRepository) RequeueStaleInflightJobs(threshold time.Time) (int64, error) {
	var requeued int64
	currentTime := time.Now()
	err := transactionalWrites(repo.db, func(tx *sql.Tx) error {
		result, err := tx.Exec("UPDATE redistribution_job SET status = ?, statusChangedAt = ?, updatedAt = ? WHERE status = ? AND statusChangedAt < ?",
			data.JobQueued, currentTime, currentTime, data.JobInflight, threshold)
		if err == nil {
			requeued, err = result.RowsAffected()
		}
		return err
	})
	return requeued, err
}

func (repo *RedistributionJobDBRepository) query(query string, args ...interface{}) ([]*data.RedistributionJob, error) {
	jobs := make([]*data.RedistributionJob, 0)
	scanArgs := func() []interface{} {
		job := &data.RedistributionJob{}
		jobs = append(jobs, job)
		return jobScanArgs(job)()
	}
	err := queryRows(repo.db, query, args2SliceFnWrapper(args...), scanArgs)
	return jobs, err
}

func jobScanArgs(job *data.RedistributionJob) func() []interface{} {
	return args2SliceFnWrapper(&job.ID, &job.Status, &job.StatusChangedAt, &job.TotalLeads, &job.Destination, &job.RequestedBy, &job.FiltersUsed,
		&job.Leads, &job.AssignedLeadIDs, &job.AssignedCount, &job.ReheldCount, &job.CreatedAt, &job.UpdatedAt)
}
