package storage

import (
	"database/sql"
	"time"

	"github.com/newscred/lead-router/storage/data"
)

const (
	auditColumns = "id, type, actor, timestamp, queueId, leadId, memberId, details, createdAt, updatedAt"
)

// AuditDBRepository is the RDBMS implementation of AuditRepository; entries are only ever inserted and pruned
type AuditDBRepository struct {
	db *sql.DB
}

// NewAuditRepository creates the RDBMS audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	panicIfNoDBConnectionPool(db)
	return &AuditDBRepository{db: db}
}

// Create appends all entries or none of them
func (repo *AuditDBRepository) Create(entries ...*data.AuditEntry) error {
	ops, err := auditInsertOps(entries)
	if err != nil || len(ops) == 0 {
		return err
	}
	return transactionalWrites(repo.db, ops...)
}

func auditInsertOps(entries []*data.AuditEntry) ([]func(tx *sql.Tx) error, error) {
	ops := make([]func(tx *sql.Tx) error, 0, len(entries))
	for _, entry := range entries {
		entry.QuickFix()
		if !entry.IsInValidState() {
			return nil, ErrInvalidStateToSave
		}
		ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps, "INSERT INTO audit_entry ("+auditColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			args2SliceFnWrapper(entry.ID, entry.Type, entry.Actor, entry.Timestamp, entry.QueueID, entry.LeadID, entry.MemberID, entry.Details,
				entry.CreatedAt, entry.UpdatedAt)))
	}
	return ops, nil
}

// GetList retrieves a page of the audit log newest first, optionally of one queue
func (repo *AuditDBRepository) GetList(queueID string, page *data.Pagination) ([]*data.AuditEntry, *data.Pagination, error) {
	pagination := &data.Pagination{}
	if isPaginationInvalid(page) {
		return make([]*data.AuditEntry, 0), pagination, ErrPaginationDeadlock
	}
	query := "SELECT " + auditColumns + " FROM audit_entry"
	args := make([]interface{}, 0, 5)
	if len(queueID) > 0 {
		query = query + " WHERE queueId = ?" + getPaginationQueryFragment(page, true)
		args = append(args, queueID)
	} else {
		query = query + getPaginationQueryFragment(page, false)
	}
	entries, err := repo.query(query, appendWithPaginationArgs(page, args...)...)
	if err == nil && len(entries) > 0 {
		pagination = data.NewPagination(entries[len(entries)-1], entries[0])
	}
	return entries, pagination, err
}

// GetEntriesOlderThan retrieves up to limit entries created before threshold, oldest first
func (repo *AuditDBRepository) GetEntriesOlderThan(threshold time.Time, limit int) ([]*data.AuditEntry, error) {
	return repo.query("SELECT "+auditColumns+" FROM audit_entry WHERE createdAt < ? ORDER BY createdAt asc, id asc LIMIT ?", threshold, limit)
}

// Delete removes pruned entries
func (repo *AuditDBRepository) Delete(entries ...*data.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(entries))
	for _, entry := range entries {
		args = append(args, entry.ID)
	}
	return transactionalWrites(repo.db, func(tx *sql.Tx) error {
		return inTransactionExec(tx, emptyOps, "DELETE FROM audit_entry WHERE id IN "+inClause(len(args)), args2SliceFnWrapper(args...), int64(len(args)))
	})
}

func (repo *AuditDBRepository) query(query string, args ...interface{}) ([]*data.AuditEntry, error) {
	entries := make([]*data.AuditEntry, 0)
	scanArgs := func() []interface{} {
		entry := &data.AuditEntry{}
		entries = append(entries, entry)
		return []interface{}{&entry.ID, &entry.Type, &entry.Actor, &entry.Timestamp, &entry.QueueID, &entry.LeadID, &entry.MemberID, &entry.Details,
			&entry.CreatedAt, &entry.UpdatedAt}
	}
	err := queryRows(repo.db, query, args2SliceFnWrapper(args...), scanArgs)
	return entries, err
}
