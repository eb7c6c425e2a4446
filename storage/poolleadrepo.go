package storage

import (
	"database/sql"
	"errors"

	"github.com/newscred/lead-router/storage/data"
)

const (
	poolLeadColumns = "id, leadId, attributes, pool, reason, matchedQueueId, previousQueueId, owner, status, tags, batchId, createdAt, updatedAt"
	insertPoolLead  = "INSERT INTO pool_lead (" + poolLeadColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
)

var (
	// ErrDuplicatePoolLead is returned when a lead is already in the held pool or the archive
	ErrDuplicatePoolLead = errors.New("lead already pooled")
	poolLeadErrorMap     = map[uint16]error{
		mysqlDuplicateKeyErrorNumber: ErrDuplicatePoolLead,
	}
)

// PoolLeadDBRepository is the RDBMS implementation of PoolLeadRepository
type PoolLeadDBRepository struct {
	db *sql.DB
}

// NewPoolLeadRepository creates the RDBMS pool repository
func NewPoolLeadRepository(db *sql.DB) PoolLeadRepository {
	panicIfNoDBConnectionPool(db)
	return &PoolLeadDBRepository{db: db}
}

// Add inserts all entries or none of them
func (repo *PoolLeadDBRepository) Add(poolLeads ...*data.PoolLead) error {
	ops := make([]func(tx *sql.Tx) error, 0, len(poolLeads))
	for _, poolLead := range poolLeads {
		poolLead.QuickFix()
		if !poolLead.IsInValidState() {
			return ErrInvalidStateToSave
		}
		ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps, insertPoolLead, poolLeadInsertArgs(poolLead)))
	}
	if len(ops) == 0 {
		return nil
	}
	return normalizeDBError(transactionalWrites(repo.db, ops...), poolLeadErrorMap)
}

func poolLeadInsertArgs(poolLead *data.PoolLead) func() []interface{} {
	return args2SliceFnWrapper(poolLead.ID, poolLead.Lead.ID, poolLead.Lead.Attributes, poolLead.Pool, poolLead.Reason, poolLead.MatchedQueueID,
		poolLead.PreviousQueueID, poolLead.Owner, poolLead.Status, poolLead.Tags, poolLead.BatchID, poolLead.CreatedAt, poolLead.UpdatedAt)
}

// Get retrieves the entry of the lead
func (repo *PoolLeadDBRepository) Get(leadID string) (*data.PoolLead, error) {
	poolLead := &data.PoolLead{}
	err := querySingleRow(repo.db, "SELECT "+poolLeadColumns+" FROM pool_lead WHERE leadId = ?", args2SliceFnWrapper(leadID), poolLeadScanArgs(poolLead))
	return poolLead, err
}

// GetAll retrieves the whole pool newest first
func (repo *PoolLeadDBRepository) GetAll(pool data.PoolKind) ([]*data.PoolLead, error) {
	return repo.query("SELECT "+poolLeadColumns+" FROM pool_lead WHERE pool = ? "+string(baseOrderByClause), pool)
}

// GetOldest retrieves up to limit entries oldest first
func (repo *PoolLeadDBRepository) GetOldest(pool data.PoolKind, limit int) ([]*data.PoolLead, error) {
	return repo.query("SELECT "+poolLeadColumns+" FROM pool_lead WHERE pool = ? ORDER BY createdAt asc, id asc LIMIT ?", pool, limit)
}

// GetList retrieves a page of the pool
func (repo *PoolLeadDBRepository) GetList(pool data.PoolKind, page *data.Pagination) ([]*data.PoolLead, *data.Pagination, error) {
	pagination := &data.Pagination{}
	if isPaginationInvalid(page) {
		return make([]*data.PoolLead, 0), pagination, ErrPaginationDeadlock
	}
	poolLeads, err := repo.query("SELECT "+poolLeadColumns+" FROM pool_lead WHERE pool = ?"+getPaginationQueryFragment(page, true),
		appendWithPaginationArgs(page, pool)...)
	if err == nil && len(poolLeads) > 0 {
		pagination = data.NewPagination(poolLeads[len(poolLeads)-1], poolLeads[0])
	}
	return poolLeads, pagination, err
}

// Remove deletes the entries of the leads; ids not pooled are ignored
func (repo *PoolLeadDBRepository) Remove(leadIDs ...string) (int64, error) {
	if len(leadIDs) == 0 {
		return 0, nil
	}
	args := make([]interface{}, 0, len(leadIDs))
	for _, leadID := range leadIDs {
		args = append(args, leadID)
	}
	var removed int64
	err := transactionalWrites(repo.db, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM pool_lead WHERE leadId IN "+inClause(len(args)), args...)
		if err == nil {
			removed, err = result.RowsAffected()
		}
		return err
	})
	return removed, err
}

// Count returns the size of the pool
func (repo *PoolLeadDBRepository) Count(pool data.PoolKind) (int64, error) {
	var count int64
	err := querySingleRow(repo.db, "SELECT COUNT(*) FROM pool_lead WHERE pool = ?", args2SliceFnWrapper(pool), args2SliceFnWrapper(&count))
	return count, err
}

func (repo *PoolLeadDBRepository) query(query string, args ...interface{}) ([]*data.PoolLead, error) {
	poolLeads := make([]*data.PoolLead, 0)
	scanArgs := func() []interface{} {
		poolLead := &data.PoolLead{}
		poolLeads = append(poolLeads, poolLead)
		return poolLeadScanArgs(poolLead)()
	}
	err := queryRows(repo.db, query, args2SliceFnWrapper(args...), scanArgs)
	return poolLeads, err
}

func poolLeadScanArgs(poolLead *data.PoolLead) func() []interface{} {
	poolLead.Lead = &data.Lead{}
	return args2SliceFnWrapper(&poolLead.ID, &poolLead.Lead.ID, &poolLead.Lead.Attributes, &poolLead.Pool, &poolLead.Reason, &poolLead.MatchedQueueID,
		&poolLead.PreviousQueueID, &poolLead.Owner, &poolLead.Status, &poolLead.Tags, &poolLead.BatchID, &poolLead.CreatedAt, &poolLead.UpdatedAt)
}
