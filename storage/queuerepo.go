package storage

import (
	"database/sql"
	"time"

	"github.com/newscred/lead-router/storage/data"
)

const (
	queueColumns       = "id, queueId, name, priority, rules, nextMemberId, enabled, checkinWindow, advancedConfig, receivedCount, createdAt, updatedAt"
	memberColumns      = "id, memberId, queueId, name, active, availableNow, rotationOrder, lastCheckIn, openLeadLimit, createdAt, updatedAt"
	allQueuesCacheKey  = ""
	insertMemberPrefix = "INSERT INTO member (" + memberColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
)

// PseudoQueueRepository is the undecorated queue repository
type PseudoQueueRepository QueueRepository

// QueueDBRepository is the RDBMS implementation of QueueRepository
type QueueDBRepository struct {
	db *sql.DB
}

// NewQueueRepository creates the RDBMS queue repository
func NewQueueRepository(db *sql.DB) PseudoQueueRepository {
	panicIfNoDBConnectionPool(db)
	return &QueueDBRepository{db: db}
}

// Store creates or updates the queue and replaces its members
func (repo *QueueDBRepository) Store(queue *data.Queue) (*data.Queue, error) {
	queue.QuickFix()
	if !queue.IsInValidState() {
		return queue, ErrInvalidStateToSave
	}
	existing, err := repo.Get(queue.QueueID)
	ops := make([]func(tx *sql.Tx) error, 0, len(queue.Members)+2)
	if err == nil {
		queue.ID = existing.ID
		queue.CreatedAt = existing.CreatedAt
		queue.UpdatedAt = time.Now()
		ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps,
			"UPDATE queue SET name = ?, priority = ?, rules = ?, nextMemberId = ?, enabled = ?, checkinWindow = ?, advancedConfig = ?, receivedCount = ?, updatedAt = ? WHERE queueId = ?",
			args2SliceFnWrapper(queue.Name, queue.Priority, queue.Rules, queue.NextMemberID, queue.Enabled, queue.CheckinWindow, queue.AdvancedConfig,
				queue.ReceivedCount, queue.UpdatedAt, queue.QueueID)))
	} else if err == sql.ErrNoRows {
		ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps, "INSERT INTO queue ("+queueColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			args2SliceFnWrapper(queue.ID, queue.QueueID, queue.Name, queue.Priority, queue.Rules, queue.NextMemberID, queue.Enabled, queue.CheckinWindow,
				queue.AdvancedConfig, queue.ReceivedCount, queue.CreatedAt, queue.UpdatedAt)))
	} else {
		return queue, err
	}
	ops = append(ops, func(tx *sql.Tx) error {
		return inTransactionExec(tx, emptyOps, "DELETE FROM member WHERE queueId = ?", args2SliceFnWrapper(queue.QueueID), int64(0))
	})
	for _, member := range queue.Members {
		ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps, insertMemberPrefix, memberInsertArgs(member)))
	}
	return queue, transactionalWrites(repo.db, ops...)
}

func memberInsertArgs(member *data.Member) func() []interface{} {
	return args2SliceFnWrapper(member.ID, member.MemberID, member.QueueID, member.Name, member.Active, member.AvailableNow, member.RotationOrder,
		nullableTime(member.LastCheckIn), member.OpenLeadLimit, member.CreatedAt, member.UpdatedAt)
}

func nullableTime(value time.Time) sql.NullTime {
	return sql.NullTime{Time: value, Valid: !value.IsZero()}
}

// SaveRotationState persists the rotation pointer, the received count and every member's presence and order
func (repo *QueueDBRepository) SaveRotationState(queue *data.Queue) error {
	now := time.Now()
	ops := make([]func(tx *sql.Tx) error, 0, len(queue.Members)+1)
	ops = append(ops, getTxWrapperForSingleWriteQuery(emptyOps, "UPDATE queue SET nextMemberId = ?, receivedCount = ?, updatedAt = ? WHERE queueId = ?",
		args2SliceFnWrapper(queue.NextMemberID, queue.ReceivedCount, now, queue.QueueID)))
	for _, member := range queue.Members {
		member := member
		ops = append(ops, func(tx *sql.Tx) error {
			return inTransactionExec(tx, emptyOps, "UPDATE member SET active = ?, availableNow = ?, rotationOrder = ?, lastCheckIn = ?, updatedAt = ? WHERE queueId = ? AND memberId = ?",
				args2SliceFnWrapper(member.Active, member.AvailableNow, member.RotationOrder, nullableTime(member.LastCheckIn), now, queue.QueueID, member.MemberID), int64(0))
		})
	}
	return transactionalWrites(repo.db, ops...)
}

// Get retrieves the queue with its members ordered by rotation
func (repo *QueueDBRepository) Get(queueID string) (*data.Queue, error) {
	queue := &data.Queue{}
	err := querySingleRow(repo.db, "SELECT "+queueColumns+" FROM queue WHERE queueId = ?", args2SliceFnWrapper(queueID), queueScanArgs(queue))
	if err != nil {
		return queue, err
	}
	members, err := repo.getMembers("WHERE queueId = ? ORDER BY rotationOrder, memberId", queueID)
	queue.Members = members
	return queue, err
}

// GetAll retrieves every queue ordered by priority with its members
func (repo *QueueDBRepository) GetAll() ([]*data.Queue, error) {
	queues := make([]*data.Queue, 0)
	scanArgs := func() []interface{} {
		queue := &data.Queue{Members: make([]*data.Member, 0)}
		queues = append(queues, queue)
		return queueScanArgs(queue)()
	}
	if err := queryRows(repo.db, "SELECT "+queueColumns+" FROM queue ORDER BY priority, createdAt", nilArgs, scanArgs); err != nil {
		return queues, err
	}
	members, err := repo.getMembers("ORDER BY queueId, rotationOrder, memberId")
	if err != nil {
		return queues, err
	}
	byQueue := make(map[string]*data.Queue, len(queues))
	for _, queue := range queues {
		byQueue[queue.QueueID] = queue
	}
	for _, member := range members {
		if queue, ok := byQueue[member.QueueID]; ok {
			queue.Members = append(queue.Members, member)
		}
	}
	return queues, nil
}

// Delete removes the queue and its members
func (repo *QueueDBRepository) Delete(queueID string) error {
	return transactionalWrites(repo.db, func(tx *sql.Tx) error {
		return inTransactionExec(tx, emptyOps, "DELETE FROM member WHERE queueId = ?", args2SliceFnWrapper(queueID), int64(0))
	}, getTxWrapperForSingleWriteQuery(emptyOps, "DELETE FROM queue WHERE queueId = ?", args2SliceFnWrapper(queueID)))
}

func (repo *QueueDBRepository) getMembers(clause string, args ...interface{}) ([]*data.Member, error) {
	members := make([]*data.Member, 0)
	scanArgs := func() []interface{} {
		member := &data.Member{}
		members = append(members, member)
		lastCheckIn := &nullTimeTarget{target: &member.LastCheckIn}
		return []interface{}{&member.ID, &member.MemberID, &member.QueueID, &member.Name, &member.Active, &member.AvailableNow,
			&member.RotationOrder, lastCheckIn, &member.OpenLeadLimit, &member.CreatedAt, &member.UpdatedAt}
	}
	err := queryRows(repo.db, "SELECT "+memberColumns+" FROM member "+clause, args2SliceFnWrapper(args...), scanArgs)
	return members, err
}

func queueScanArgs(queue *data.Queue) func() []interface{} {
	return args2SliceFnWrapper(&queue.ID, &queue.QueueID, &queue.Name, &queue.Priority, &queue.Rules, &queue.NextMemberID, &queue.Enabled,
		&queue.CheckinWindow, &queue.AdvancedConfig, &queue.ReceivedCount, &queue.CreatedAt, &queue.UpdatedAt)
}

// nullTimeTarget scans a nullable time column into a plain time, NULL becoming the zero time
type nullTimeTarget struct {
	target *time.Time
}

func (scanner *nullTimeTarget) Scan(value interface{}) error {
	nullTime := sql.NullTime{}
	if err := nullTime.Scan(value); err != nil {
		return err
	}
	*scanner.target = time.Time{}
	if nullTime.Valid {
		*scanner.target = nullTime.Time
	}
	return nil
}

// CachedQueueRepository decorates a QueueRepository caching reads for a TTL; every write invalidates the cache
type CachedQueueRepository struct {
	delegate PseudoQueueRepository
	cache    *MemoryCache[string, []*data.Queue]
}

// NewCachedQueueRepository creates the caching decorator
func NewCachedQueueRepository(delegate PseudoQueueRepository, ttl QueueCacheTTL) QueueRepository {
	return &CachedQueueRepository{delegate: delegate, cache: NewMemoryCache[string, []*data.Queue](time.Duration(ttl))}
}

// Store delegates and invalidates the cache
func (repo *CachedQueueRepository) Store(queue *data.Queue) (*data.Queue, error) {
	defer repo.cache.Purge()
	return repo.delegate.Store(queue)
}

// Get returns a copy of the cached queue, loading it on a miss
func (repo *CachedQueueRepository) Get(queueID string) (*data.Queue, error) {
	if cached, ok := repo.cache.Get(queueID); ok && len(cached) == 1 {
		return cached[0].Clone(), nil
	}
	queue, err := repo.delegate.Get(queueID)
	if err == nil {
		repo.cache.Set(queueID, []*data.Queue{queue.Clone()})
	}
	return queue, err
}

// GetAll returns copies of the cached queues, loading them on a miss
func (repo *CachedQueueRepository) GetAll() ([]*data.Queue, error) {
	if cached, ok := repo.cache.Get(allQueuesCacheKey); ok {
		return cloneQueues(cached), nil
	}
	queues, err := repo.delegate.GetAll()
	if err == nil {
		repo.cache.Set(allQueuesCacheKey, cloneQueues(queues))
	}
	return queues, err
}

// SaveRotationState delegates and invalidates the cache
func (repo *CachedQueueRepository) SaveRotationState(queue *data.Queue) error {
	defer repo.cache.Purge()
	return repo.delegate.SaveRotationState(queue)
}

// Delete delegates and invalidates the cache
func (repo *CachedQueueRepository) Delete(queueID string) error {
	defer repo.cache.Purge()
	return repo.delegate.Delete(queueID)
}

// Close stops the cache sweeper
func (repo *CachedQueueRepository) Close() {
	repo.cache.Close()
}

func cloneQueues(queues []*data.Queue) []*data.Queue {
	clones := make([]*data.Queue, len(queues))
	for index, queue := range queues {
		clones[index] = queue.Clone()
	}
	return clones
}
