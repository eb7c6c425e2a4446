package storage

import (
	"database/sql"
	"errors"
	"time"

	"github.com/newscred/lead-router/storage/data"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoLock is returned when no lock is passed to try or release function
	ErrNoLock = errors.New("no lock provided")
	// ErrAlreadyLocked is returned when lock already exists in repo
	ErrAlreadyLocked = errors.New("lock already attained by someone else")
	lockErrorMap     = map[uint16]error{
		mysqlDuplicateKeyErrorNumber: ErrAlreadyLocked,
	}
)

// LockDBRepository represents the RDBMS implementation of LockRepository
type LockDBRepository struct {
	db *sql.DB
}

// TryLock attains the lock or returns ErrAlreadyLocked when someone else holds it
func (lockRepo *LockDBRepository) TryLock(lock *data.Lock) error {
	if lock == nil {
		return ErrNoLock
	}
	return normalizeDBError(transactionalSingleRowWriteExec(lockRepo.db, emptyOps, "INSERT INTO `lock` (lockId, attainedAt) VALUES (?, ?)",
		args2SliceFnWrapper(lock.LockID, lock.AttainedAt)), lockErrorMap)
}

// ReleaseLock releases the lock; ErrNoRowsUpdated means it was not held
func (lockRepo *LockDBRepository) ReleaseLock(lock *data.Lock) error {
	if lock == nil {
		return ErrNoLock
	}
	return transactionalSingleRowWriteExec(lockRepo.db, emptyOps, "DELETE FROM `lock` WHERE lockId = ?", args2SliceFnWrapper(lock.LockID))
}

// TimeoutLocks will force release locks that are older than the duration specified from now
func (lockRepo *LockDBRepository) TimeoutLocks(threshold time.Duration) error {
	return transactionalWrites(lockRepo.db, func(tx *sql.Tx) error {
		return inTransactionExec(tx, emptyOps, "DELETE FROM `lock` WHERE attainedAt < ?", args2SliceFnWrapper(time.Now().Add(-1*threshold)), int64(0))
	})
}

// NewLockRepository creates a new instance of LockRepository
func NewLockRepository(db *sql.DB) LockRepository {
	panicIfNoDBConnectionPool(db)
	return &LockDBRepository{db: db}
}

// WithLock runs operation only if the lockable could be locked and releases the lock afterwards. It returns
// ErrAlreadyLocked without running operation when someone else holds the lock.
func WithLock(lockRepo LockRepository, lockable data.Lockable, operation func() error) error {
	lock, err := data.NewLock(lockable)
	if err != nil {
		return err
	}
	if err = lockRepo.TryLock(lock); err != nil {
		return err
	}
	defer func() {
		if releaseErr := lockRepo.ReleaseLock(lock); releaseErr != nil {
			log.Error().Err(releaseErr).Str("lockId", lock.LockID).Msg("could not release lock")
		}
	}()
	return operation()
}
