package data

import (
	"errors"
	"time"
)

var (
	// ErrLockableNil is returned by NewLock when there is nothing to lock
	ErrLockableNil = errors.New("lockable can not be nil")
)

// Lockable is anything a router instance takes exclusively across the cluster: a pool lead ("pl-" + lead id)
// while it is retried or a redistribution job ("rj-" + job id) while it runs
type Lockable interface {
	GetLockID() string
}

// Lock is the row held while the lockable is being worked on
type Lock struct {
	LockID     string
	AttainedAt time.Time
}

// NewLock stamps a lock for the lockable at the current time
func NewLock(lockable Lockable) (*Lock, error) {
	if lockable == nil {
		return nil, ErrLockableNil
	}
	return &Lock{LockID: lockable.GetLockID(), AttainedAt: time.Now()}, nil
}
