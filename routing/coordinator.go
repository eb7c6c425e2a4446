package routing

import (
	"errors"
	"sync"
	"time"

	"github.com/newscred/lead-router/storage/data"
)

var (
	// ErrQueueNotFound is returned when an operation names a queue the coordinator does not know
	ErrQueueNotFound = errors.New("queue not found")
)

// StateStore persists a queue's rotation state and members. It is called while the queue is locked; when
// it fails the in memory change is rolled back.
type StateStore interface {
	SaveRotationState(queue *data.Queue) error
}

type queueSlot struct {
	mutex sync.Mutex
	queue *data.Queue
}

// Coordinator owns the live rotation state of every queue. Each queue is a single writer resource:
// assignment, presence and reordering of one queue are serialized by that queue's lock while different
// queues proceed in parallel. Returned queues and members are copies.
type Coordinator struct {
	mutex sync.RWMutex
	slots map[string]*queueSlot
	order []string
	store StateStore
}

// NewCoordinator creates a coordinator owning copies of the queues; store may be nil to keep state in memory only
func NewCoordinator(queues []*data.Queue, store StateStore) *Coordinator {
	coordinator := &Coordinator{store: store}
	coordinator.Replace(queues)
	return coordinator
}

// Replace swaps the whole queue set, e.g. after configuration reload
func (coordinator *Coordinator) Replace(queues []*data.Queue) {
	slots := make(map[string]*queueSlot, len(queues))
	order := make([]string, 0, len(queues))
	for _, queue := range queues {
		if queue == nil {
			continue
		}
		if _, ok := slots[queue.QueueID]; !ok {
			order = append(order, queue.QueueID)
		}
		slots[queue.QueueID] = &queueSlot{queue: queue.Clone()}
	}
	coordinator.mutex.Lock()
	defer coordinator.mutex.Unlock()
	coordinator.slots = slots
	coordinator.order = order
}

// Queues returns copies of all queues in registration order
func (coordinator *Coordinator) Queues() []*data.Queue {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	queues := make([]*data.Queue, 0, len(coordinator.order))
	for _, queueID := range coordinator.order {
		slot := coordinator.slots[queueID]
		slot.mutex.Lock()
		queues = append(queues, slot.queue.Clone())
		slot.mutex.Unlock()
	}
	return queues
}

// Queue returns a copy of the queue
func (coordinator *Coordinator) Queue(queueID string) (*data.Queue, error) {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	slot, ok := coordinator.slots[queueID]
	if !ok {
		return nil, ErrQueueNotFound
	}
	slot.mutex.Lock()
	defer slot.mutex.Unlock()
	return slot.queue.Clone(), nil
}

// Predict returns a copy of the queue the lead would match right now without changing any state
func (coordinator *Coordinator) Predict(lead *data.Lead) *data.Queue {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	matched := Match(lead, coordinator.liveQueues())
	if matched == nil {
		return nil
	}
	return coordinator.snapshot(matched.QueueID)
}

// Distribute matches the lead against all queues and assigns it within the matched queue
func (coordinator *Coordinator) Distribute(lead *data.Lead, now time.Time) (Outcome, error) {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	matched := Match(lead, coordinator.liveQueues())
	if matched == nil {
		return Outcome{Reason: data.ReasonNoMatchingQueue}, nil
	}
	return coordinator.assign(matched.QueueID, now)
}

// DistributeAfter retries the lead in the next matching queue ranked after queueID
func (coordinator *Coordinator) DistributeAfter(lead *data.Lead, queueID string, now time.Time) (Outcome, error) {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	matched := MatchAfter(lead, coordinator.liveQueues(), queueID)
	if matched == nil {
		return Outcome{Reason: data.ReasonNoMatchingQueue}, nil
	}
	return coordinator.assign(matched.QueueID, now)
}

// DistributeTo assigns the lead within the named queue without evaluating its rules. A disabled queue
// takes no leads.
func (coordinator *Coordinator) DistributeTo(queueID string, now time.Time) (Outcome, error) {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	slot, ok := coordinator.slots[queueID]
	if !ok {
		return Outcome{}, ErrQueueNotFound
	}
	if !slot.current().Enabled {
		return Outcome{Reason: data.ReasonNoMatchingQueue}, nil
	}
	return coordinator.assign(queueID, now)
}

// SetPresence records a check-in or check-out of a member
func (coordinator *Coordinator) SetPresence(queueID, memberID string, available bool, now time.Time) (*data.Member, error) {
	var result *data.Member
	err := coordinator.withQueue(queueID, func(queue *data.Queue) error {
		member := queue.FindMember(memberID)
		if member == nil {
			return ErrMemberNotFound
		}
		member.AvailableNow = available
		if available {
			member.LastCheckIn = now
		}
		member.UpdatedAt = now
		result = member.Clone()
		return nil
	})
	return result, err
}

// Reorder rewrites the rotation so the listed members come first in the given order
func (coordinator *Coordinator) Reorder(queueID string, memberIDs []string) (*data.Queue, error) {
	var result *data.Queue
	err := coordinator.withQueue(queueID, func(queue *data.Queue) error {
		ranking, err := RankExplicit(queue.Members, memberIDs)
		if err != nil {
			return err
		}
		ApplyRanking(queue.Members, ranking)
		result = queue.Clone()
		return nil
	})
	return result, err
}

func (coordinator *Coordinator) withQueue(queueID string, operation func(*data.Queue) error) error {
	coordinator.mutex.RLock()
	defer coordinator.mutex.RUnlock()
	slot, ok := coordinator.slots[queueID]
	if !ok {
		return ErrQueueNotFound
	}
	slot.mutex.Lock()
	defer slot.mutex.Unlock()
	working := slot.queue.Clone()
	if err := operation(working); err != nil {
		return err
	}
	if err := coordinator.save(working); err != nil {
		return err
	}
	slot.queue = working
	return nil
}

func (coordinator *Coordinator) save(queue *data.Queue) error {
	if coordinator.store == nil {
		return nil
	}
	return coordinator.store.SaveRotationState(queue)
}

// liveQueues exposes the owned queues for matching. A slot's queue is swapped on change and never mutated
// once published, so reading it after releasing the slot lock is safe. Callers must hold the coordinator
// read lock.
func (coordinator *Coordinator) liveQueues() []*data.Queue {
	queues := make([]*data.Queue, 0, len(coordinator.order))
	for _, queueID := range coordinator.order {
		queues = append(queues, coordinator.slots[queueID].current())
	}
	return queues
}

func (slot *queueSlot) current() *data.Queue {
	slot.mutex.Lock()
	defer slot.mutex.Unlock()
	return slot.queue
}

func (coordinator *Coordinator) snapshot(queueID string) *data.Queue {
	slot := coordinator.slots[queueID]
	slot.mutex.Lock()
	defer slot.mutex.Unlock()
	return slot.queue.Clone()
}

func (coordinator *Coordinator) assign(queueID string, now time.Time) (Outcome, error) {
	slot := coordinator.slots[queueID]
	slot.mutex.Lock()
	defer slot.mutex.Unlock()
	working := slot.queue.Clone()
	outcome := Assign(working, now)
	if outcome.Assigned() {
		if err := coordinator.save(working); err != nil {
			return Outcome{}, err
		}
		slot.queue = working
	}
	outcome.Queue = working.Clone()
	if outcome.Member != nil {
		outcome.Member = outcome.Queue.FindMember(outcome.Member.MemberID)
	}
	return outcome, nil
}
