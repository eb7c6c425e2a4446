package routing

import (
	"time"

	"github.com/newscred/lead-router/storage/data"
)

// Outcome is the result of distributing one lead. Queue is nil when nothing matched; Held is set when a
// queue matched but nobody could take the lead.
type Outcome struct {
	Queue  *data.Queue
	Member *data.Member
	Held   bool
	Reason string
}

// Assigned returns true when a member was picked
func (outcome Outcome) Assigned() bool {
	return outcome.Member != nil
}

// Distribute matches the lead to a queue and assigns it to the next member in rotation. Only the
// matched queue and its members are mutated.
func Distribute(lead *data.Lead, queues []*data.Queue, now time.Time) Outcome {
	queue := Match(lead, queues)
	if queue == nil {
		return Outcome{Reason: data.ReasonNoMatchingQueue}
	}
	return Assign(queue, now)
}

// Assign picks the next member of the queue, advances the rotation pointer and counters and, unless the
// queue preserves positions, sends unavailable members to the back of the rotation.
func Assign(queue *data.Queue, now time.Time) Outcome {
	member := SelectNext(queue, now)
	if member == nil {
		return Outcome{Queue: queue, Held: true, Reason: data.ReasonNoAvailableMember}
	}
	queue.NextMemberID = member.MemberID
	queue.ReceivedCount++
	if !queue.AdvancedConfig.PreservePositionWhenUnavailable {
		ApplyRanking(queue.Members, Rerank(queue.Members, func(candidate *data.Member) bool {
			return !IsAvailable(candidate, queue.CheckinWindow, now)
		}))
	}
	return Outcome{Queue: queue, Member: member}
}
