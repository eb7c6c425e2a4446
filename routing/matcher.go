package routing

import (
	"sort"

	"github.com/newscred/lead-router/storage/data"
	"github.com/newscred/lead-router/utils"
)

// Match returns the highest priority enabled queue whose rules all match the lead, or nil. Queues
// sharing a priority keep their input order.
func Match(lead *data.Lead, queues []*data.Queue) *data.Queue {
	for _, queue := range byPriority(queues) {
		if MatchesAll(lead, queue.Rules) {
			return queue
		}
	}
	return nil
}

// MatchAfter behaves like Match but only considers queues ranked after the queue with the given id
func MatchAfter(lead *data.Lead, queues []*data.Queue, queueID string) *data.Queue {
	ordered := byPriority(queues)
	index := utils.FindIndexFunc(ordered, func(queue *data.Queue) bool { return queue.QueueID == queueID })
	if index < 0 {
		return nil
	}
	for _, queue := range ordered[index+1:] {
		if MatchesAll(lead, queue.Rules) {
			return queue
		}
	}
	return nil
}

func byPriority(queues []*data.Queue) []*data.Queue {
	enabled := make([]*data.Queue, 0, len(queues))
	for _, queue := range queues {
		if queue != nil && queue.Enabled {
			enabled = append(enabled, queue)
		}
	}
	sort.SliceStable(enabled, func(i, j int) bool {
		return enabled[i].Priority < enabled[j].Priority
	})
	return enabled
}
