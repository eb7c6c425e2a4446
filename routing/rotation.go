package routing

import (
	"errors"
	"sort"
	"time"

	"github.com/newscred/lead-router/storage/data"
)

var (
	// ErrMemberNotFound is returned when an operation names a member the queue does not own
	ErrMemberNotFound = errors.New("member not found in queue")
	// ErrDuplicateMember is returned when an explicit ordering lists a member twice
	ErrDuplicateMember = errors.New("member listed more than once")
)

// Eligible returns active and available members sorted by rotation order; ties keep member order
func Eligible(queue *data.Queue, now time.Time) []*data.Member {
	eligible := make([]*data.Member, 0, len(queue.Members))
	for _, member := range queue.Members {
		if member.Active && IsAvailable(member, queue.CheckinWindow, now) {
			eligible = append(eligible, member)
		}
	}
	sortByRotation(eligible)
	return eligible
}

// SelectNext returns the eligible member right after the rotation pointer, wrapping around. When the
// pointer is unset or references a member no longer eligible the first eligible member is returned.
func SelectNext(queue *data.Queue, now time.Time) *data.Member {
	eligible := Eligible(queue, now)
	if len(eligible) == 0 {
		return nil
	}
	if len(queue.NextMemberID) > 0 {
		for index, member := range eligible {
			if member.MemberID == queue.NextMemberID {
				return eligible[(index+1)%len(eligible)]
			}
		}
	}
	return eligible[0]
}

// Rerank computes a new rotation as member ids: active members keep their relative order except the
// demoted ones, which move behind all other active members; inactive members go last.
func Rerank(members []*data.Member, demote func(*data.Member) bool) []string {
	ordered := append([]*data.Member(nil), members...)
	sortByRotation(ordered)
	kept := make([]string, 0, len(ordered))
	demoted := make([]string, 0)
	inactive := make([]string, 0)
	for _, member := range ordered {
		switch {
		case !member.Active:
			inactive = append(inactive, member.MemberID)
		case demote(member):
			demoted = append(demoted, member.MemberID)
		default:
			kept = append(kept, member.MemberID)
		}
	}
	return append(append(kept, demoted...), inactive...)
}

// RankExplicit puts the listed members first in the given order, followed by the rest in their current
// rotation order.
func RankExplicit(members []*data.Member, memberIDs []string) ([]string, error) {
	known := make(map[string]bool, len(members))
	for _, member := range members {
		known[member.MemberID] = true
	}
	listed := make(map[string]bool, len(memberIDs))
	ranking := make([]string, 0, len(members))
	for _, memberID := range memberIDs {
		if !known[memberID] {
			return nil, ErrMemberNotFound
		}
		if listed[memberID] {
			return nil, ErrDuplicateMember
		}
		listed[memberID] = true
		ranking = append(ranking, memberID)
	}
	ordered := append([]*data.Member(nil), members...)
	sortByRotation(ordered)
	for _, member := range ordered {
		if !listed[member.MemberID] {
			ranking = append(ranking, member.MemberID)
		}
	}
	return ranking, nil
}

// ApplyRanking renumbers members densely from 1 following the ranking
func ApplyRanking(members []*data.Member, ranking []string) {
	positions := make(map[string]int, len(ranking))
	for index, memberID := range ranking {
		positions[memberID] = index + 1
	}
	for _, member := range members {
		if position, ok := positions[member.MemberID]; ok {
			member.RotationOrder = position
		}
	}
}

func sortByRotation(members []*data.Member) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].RotationOrder < members[j].RotationOrder
	})
}
