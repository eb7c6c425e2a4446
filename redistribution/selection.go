package redistribution

import (
	"strings"
	"time"

	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
)

// Filter narrows down pool leads; empty fields match everything and all given fields must match
type Filter struct {
	Reason          string    `json:"reason,omitempty"`
	Owner           string    `json:"owner,omitempty"`
	PreviousQueueID string    `json:"previousQueueId,omitempty"`
	Tag             string    `json:"tag,omitempty"`
	Status          string    `json:"status,omitempty"`
	From            time.Time `json:"from,omitempty"`
	To              time.Time `json:"to,omitempty"`
}

// Matches applies every set predicate to the pool lead
func (filter *Filter) Matches(poolLead *data.PoolLead) bool {
	if len(filter.Reason) > 0 && !strings.EqualFold(filter.Reason, poolLead.Reason) {
		return false
	}
	if len(filter.Owner) > 0 && filter.Owner != poolLead.Owner {
		return false
	}
	if len(filter.PreviousQueueID) > 0 && filter.PreviousQueueID != poolLead.PreviousQueueID {
		return false
	}
	if len(filter.Tag) > 0 && !poolLead.Tags.Has(filter.Tag) {
		return false
	}
	if len(filter.Status) > 0 && !strings.EqualFold(filter.Status, poolLead.Status) {
		return false
	}
	if !filter.From.IsZero() && poolLead.CreatedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && poolLead.CreatedAt.After(filter.To) {
		return false
	}
	return true
}

// AsMap is the filter as recorded on the job
func (filter *Filter) AsMap() map[string]string {
	used := make(map[string]string)
	setIfPresent := func(key, value string) {
		if len(value) > 0 {
			used[key] = value
		}
	}
	setIfPresent("reason", filter.Reason)
	setIfPresent("owner", filter.Owner)
	setIfPresent("previousQueueId", filter.PreviousQueueID)
	setIfPresent("tag", filter.Tag)
	setIfPresent("status", filter.Status)
	if !filter.From.IsZero() {
		used["from"] = filter.From.Format(time.RFC3339)
	}
	if !filter.To.IsZero() {
		used["to"] = filter.To.Format(time.RFC3339)
	}
	return used
}

// Selection picks pool leads either by id or by filter minus exclusions. Pool limits the selection to
// one pool; empty means held and archived.
type Selection struct {
	LeadIDs     []string      `json:"leadIds,omitempty"`
	Filter      *Filter       `json:"filter,omitempty"`
	ExcludedIDs []string      `json:"excludedIds,omitempty"`
	Pool        data.PoolKind `json:"pool,omitempty"`
}

func (selection *Selection) pools() []data.PoolKind {
	if selection.Pool == data.PoolHeld || selection.Pool == data.PoolArchived {
		return []data.PoolKind{selection.Pool}
	}
	return []data.PoolKind{data.PoolHeld, data.PoolArchived}
}

// ResolveSelection reads the pools and returns the selected leads in pool order. Preview and execute
// both resolve through here so they agree on the count for an unchanged pool.
func ResolveSelection(poolLeadRepo storage.PoolLeadRepository, selection *Selection) ([]*data.PoolLead, error) {
	if selection == nil || (len(selection.LeadIDs) <= 0 && selection.Filter == nil) {
		return nil, ErrEmptySelection
	}
	candidates := make([]*data.PoolLead, 0)
	for _, pool := range selection.pools() {
		poolLeads, err := poolLeadRepo.GetAll(pool)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, poolLeads...)
	}
	selected := make([]*data.PoolLead, 0, len(candidates))
	if len(selection.LeadIDs) > 0 {
		wanted := toSet(selection.LeadIDs)
		for _, poolLead := range candidates {
			if wanted[poolLead.LeadID()] {
				selected = append(selected, poolLead)
			}
		}
		return selected, nil
	}
	excluded := toSet(selection.ExcludedIDs)
	for _, poolLead := range candidates {
		if !excluded[poolLead.LeadID()] && selection.Filter.Matches(poolLead) {
			selected = append(selected, poolLead)
		}
	}
	return selected, nil
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, value := range values {
		set[value] = true
	}
	return set
}
