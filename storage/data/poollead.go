package data

import (
	"database/sql/driver"
	"strings"
	"time"
)

// PoolKind separates leads waiting for an agent from leads parked in the archive
type PoolKind string

const (
	poolLeadLockPrefix = "pl-"
	// PoolHeld holds leads that matched no queue or found nobody available
	PoolHeld PoolKind = "held"
	// PoolArchived holds leads pulled out of circulation or imported for later redistribution
	PoolArchived PoolKind = "archived"

	// ReasonNoMatchingQueue is the outcome when no queue's rules match a lead
	ReasonNoMatchingQueue = "no matching queue"
	// ReasonNoAvailableMember is the outcome when the matched queue has nobody available
	ReasonNoAvailableMember = "no available member"
	// ReasonImported marks leads materialized by a batch import
	ReasonImported = "imported"
)

// Tags is a list of labels persisted as a JSON column
type Tags []string

// Scan reads tags from a JSON column
func (tags *Tags) Scan(value interface{}) error {
	*tags = Tags{}
	return scanJSONColumn(value, tags)
}

// Value writes tags as a JSON column
func (tags Tags) Value() (driver.Value, error) {
	if tags == nil {
		return jsonColumnValue([]string{})
	}
	return jsonColumnValue([]string(tags))
}

// Has checks for a tag ignoring case
func (tags Tags) Has(tag string) bool {
	for _, candidate := range tags {
		if strings.EqualFold(candidate, tag) {
			return true
		}
	}
	return false
}

// PoolLead is a lead sitting in the held pool or the archive waiting for redistribution; it is keyed by
// the lead id so removals never depend on position
type PoolLead struct {
	BasePaginateable
	Lead            *Lead
	Pool            PoolKind
	Reason          string
	MatchedQueueID  string
	PreviousQueueID string
	Owner           string
	Status          string
	Tags            Tags
	BatchID         string
}

// HeldLead is a lead that matched no queue or whose matched queue had nobody available
type HeldLead = PoolLead

// QuickFix fixes the model to set default ID, created and updated at to current time and status same as pool
func (poolLead *PoolLead) QuickFix() bool {
	madeChanges := poolLead.BasePaginateable.QuickFix()
	if poolLead.Pool != PoolHeld && poolLead.Pool != PoolArchived {
		poolLead.Pool = PoolHeld
		madeChanges = true
	}
	if len(poolLead.Status) <= 0 {
		poolLead.Status = string(poolLead.Pool)
		madeChanges = true
	}
	if poolLead.Tags == nil {
		poolLead.Tags = Tags{}
		madeChanges = true
	}
	return madeChanges
}

// IsInValidState returns false if the lead is missing or invalid, the pool unknown or reason empty
func (poolLead *PoolLead) IsInValidState() bool {
	if poolLead.Lead == nil || !poolLead.Lead.IsInValidState() || len(poolLead.Reason) <= 0 {
		return false
	}
	return poolLead.Pool == PoolHeld || poolLead.Pool == PoolArchived
}

// LeadID is the stable key of the pool entry
func (poolLead *PoolLead) LeadID() string {
	if poolLead.Lead == nil {
		return ""
	}
	return poolLead.Lead.ID
}

// GetLockID retrieves the Lock ID representing this pool entry
func (poolLead *PoolLead) GetLockID() string {
	return poolLeadLockPrefix + poolLead.LeadID()
}

// NewHeldLead creates a held pool entry for a lead with the reason it could not be assigned
func NewHeldLead(lead *Lead, reason string, matchedQueueID string) (*HeldLead, error) {
	if lead == nil || !lead.IsInValidState() || len(reason) <= 0 {
		return nil, ErrInsufficientInformationForCreating
	}
	held := &PoolLead{Lead: lead, Pool: PoolHeld, Reason: reason, MatchedQueueID: matchedQueueID, PreviousQueueID: matchedQueueID}
	held.QuickFix()
	return held, nil
}

// NewArchivedLead creates an archive entry; createdAt orders the archive newest first
func NewArchivedLead(lead *Lead, reason string, tags []string, createdAt time.Time) (*PoolLead, error) {
	if lead == nil || !lead.IsInValidState() || len(reason) <= 0 {
		return nil, ErrInsufficientInformationForCreating
	}
	archived := &PoolLead{Lead: lead, Pool: PoolArchived, Reason: reason, Tags: append(Tags{}, tags...)}
	archived.CreatedAt = createdAt
	archived.QuickFix()
	return archived, nil
}
