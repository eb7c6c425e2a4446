package data

import (
	"database/sql/driver"
	"time"
)

// AuditType is the kind of event an AuditEntry records
type AuditType string

const (
	AuditCreated       AuditType = "created"
	AuditEdited        AuditType = "edited"
	AuditDeleted       AuditType = "deleted"
	AuditRedistributed AuditType = "redistributed"
	AuditReordered     AuditType = "reordered"
	AuditCheckin       AuditType = "checkin"
	AuditCheckout      AuditType = "checkout"
	AuditDistributed   AuditType = "distributed"
	AuditHeld          AuditType = "held"

	// SystemActor is recorded for entries not triggered by a person
	SystemActor = "system"
)

// IsKnown returns true for declared audit types
func (auditType AuditType) IsKnown() bool {
	switch auditType {
	case AuditCreated, AuditEdited, AuditDeleted, AuditRedistributed, AuditReordered, AuditCheckin, AuditCheckout, AuditDistributed, AuditHeld:
		return true
	default:
		return false
	}
}

// AuditDetails is free form context of an audit entry
type AuditDetails map[string]interface{}

// Scan reads details from a JSON column
func (details *AuditDetails) Scan(value interface{}) error {
	*details = AuditDetails{}
	return scanJSONColumn(value, details)
}

// Value writes details as a JSON column
func (details AuditDetails) Value() (driver.Value, error) {
	if details == nil {
		return jsonColumnValue(map[string]interface{}{})
	}
	return jsonColumnValue(map[string]interface{}(details))
}

// AuditEntry is an append-only record; it is never mutated after creation
type AuditEntry struct {
	BasePaginateable
	Type      AuditType
	Actor     string
	Timestamp time.Time
	QueueID   string
	LeadID    string
	MemberID  string
	Details   AuditDetails
}

// QuickFix fixes the model to set default ID, created at, actor and timestamp
func (entry *AuditEntry) QuickFix() bool {
	madeChanges := entry.BasePaginateable.QuickFix()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = entry.CreatedAt
		madeChanges = true
	}
	madeChanges = setValIfBothNotEmpty(&entry.Actor, &systemActor) || madeChanges
	if entry.Details == nil {
		entry.Details = AuditDetails{}
		madeChanges = true
	}
	return madeChanges
}

var systemActor = SystemActor

// IsInValidState returns false if the type is unknown, actor empty or timestamp unset
func (entry *AuditEntry) IsInValidState() bool {
	return entry.Type.IsKnown() && len(entry.Actor) > 0 && !entry.Timestamp.IsZero()
}

// NewAuditEntry creates an audit entry of the type; empty actor defaults to system
func NewAuditEntry(auditType AuditType, actor string, timestamp time.Time) (*AuditEntry, error) {
	if !auditType.IsKnown() {
		return nil, ErrInsufficientInformationForCreating
	}
	entry := &AuditEntry{Type: auditType, Actor: actor, Timestamp: timestamp}
	entry.QuickFix()
	return entry, nil
}
