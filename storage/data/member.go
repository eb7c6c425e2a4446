package data

import "time"

// Member is an agent receiving leads from exactly one queue
type Member struct {
	BasePaginateable
	MemberID      string
	QueueID       string
	Name          string
	Active        bool
	AvailableNow  bool
	RotationOrder int
	// LastCheckIn is zero when the member never checked in
	LastCheckIn time.Time
	// OpenLeadLimit of 0 means no limit
	OpenLeadLimit uint
}

// QuickFix fixes the model to set default ID, name same as member id, created and updated at to current time.
func (member *Member) QuickFix() bool {
	madeChanges := member.BasePaginateable.QuickFix()
	madeChanges = setValIfBothNotEmpty(&member.Name, &member.MemberID) || madeChanges
	return madeChanges
}

// IsInValidState returns false if member id, queue id or name is empty
func (member *Member) IsInValidState() bool {
	return len(member.MemberID) > 0 && len(member.QueueID) > 0 && len(member.Name) > 0
}

// Clone returns a copy of the member
func (member *Member) Clone() *Member {
	clone := *member
	return &clone
}

// NewMember creates an active member of a queue
func NewMember(queueID, memberID string, rotationOrder int) (*Member, error) {
	if len(queueID) <= 0 || len(memberID) <= 0 {
		return nil, ErrInsufficientInformationForCreating
	}
	member := &Member{MemberID: memberID, QueueID: queueID, Active: true, RotationOrder: rotationOrder}
	member.QuickFix()
	return member, nil
}
