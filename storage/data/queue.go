package data

const (
	queueLockPrefix = "q-"
)

// Queue is a routing bucket with its rules, members and rotation state. A queue owns its members and
// its rotation pointer exclusively.
type Queue struct {
	BasePaginateable
	QueueID string
	Name    string
	// Priority 1 is the highest; lower numbers are evaluated first
	Priority       int
	Rules          Rules
	Members        []*Member
	NextMemberID   string
	Enabled        bool
	CheckinWindow  CheckinWindow
	AdvancedConfig AdvancedConfig
	ReceivedCount  uint64
}

// QuickFix fixes the model to set default ID, name same as queue id, created and updated at to current time,
// escalation target to none and clears a rotation pointer to a member not in the queue.
func (queue *Queue) QuickFix() bool {
	madeChanges := queue.BasePaginateable.QuickFix()
	madeChanges = setValIfBothNotEmpty(&queue.Name, &queue.QueueID) || madeChanges
	if !queue.AdvancedConfig.EscalationTarget.IsKnown() {
		queue.AdvancedConfig.EscalationTarget = EscalateToNone
		madeChanges = true
	}
	if len(queue.NextMemberID) > 0 && queue.FindMember(queue.NextMemberID) == nil {
		queue.NextMemberID = ""
		madeChanges = true
	}
	for _, member := range queue.Members {
		if member.QueueID != queue.QueueID {
			member.QueueID = queue.QueueID
			madeChanges = true
		}
		madeChanges = member.QuickFix() || madeChanges
	}
	return madeChanges
}

// IsInValidState returns false if queue id or name is empty, a member is invalid or the rotation pointer
// references a member outside the queue
func (queue *Queue) IsInValidState() bool {
	if len(queue.QueueID) <= 0 || len(queue.Name) <= 0 || !queue.AdvancedConfig.EscalationTarget.IsKnown() {
		return false
	}
	for _, member := range queue.Members {
		if member == nil || !member.IsInValidState() || member.QueueID != queue.QueueID {
			return false
		}
	}
	return len(queue.NextMemberID) <= 0 || queue.FindMember(queue.NextMemberID) != nil
}

// FindMember returns the member with the id or nil
func (queue *Queue) FindMember(memberID string) *Member {
	for _, member := range queue.Members {
		if member.MemberID == memberID {
			return member
		}
	}
	return nil
}

// Clone deep copies the queue so the copy can be mutated without touching the original
func (queue *Queue) Clone() *Queue {
	clone := *queue
	clone.Rules = append(Rules(nil), queue.Rules...)
	clone.CheckinWindow.DaysOfWeek = append([]string(nil), queue.CheckinWindow.DaysOfWeek...)
	clone.Members = make([]*Member, len(queue.Members))
	for index, member := range queue.Members {
		clone.Members[index] = member.Clone()
	}
	return &clone
}

// GetLockID retrieves the Lock ID representing this queue
func (queue *Queue) GetLockID() string {
	return queueLockPrefix + queue.QueueID
}

// NewQueue creates an enabled queue matching any lead
func NewQueue(queueID string, name string, priority int) (*Queue, error) {
	if len(queueID) <= 0 {
		return nil, ErrInsufficientInformationForCreating
	}
	queue := &Queue{QueueID: queueID, Name: name, Priority: priority, Enabled: true, Rules: Rules{}}
	queue.QuickFix()
	return queue, nil
}
