package data

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"time"
)

// JobStatus represents the redistribution job status
type JobStatus int

func (status JobStatus) String() string {
	switch status {
	case JobQueued:
		return JobQueuedStr
	case JobInflight:
		return JobInflightStr
	case JobCompleted:
		return JobCompletedStr
	default:
		return strconv.Itoa(int(status))
	}
}

// MarshalJSON writes the status as its string representation
func (status JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(status.String())
}

const (
	redistributionJobLockPrefix = "rj-"
	// JobQueued is the status right after execute accepted the job
	JobQueued JobStatus = iota + 1000
	// JobInflight signifies that the job runner is distributing the job's leads
	JobInflight
	// JobCompleted signifies that every lead of the job was either assigned or returned to the held pool
	JobCompleted
	// JobQueuedStr is the string rep of JobQueued
	JobQueuedStr = "queued"
	// JobInflightStr is the string rep of JobInflight
	JobInflightStr = "inflight"
	// JobCompletedStr is the string rep of JobCompleted
	JobCompletedStr = "completed"
)

// DestinationKind tells whether a redistribution targets named queues or the full matching roulette
type DestinationKind string

const (
	// DestinationQueue sends leads round robin across Destination.QueueIDs
	DestinationQueue DestinationKind = "queue"
	// DestinationRoulette runs every lead through regular queue matching
	DestinationRoulette DestinationKind = "roulette"
)

var (
	// ErrInvalidDestination is returned when a destination has an unknown kind or a queue kind without queues
	ErrInvalidDestination = errors.New("invalid redistribution destination")
)

// Destination is where redistributed leads are sent
type Destination struct {
	Kind     DestinationKind `json:"kind"`
	QueueIDs []string        `json:"queueIds,omitempty"`
}

// Validate returns ErrInvalidDestination when the destination can not be routed to
func (destination Destination) Validate() error {
	switch destination.Kind {
	case DestinationRoulette:
		return nil
	case DestinationQueue:
		if len(destination.QueueIDs) <= 0 {
			return ErrInvalidDestination
		}
		for _, queueID := range destination.QueueIDs {
			if len(queueID) <= 0 {
				return ErrInvalidDestination
			}
		}
		return nil
	default:
		return ErrInvalidDestination
	}
}

// String is used for tagging leads with their destination
func (destination Destination) String() string {
	if destination.Kind == DestinationQueue {
		result := string(destination.Kind)
		for _, queueID := range destination.QueueIDs {
			result += ":" + queueID
		}
		return result
	}
	return string(destination.Kind)
}

// Scan reads the destination from a JSON column
func (destination *Destination) Scan(value interface{}) error {
	*destination = Destination{}
	return scanJSONColumn(value, destination)
}

// Value writes the destination as a JSON column
func (destination Destination) Value() (driver.Value, error) {
	return jsonColumnValue(destination)
}

// StringMap is a string to string map persisted as JSON
type StringMap map[string]string

// Scan reads the map from a JSON column
func (stringMap *StringMap) Scan(value interface{}) error {
	*stringMap = StringMap{}
	return scanJSONColumn(value, stringMap)
}

// Value writes the map as a JSON column
func (stringMap StringMap) Value() (driver.Value, error) {
	if stringMap == nil {
		return jsonColumnValue(map[string]string{})
	}
	return jsonColumnValue(map[string]string(stringMap))
}

// LeadIDs is a list of lead ids persisted as a JSON column
type LeadIDs []string

// Has tells whether the lead id is listed
func (leadIDs LeadIDs) Has(leadID string) bool {
	for _, candidate := range leadIDs {
		if candidate == leadID {
			return true
		}
	}
	return false
}

// Scan reads the ids from a JSON column
func (leadIDs *LeadIDs) Scan(value interface{}) error {
	*leadIDs = LeadIDs{}
	return scanJSONColumn(value, leadIDs)
}

// Value writes the ids as a JSON column
func (leadIDs LeadIDs) Value() (driver.Value, error) {
	if leadIDs == nil {
		return jsonColumnValue([]string{})
	}
	return jsonColumnValue([]string(leadIDs))
}

// JobLeads are the pool entries a job carries, stored with the job once removed from the pool
type JobLeads []*PoolLead

type jobLeadDocument struct {
	Lead            *Lead     `json:"lead"`
	Pool            PoolKind  `json:"pool"`
	Reason          string    `json:"reason"`
	MatchedQueueID  string    `json:"matchedQueueId,omitempty"`
	PreviousQueueID string    `json:"previousQueueId,omitempty"`
	Owner           string    `json:"owner,omitempty"`
	Status          string    `json:"status,omitempty"`
	Tags            Tags      `json:"tags,omitempty"`
	BatchID         string    `json:"batchId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Scan reads the leads from a JSON column
func (leads *JobLeads) Scan(value interface{}) error {
	docs := make([]jobLeadDocument, 0)
	if err := scanJSONColumn(value, &docs); err != nil {
		return err
	}
	result := make(JobLeads, 0, len(docs))
	for _, doc := range docs {
		poolLead := &PoolLead{Lead: doc.Lead, Pool: doc.Pool, Reason: doc.Reason, MatchedQueueID: doc.MatchedQueueID,
			PreviousQueueID: doc.PreviousQueueID, Owner: doc.Owner, Status: doc.Status, Tags: doc.Tags, BatchID: doc.BatchID}
		poolLead.CreatedAt = doc.CreatedAt
		poolLead.QuickFix()
		result = append(result, poolLead)
	}
	*leads = result
	return nil
}

// Value writes the leads as a JSON column
func (leads JobLeads) Value() (driver.Value, error) {
	docs := make([]jobLeadDocument, 0, len(leads))
	for _, poolLead := range leads {
		docs = append(docs, jobLeadDocument{Lead: poolLead.Lead, Pool: poolLead.Pool, Reason: poolLead.Reason, MatchedQueueID: poolLead.MatchedQueueID,
			PreviousQueueID: poolLead.PreviousQueueID, Owner: poolLead.Owner, Status: poolLead.Status, Tags: poolLead.Tags, BatchID: poolLead.BatchID,
			CreatedAt: poolLead.CreatedAt})
	}
	return jsonColumnValue(docs)
}

// RedistributionJob is the unit of work created by a redistribution execute
type RedistributionJob struct {
	BasePaginateable
	Status          JobStatus
	StatusChangedAt time.Time
	TotalLeads      int
	Destination     Destination
	RequestedBy     string
	FiltersUsed     StringMap
	Leads           JobLeads
	// AssignedLeadIDs are the leads a member already took; a requeued job never routes them again
	AssignedLeadIDs LeadIDs
	AssignedCount   int
	ReheldCount     int
}

// QuickFix fixes the object state automatically as much as possible
func (job *RedistributionJob) QuickFix() bool {
	madeChanges := job.BasePaginateable.QuickFix()
	if job.StatusChangedAt.IsZero() {
		job.StatusChangedAt = time.Now()
		madeChanges = true
	}
	switch job.Status {
	case JobQueued:
	case JobInflight:
	case JobCompleted:
	default:
		job.Status = JobQueued
		madeChanges = true
	}
	if job.TotalLeads != len(job.Leads) {
		job.TotalLeads = len(job.Leads)
		madeChanges = true
	}
	if job.FiltersUsed == nil {
		job.FiltersUsed = StringMap{}
		madeChanges = true
	}
	if job.AssignedLeadIDs == nil {
		job.AssignedLeadIDs = LeadIDs{}
		madeChanges = true
	}
	return madeChanges
}

// IsInValidState returns false if status is not recognized, destination invalid or the lead count disagrees
// with the leads carried. Call QuickFix before IsInValidState is called.
func (job *RedistributionJob) IsInValidState() bool {
	if job.Status != JobQueued && job.Status != JobInflight && job.Status != JobCompleted {
		return false
	}
	if job.Destination.Validate() != nil || job.StatusChangedAt.IsZero() {
		return false
	}
	return job.TotalLeads == len(job.Leads)
}

// GetLockID retrieves the Lock ID representing this instance of RedistributionJob
func (job *RedistributionJob) GetLockID() string {
	return redistributionJobLockPrefix + job.ID.String()
}

// NewRedistributionJob creates a queued job carrying the leads to the destination
func NewRedistributionJob(leads []*PoolLead, destination Destination, requestedBy string, filtersUsed map[string]string) (*RedistributionJob, error) {
	if err := destination.Validate(); err != nil {
		return nil, err
	}
	if len(requestedBy) <= 0 {
		requestedBy = SystemActor
	}
	job := &RedistributionJob{Status: JobQueued, Destination: destination, RequestedBy: requestedBy, FiltersUsed: filtersUsed, Leads: leads}
	job.QuickFix()
	return job, nil
}
