package scheduler

import (
	"sync/atomic"
	"time"
)

// MetricsContainer encapsulates held retry counters
type MetricsContainer struct {
	// RetriedLeads is the number of held leads run through distribution again
	RetriedLeads uint64
	// RedistributedLeads is the number of retried leads a member took
	RedistributedLeads uint64
	// RetryErrors is the number of errors encountered while retrying
	RetryErrors uint64
	// LatestHoldDuration is how long the most recently redistributed lead waited in the pool
	LatestHoldDuration time.Duration
}

// NewMetricsContainer creates a new metrics container
func NewMetricsContainer() *MetricsContainer {
	return &MetricsContainer{}
}

// IncreaseRetriedLeadCount increases the retried lead count
func (m *MetricsContainer) IncreaseRetriedLeadCount() uint64 {
	return atomic.AddUint64(&m.RetriedLeads, 1)
}

// IncreaseRedistributedLeadCount increases the redistributed lead count
func (m *MetricsContainer) IncreaseRedistributedLeadCount() uint64 {
	return atomic.AddUint64(&m.RedistributedLeads, 1)
}

// IncreaseRetryErrorCount increases the retry error count
func (m *MetricsContainer) IncreaseRetryErrorCount() uint64 {
	return atomic.AddUint64(&m.RetryErrors, 1)
}

// SetLatestHoldDuration sets the latest hold duration
func (m *MetricsContainer) SetLatestHoldDuration(duration time.Duration) {
	atomic.StoreInt64((*int64)(&m.LatestHoldDuration), int64(duration))
}

// GetLatestHoldDuration gets the latest hold duration
func (m *MetricsContainer) GetLatestHoldDuration() time.Duration {
	return time.Duration(atomic.LoadInt64((*int64)(&m.LatestHoldDuration)))
}
