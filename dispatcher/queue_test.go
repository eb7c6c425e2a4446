package dispatcher

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/newscred/lead-router/storage/data"
	"github.com/stretchr/testify/assert"
)

func TestPriorityQueueBasic(t *testing.T) {
	pq := NewJobPriorityQueue(nil)
	priorities := rand.Perm(100)

	for _, priority := range priorities {
		lead, _ := data.NewLead(strconv.Itoa(priority), nil)
		pq.Enqueue(NewJob(lead, data.SystemActor, uint(priority)))
	}
	for expectedPriority := 99; expectedPriority >= 0; expectedPriority-- {
		assert.Equal(t, pq.Len(), expectedPriority+1)
		topJob := pq.Dequeue()
		assert.Equal(t, uint(expectedPriority), topJob.Priority)
		assert.Equal(t, strconv.Itoa(expectedPriority), topJob.Lead.ID)
	}
	assert.Nil(t, pq.Dequeue())
}

func TestPriorityQueueFIFOWithinPriority(t *testing.T) {
	pq := NewJobPriorityQueue(nil)
	for index := 0; index < 6; index++ {
		lead, _ := data.NewLead("fifo-"+strconv.Itoa(index), nil)
		pq.Enqueue(NewJob(lead, data.SystemActor, uint(index%2)))
	}
	expected := []string{"fifo-1", "fifo-3", "fifo-5", "fifo-0", "fifo-2", "fifo-4"}
	for _, leadID := range expected {
		assert.Equal(t, leadID, pq.Dequeue().Lead.ID)
	}
}

func TestPriorityQueueGauge(t *testing.T) {
	gauge := NewMetricsContainer().QueuedLeadCount
	gauge.Set(0)
	pq := NewJobPriorityQueue(gauge)
	lead, _ := data.NewLead("gauge-lead", nil)
	pq.Enqueue(NewJob(lead, data.SystemActor, 0))
	pq.Enqueue(NewJob(lead, data.SystemActor, 1))
	assert.Equal(t, float64(2), metricValue(gauge))
	pq.Dequeue()
	assert.Equal(t, float64(1), metricValue(gauge))
	pq.Dequeue()
	pq.Dequeue()
	assert.Equal(t, float64(0), metricValue(gauge))
}

func BenchmarkPriorityQueue(b *testing.B) {
	for i := 0; i < b.N; i++ {
		stressPriorityQueue()
	}
}

func stressPriorityQueue() {
	maxQueueSize := 100000
	pq := NewJobPriorityQueue(nil)
	lead, _ := data.NewLead("stress", nil)
	for i := 0; i < maxQueueSize; i++ {
		pq.Enqueue(NewJob(lead, data.SystemActor, uint(i%3)))
	}
	for i := 0; i < maxQueueSize; i++ {
		_ = pq.Dequeue()
	}
}
