package dispatcher

import (
	"errors"
	"testing"

	"github.com/newscred/lead-router/storage/data"
	storagemocks "github.com/newscred/lead-router/storage/mocks"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsContainer(t *testing.T) {
	container := NewMetricsContainer()
	assert.NotNil(t, container)
	assert.NotNil(t, container.QueuedLeadCount)
	assert.NotNil(t, container.DistributedLeadCount)
	assert.NotNil(t, container.HeldLeadCount)
	assert.NotNil(t, container.HeldPoolSize)
	assert.NotNil(t, container.RedistributedLeadCount)
}

func TestMetricsContainerSingleton(t *testing.T) {
	c1 := NewMetricsContainer()
	c2 := NewMetricsContainer()
	assert.Same(t, c1, c2)
}

func TestDistributedLeadCounter(t *testing.T) {
	container := NewMetricsContainer()
	container.DistributedLeadCount.WithLabelValues("metrics-q1").Inc()
	container.DistributedLeadCount.WithLabelValues("metrics-q2").Add(2)

	ch := make(chan prometheus.Metric, 10)
	container.DistributedLeadCount.Collect(ch)
	close(ch)
	count := 0
	for range ch {
		count++
	}
	assert.GreaterOrEqual(t, count, 2)
	assert.Equal(t, float64(2), metricValue(container.DistributedLeadCount.WithLabelValues("metrics-q2")))
}

func TestObserveHeldPool(t *testing.T) {
	container := NewMetricsContainer()
	t.Run("Success", func(t *testing.T) {
		poolRepo := storagemocks.NewPoolLeadRepository(t)
		poolRepo.On("Count", data.PoolHeld).Return(int64(7), nil).Once()
		container.ObserveHeldPool(poolRepo)
		assert.Equal(t, float64(7), metricValue(container.HeldPoolSize))
	})
	t.Run("CountErrKeepsGauge", func(t *testing.T) {
		poolRepo := storagemocks.NewPoolLeadRepository(t)
		poolRepo.On("Count", data.PoolHeld).Return(int64(0), errors.New("count failed")).Once()
		container.ObserveHeldPool(poolRepo)
		assert.Equal(t, float64(7), metricValue(container.HeldPoolSize))
	})
}

func metricValue(collector prometheus.Metric) float64 {
	metric := &dto.Metric{}
	if err := collector.Write(metric); err != nil {
		return -1
	}
	if metric.Gauge != nil {
		return metric.GetGauge().GetValue()
	}
	return metric.GetCounter().GetValue()
}
