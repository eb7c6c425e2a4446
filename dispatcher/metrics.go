package dispatcher

import (
	"net/http"
	"sync"

	"github.com/google/wire"
	"github.com/newscred/lead-router/storage"
	"github.com/newscred/lead-router/storage/data"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	MetricsInjector = wire.NewSet(NewMetricsContainer, NewPrometheusHandler)
	sharedContainer *MetricsContainer
	once            sync.Once
)

type MetricsContainer struct {
	QueuedLeadCount        prometheus.Gauge
	DistributedLeadCount   *prometheus.CounterVec
	HeldLeadCount          *prometheus.CounterVec
	HeldPoolSize           prometheus.Gauge
	RedistributedLeadCount *prometheus.CounterVec
}

func NewMetricsContainer() *MetricsContainer {
	once.Do(func() {
		sharedContainer = newMetricsContainer()
	})
	return sharedContainer
}

func newMetricsContainer() *MetricsContainer {
	container := &MetricsContainer{}
	container.QueuedLeadCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "queued_lead_count",
		Help: "The current number of leads waiting for a worker",
	})
	container.DistributedLeadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distributed_lead_count",
		Help: "Number of leads assigned per queue",
	}, []string{"queue"})
	container.HeldLeadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "held_lead_count",
		Help: "Number of leads sent to the held pool per reason",
	}, []string{"reason"})
	container.HeldPoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "held_pool_size",
		Help: "The current number of leads in the held pool",
	})
	container.RedistributedLeadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redistributed_lead_count",
		Help: "Number of held or archived leads redistributed per result",
	}, []string{"result"})
	return container
}

// ObserveHeldPool sets the held pool gauge from storage
func (container *MetricsContainer) ObserveHeldPool(poolLeadRepo storage.PoolLeadRepository) {
	count, err := poolLeadRepo.Count(data.PoolHeld)
	if err != nil {
		log.Error().Err(err).Msg("could not count held pool")
		return
	}
	container.HeldPoolSize.Set(float64(count))
}

func NewPrometheusHandler() http.Handler {
	return promhttp.Handler()
}
