package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds the service's prometheus collectors. A nil *Manager is valid
// and records nothing, so services can be built without metrics in tests.
type Manager struct {
	// counters
	CounterRequests           *prometheus.CounterVec
	CounterSequentialIDs      prometheus.Counter
	CounterUpstreamRetries    *prometheus.CounterVec
	CounterHandleRequestPanic prometheus.Counter

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
}

func NewTestManager() *Manager {
	return NewManager("fitness", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("fitness", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "request",
		Help:      "The total number of incoming requests",
	}, []string{"method", "route", "status"})
	counterSequentialIDs := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "sequential_ids_allocated",
		Help:      "The total number of exercise sequential ids handed out",
	})
	counterUpstreamRetries := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "upstream_retries",
		Help:      "The total number of retried upstream calls",
	}, []string{"upstream"})
	counterHandleRequestPanic := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic",
		Help:      "The total number of serve request panics",
	})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histReqDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		},
		[]string{"route"},
	)

	return &Manager{
		CounterRequests:           counterRequests,
		CounterSequentialIDs:      counterSequentialIDs,
		CounterUpstreamRetries:    counterUpstreamRetries,
		CounterHandleRequestPanic: counterHandleRequestPanic,
		GaugeRequests:             gaugeRequests,
		HistRequestDuration:       histReqDuration,
	}
}

func (m *Manager) SequentialIDAllocated() {
	if m == nil {
		return
	}
	m.CounterSequentialIDs.Inc()
}

func (m *Manager) UpstreamRetried(upstream string) {
	if m == nil {
		return
	}
	m.CounterUpstreamRetries.WithLabelValues(upstream).Inc()
}

func (m *Manager) RequestPanicked() {
	if m == nil {
		return
	}
	m.CounterHandleRequestPanic.Inc()
}
