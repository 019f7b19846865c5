package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type WorkerMetrics struct {
	registry *prometheus.Registry

	classifyTotal    *prometheus.CounterVec
	classifyDuration *prometheus.HistogramVec
	classifyInFlight prometheus.Gauge
	documentsTotal   *prometheus.CounterVec
	queueLag         *prometheus.HistogramVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	classifyTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docusight",
			Subsystem: "worker",
			Name:      "folder_classify_total",
			Help:      "Total classified folders by status.",
		},
		[]string{"service", "status"},
	)
	classifyDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docusight",
			Subsystem: "worker",
			Name:      "folder_classify_duration_seconds",
			Help:      "Folder classification duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	classifyInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docusight",
			Subsystem: "worker",
			Name:      "folder_classify_in_flight",
			Help:      "Number of in-flight folder classification tasks.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docusight",
			Subsystem: "worker",
			Name:      "documents_classified_total",
			Help:      "Total document classification outcomes by disposition.",
		},
		[]string{"service", "disposition"},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docusight",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between folder ingestion and classification start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)

	registry.MustRegister(classifyTotal, classifyDuration, classifyInFlight, documentsTotal, queueLag)

	return &WorkerMetrics{
		registry:         registry,
		classifyTotal:    classifyTotal,
		classifyDuration: classifyDuration,
		classifyInFlight: classifyInFlight,
		documentsTotal:   documentsTotal,
		queueLag:         queueLag,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartFolder() {
	m.classifyInFlight.Inc()
}

func (m *WorkerMetrics) FinishFolder(service string, duration time.Duration, err error) {
	m.classifyInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.classifyTotal.WithLabelValues(service, status).Inc()
	m.classifyDuration.WithLabelValues(service, status).Observe(duration.Seconds())
}

// RecordDocument counts one document outcome: "classified" or the skip
// reason with spaces folded to underscores.
func (m *WorkerMetrics) RecordDocument(service, disposition string) {
	if disposition == "" {
		disposition = "unknown"
	}
	m.documentsTotal.WithLabelValues(service, disposition).Inc()
}

func (m *WorkerMetrics) ObserveQueueLag(service string, lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(service).Observe(lag.Seconds())
}
