package metrics

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	model "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/domain/model"
	metrics "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/core/metrics"
	logger "github.com/anilvenu/irp-notebook-framework-sub000/pkg/batch/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Job Metrics
	jobSubmissionCounter   *prometheus.CounterVec
	jobStatusCounter       *prometheus.CounterVec
	jobResubmissionCounter *prometheus.CounterVec

	// Batch Metrics
	batchTransitionCounter *prometheus.CounterVec

	operationDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder whose metric names are prefixed with namespace (e.g., "irp").
func NewPrometheusRecorder(namespace string) *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobSubmissionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_submissions_total",
			Help:      "Total number of job submissions to the risk-modeling API by outcome.",
		}, []string{"batch_type", "outcome"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_status_total",
			Help:      "Total number of observed job statuses.",
		}, []string{"batch_type", "status"}),
		jobResubmissionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_resubmissions_total",
			Help:      "Total number of job resubmissions, split by whether the configuration was overridden.",
		}, []string{"batch_type", "overridden"}),
		batchTransitionCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_transitions_total",
			Help:      "Total number of batch status changes made by reconciliation.",
		}, []string{"batch_type", "from", "to"}),
		operationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of batch and job manager operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "batch_type"}),
	}

	registry.MustRegister(r.jobSubmissionCounter)
	registry.MustRegister(r.jobStatusCounter)
	registry.MustRegister(r.jobResubmissionCounter)
	registry.MustRegister(r.batchTransitionCounter)
	registry.MustRegister(r.operationDurationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *PrometheusRecorder) RecordJobSubmission(ctx context.Context, batchType string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.jobSubmissionCounter.WithLabelValues(batchType, outcome).Inc()
}

func (r *PrometheusRecorder) RecordJobStatus(ctx context.Context, batchType string, status model.JobStatus) {
	r.jobStatusCounter.WithLabelValues(batchType, status.String()).Inc()
}

func (r *PrometheusRecorder) RecordJobResubmission(ctx context.Context, batchType string, overridden bool) {
	label := "false"
	if overridden {
		label = "true"
	}
	r.jobResubmissionCounter.WithLabelValues(batchType, label).Inc()
}

func (r *PrometheusRecorder) RecordBatchTransition(ctx context.Context, batchType string, from, to model.BatchStatus) {
	r.batchTransitionCounter.WithLabelValues(batchType, from.String(), to.String()).Inc()
	logger.Debugf("Metrics: batch of type '%s' moved %s -> %s.", batchType, from, to)
}

// RecordDuration observes duration under the operation label name. Only the "batch_type" tag is
// kept as a label; other tags are logged at DEBUG to keep label cardinality fixed.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.operationDurationSeconds.WithLabelValues(name, tags["batch_type"]).Observe(duration.Seconds())
	if len(tags) > 1 {
		logger.Debugf("Metrics: %s took %.3fs (%s)", name, duration.Seconds(), formatTags(tags))
	}
}

func formatTags(tags map[string]string) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+tags[k])
	}
	return strings.Join(parts, ", ")
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
