package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"time"
	"warden/internal/types"
)

const (
	PipelineBackup    = "backup"
	PipelineSmokeTest = "smoke_test"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "pipeline_runs_total",
			Help:      "Pipeline invocations by outcome",
		},
		[]string{"pipeline", "status"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "warden",
			Name:      "pipeline_duration_seconds",
			Help:      "Wall time of pipeline invocations",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"pipeline"},
	)

	PipelineLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "warden",
			Name:      "pipeline_last_success_timestamp_seconds",
			Help:      "Unix time of the last successful invocation",
		},
		[]string{"pipeline"},
	)

	BackupDirectoryUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "warden",
			Name:      "backup_directory_users",
			Help:      "Identity directory users captured by the last successful backup",
		},
	)

	CleanupWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "smoke_test_cleanup_warnings_total",
			Help:      "Smoke test runs that could not fully empty the isolated environment",
		},
	)

	TriggerRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "manual_trigger_rejections_total",
			Help:      "Manual trigger calls refused before reaching a pipeline",
		},
		[]string{"pipeline", "reason"},
	)
)

func ObserveRun(pipeline string, status types.RunStatus, started time.Time) {
	PipelineRuns.WithLabelValues(pipeline, string(status)).Inc()
	PipelineDuration.WithLabelValues(pipeline).Observe(time.Since(started).Seconds())
	if status == types.StatusSuccess {
		PipelineLastSuccess.WithLabelValues(pipeline).SetToCurrentTime()
	}
}
