package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	SchemaOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "programme_schema_operations_total",
			Help: "Total number of programme schema lifecycle operations by operation and status",
		},
		[]string{"operation", "status"},
	)
	SchemaOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "programme_schema_operation_duration_seconds",
			Help:    "Duration of programme schema lifecycle operations in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"operation"},
	)
	ArchivesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archives_created_total",
			Help: "Total number of archive artifacts created by status",
		},
		[]string{"status"},
	)
	CleanupRowsDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cleanup_rows_deleted_total",
			Help: "Total number of rows deleted by cleanup rules per table",
		},
		[]string{"table"},
	)
	RoutedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schema_routed_requests_total",
			Help: "Requests routed by the schema routing middleware, by outcome",
		},
		[]string{"outcome"},
	)
)

func InitMetrics() {
	collectors := []prometheus.Collector{
		SchemaOperations,
		SchemaOperationDuration,
		ArchivesCreated,
		CleanupRowsDeleted,
		RoutedRequests,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			log.Error().Err(err).Msg("Failed to register metric")
		}
	}
}
