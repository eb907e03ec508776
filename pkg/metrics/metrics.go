// Package metrics exports hashgrid table and snapshot measurements as
// Prometheus metrics.
//
// # Overview
//
// The metrics package provides:
//   - A prometheus.Collector that reports a table's shape at scrape time
//   - Pre-defined counters for snapshot encode and decode traffic
//   - A latency histogram and a small Timer helper
//
// # Basic Usage
//
//	// Report a table's shape under the name "orders"
//	prometheus.MustRegister(metrics.NewTableCollector("orders", tbl))
//
//	// Record a snapshot write
//	timer := metrics.NewTimer()
//	n, err := writeSnapshot()
//	metrics.ObserveSnapshot(metrics.OpWrite, "json", "zstd", n, timer.Stop(), err)
//
// # Metric Types
//
// Counter: snapshot bytes, operations and errors by type
// Gauge: rows, columns, cells and present cells of a registered table
// Histogram: snapshot latency
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ajitpratap0/hashgrid/pkg/errors"
	"github.com/ajitpratap0/hashgrid/pkg/table"
)

const namespace = "hashgrid"

// Snapshot operation labels
const (
	OpWrite = "write"
	OpRead  = "read"
)

// Snapshot operation status labels
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// SnapshotBytes counts framed snapshot bytes written and read
	SnapshotBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_bytes_total",
			Help:      "Total framed snapshot bytes by operation, format and compression",
		},
		[]string{"op", "format", "compression"},
	)

	// SnapshotOperations counts snapshot encodes and decodes by outcome
	SnapshotOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_operations_total",
			Help:      "Total snapshot operations by operation and status",
		},
		[]string{"op", "status"},
	)

	// SnapshotErrors counts failed snapshot operations by error type
	SnapshotErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_errors_total",
			Help:      "Total failed snapshot operations by operation and error type",
		},
		[]string{"op", "type"},
	)

	// SnapshotLatency records how long snapshot operations take
	SnapshotLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_duration_seconds",
			Help:      "Snapshot operation latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"op"},
	)
)

// ErrorTypeUnknown labels failures that carry no structured error type
const ErrorTypeUnknown = "unknown"

// ObserveSnapshot records one snapshot operation. Bytes are only counted
// for successful operations; failures are also counted by error type.
func ObserveSnapshot(op, format, compression string, bytes int64, took time.Duration, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
		errType := string(errors.TypeOf(err))
		if errType == "" {
			errType = ErrorTypeUnknown
		}
		SnapshotErrors.WithLabelValues(op, errType).Inc()
	}
	SnapshotOperations.WithLabelValues(op, status).Inc()
	SnapshotLatency.WithLabelValues(op).Observe(took.Seconds())
	if err == nil && bytes > 0 {
		SnapshotBytes.WithLabelValues(op, format, compression).Add(float64(bytes))
	}
}

// StatsSource is anything that can report table statistics. *table.Table
// satisfies it for every key and value type.
type StatsSource interface {
	Stats() table.Stats
}

// TableCollector is a prometheus.Collector reporting the shape of one
// table. Stats are read at scrape time, so the source must be safe to read
// whenever the registry is scraped.
type TableCollector struct {
	name   string
	source StatsSource

	rows    *prometheus.Desc
	columns *prometheus.Desc
	cells   *prometheus.Desc
	present *prometheus.Desc
}

// NewTableCollector creates a collector labelled table=name
func NewTableCollector(name string, source StatsSource) *TableCollector {
	labels := prometheus.Labels{"table": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "table", metric), help, nil, labels)
	}
	return &TableCollector{
		name:    name,
		source:  source,
		rows:    desc("rows", "Number of rows in the table"),
		columns: desc("columns", "Number of columns in the table"),
		cells:   desc("cells", "Number of cell slots, rows times columns"),
		present: desc("present_cells", "Number of cells holding a value"),
	}
}

// Name returns the table label value
func (c *TableCollector) Name() string {
	return c.name
}

// Describe implements prometheus.Collector
func (c *TableCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.rows
	ch <- c.columns
	ch <- c.cells
	ch <- c.present
}

// Collect implements prometheus.Collector
func (c *TableCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()

	ch <- prometheus.MustNewConstMetric(c.rows, prometheus.GaugeValue, float64(stats.Rows))
	ch <- prometheus.MustNewConstMetric(c.columns, prometheus.GaugeValue, float64(stats.Columns))
	ch <- prometheus.MustNewConstMetric(c.cells, prometheus.GaugeValue, float64(stats.Cells))
	ch <- prometheus.MustNewConstMetric(c.present, prometheus.GaugeValue, float64(stats.PresentCells))
}

// Timer measures elapsed time for an operation
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer and starts timing immediately
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Stop returns the elapsed duration since creation. It can be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}
