// Package metrics 定义导入与目录规模的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snapi"

// Metrics 导入计数与目录规模指标。nil 接收者上的方法均为空操作，测试可直接传 nil
type Metrics struct {
	ImportRuns     *prometheus.CounterVec
	ImportedRows   *prometheus.CounterVec
	ImportDuration prometheus.Histogram
	ExportedEvents prometheus.Counter

	CatalogEvents     prometheus.Gauge
	ConflictedEvents  prometheus.Gauge
	ConflictedByType  *prometheus.GaugeVec
	LastRefreshUnixTS prometheus.Gauge
}

// New 创建并注册全部指标
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ImportRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_runs_total",
			Help:      "Bulk import runs by final status.",
		}, []string{"status"}),
		ImportedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_rows_total",
			Help:      "Rows written by the bulk importer, by table.",
		}, []string{"table"}),
		ImportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Wall time of bulk import runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		ExportedEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_events_total",
			Help:      "OSC documents written by the exporter.",
		}),
		CatalogEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_events",
			Help:      "Number of events in the catalog.",
		}),
		ConflictedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_conflicted_events",
			Help:      "Events whose classification claims reference more than one subtype.",
		}),
		ConflictedByType: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subtype_conflicted_events",
			Help:      "Conflicted events per subtype.",
		}, []string{"subtype"}),
		LastRefreshUnixTS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_stats_refreshed_timestamp_seconds",
			Help:      "Unix time of the last catalog gauge refresh.",
		}),
	}
	reg.MustRegister(
		m.ImportRuns,
		m.ImportedRows,
		m.ImportDuration,
		m.ExportedEvents,
		m.CatalogEvents,
		m.ConflictedEvents,
		m.ConflictedByType,
		m.LastRefreshUnixTS,
	)
	return m
}

// ObserveImport 记录一次导入的结果与各表写入行数
func (m *Metrics) ObserveImport(status string, seconds float64, rows map[string]int) {
	if m == nil {
		return
	}
	m.ImportRuns.WithLabelValues(status).Inc()
	m.ImportDuration.Observe(seconds)
	for table, n := range rows {
		m.ImportedRows.WithLabelValues(table).Add(float64(n))
	}
}

// ObserveExport 累加导出文档数
func (m *Metrics) ObserveExport(n int) {
	if m == nil {
		return
	}
	m.ExportedEvents.Add(float64(n))
}
