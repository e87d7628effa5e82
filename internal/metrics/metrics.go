// Package metrics provides Prometheus collectors for the outreach service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ReconcileTotal 关联操作结果（kind=counterparty 类型，outcome=both/single/alone/lookup_failed/store_failed）
	ReconcileTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "reconcile",
			Name:      "links_total",
			Help:      "Total number of task link operations by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// MappingDriftTotal 写入后复核发现映射已变化
	MappingDriftTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "reconcile",
			Name:      "mapping_drift_total",
			Help:      "Mapping answers that changed between decision and post-write re-check",
		},
	)

	// ImportTotal 目录联系人导入结果（imported/already_imported/not_found/failed）
	ImportTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "import",
			Name:      "contacts_total",
			Help:      "Total number of external contact imports by outcome",
		},
		[]string{"outcome"},
	)

	// ExternalRequestsTotal 外部服务调用（service=dealogic/irm，status=HTTP状态码或error）
	ExternalRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Total number of outbound requests to external services",
		},
		[]string{"service", "status"},
	)

	// MappingCacheTotal 映射缓存命中情况（hit/miss/error）
	MappingCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "outreach",
			Subsystem: "mapping_cache",
			Name:      "lookups_total",
			Help:      "Mapping cache lookups by result",
		},
		[]string{"result"},
	)
)
