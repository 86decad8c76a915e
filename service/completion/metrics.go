package completion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "completion",
		Name:      "query_duration_seconds",
		Help:      "完整度聚合查询耗时",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	queryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "completion",
		Name:      "query_errors_total",
		Help:      "完整度聚合查询失败次数",
	}, []string{"operation"})
)
