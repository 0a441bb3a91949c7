package bvh

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultLabel = "result"

	resultOK     = "ok"
	resultFailed = "failed"
)

var (
	bvhBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bvh_builds_total",
		Help: "The number of cluster index builds.",
	}, []string{resultLabel})

	bvhNodesLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bvh_nodes_live",
		Help: "The number of BVH nodes held by built trees.",
	})

	bvhBuildSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bvh_build_seconds",
		Help:    "The time spent building a cluster index.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
)

func instrumentBuild(nodes int, took time.Duration, err error) {
	result := resultOK
	if err != nil {
		result = resultFailed
	} else {
		bvhNodesLive.Add(float64(nodes))
	}

	bvhBuilds.
		With(prometheus.Labels{resultLabel: result}).
		Inc()
	bvhBuildSeconds.Observe(took.Seconds())
}

func instrumentNodesReleased(nodes int) {
	bvhNodesLive.Sub(float64(nodes))
}
