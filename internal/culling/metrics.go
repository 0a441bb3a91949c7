package culling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cullPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "culling_passes_total",
		Help: "The number of frustum culling passes over a cluster index.",
	})

	cullNodesTested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "culling_nodes_tested_total",
		Help: "The number of index nodes classified against a frustum.",
	})

	cullLeavesAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "culling_leaves_accepted_total",
		Help: "The number of index leaves accepted as visible.",
	})
)

func instrumentCull(s Stats) {
	cullPasses.Inc()
	cullNodesTested.Add(float64(s.Tested))
	cullLeavesAccepted.Add(float64(s.Accepted))
}
