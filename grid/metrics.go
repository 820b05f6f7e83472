package grid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gridTrackedObjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sowilo_grid_tracked_objects",
		Help: "The number of objects tracked by the grid.",
	})

	gridBucketMutations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sowilo_grid_bucket_mutations_total",
		Help: "The total number of bucket insertions and removals.",
	})

	gridQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sowilo_grid_queries_total",
		Help: "The total number of range queries.",
	})

	gridBucketsVisited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sowilo_grid_buckets_visited_total",
		Help: "The total number of non-empty buckets visited by queries.",
	})
)

func instrumentTrackObject() {
	gridTrackedObjects.Inc()
}

func instrumentUntrackObject() {
	gridTrackedObjects.Dec()
}

func instrumentBucketMutation() {
	gridBucketMutations.Inc()
}

func instrumentQuery(bucketsVisited int) {
	gridQueries.Inc()
	gridBucketsVisited.Add((float64)(bucketsVisited))
}
