package broadphase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	indexLabel = "index"
	opLabel    = "op"
)

var (
	indexObjects = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bvh_index_objects",
		Help: "The number of objects in a broad-phase index.",
	}, []string{indexLabel})

	indexOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bvh_index_operations_total",
		Help: "The total number of index operations by kind.",
	}, []string{indexLabel, opLabel})

	indexReinserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bvh_index_reinserts_total",
		Help: "The total number of moves that restructured the tree.",
	}, []string{indexLabel})

	indexQueryResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bvh_index_query_results",
		Help:    "The number of results returned by index queries.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{indexLabel, opLabel})
)

func instrumentObjects(index string, count int) {
	indexObjects.
		With(prometheus.Labels{indexLabel: index}).
		Set(float64(count))
}

func instrumentOperation(index, op string) {
	indexOperations.
		With(prometheus.Labels{indexLabel: index, opLabel: op}).
		Inc()
}

func instrumentReinsert(index string) {
	indexReinserts.
		With(prometheus.Labels{indexLabel: index}).
		Inc()
}

func instrumentQuery(index, op string, results int) {
	instrumentOperation(index, op)
	indexQueryResults.
		With(prometheus.Labels{indexLabel: index, opLabel: op}).
		Observe(float64(results))
}
