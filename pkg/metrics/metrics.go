package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	buscoTracker = "busco_tracker"

	// Executor metrics
	itemsProcessedTotal = "items_processed_total"
	itemFailuresTotal   = "item_failures_total"

	// Dispatch metrics
	PendingAnnotations = "pending_annotations"
	dispatchedChunks   = "dispatched_chunks"

	// Aggregator metrics
	rowsAppendedTotal = "rows_appended_total"

	// Labels
	resultLabel = "result"
	stepLabel   = "step"
	tableLabel  = "table"
)

var itemsProcessedLabels = []string{
	resultLabel,
}

var itemFailuresLabels = []string{
	stepLabel,
}

var rowsAppendedLabels = []string{
	tableLabel,
}

/**
* Metrics definition
**/
var itemsProcessedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: buscoTracker,
		Name:      itemsProcessedTotal,
		Help:      "number of annotation attempts reaching a terminal state",
	},
	itemsProcessedLabels,
)

var itemFailuresTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: buscoTracker,
		Name:      itemFailuresTotal,
		Help:      "number of failed attempts by pipeline step",
	},
	itemFailuresLabels,
)

var pendingAnnotationsMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: buscoTracker,
		Name:      PendingAnnotations,
		Help:      "pending annotations at the last dispatch snapshot",
	},
)

var dispatchedChunksMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: buscoTracker,
		Name:      dispatchedChunks,
		Help:      "chunks planned in the last dispatch cycle",
	},
)

var rowsAppendedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: buscoTracker,
		Name:      rowsAppendedTotal,
		Help:      "rows appended to the canonical tables by the aggregator",
	},
	rowsAppendedLabels,
)

func IncreaseItemsProcessed(result string) {
	itemsProcessedTotalMetric.With(prometheus.Labels{resultLabel: result}).Inc()
}

func IncreaseItemFailures(step string) {
	itemFailuresTotalMetric.With(prometheus.Labels{stepLabel: step}).Inc()
}

func UpdatePendingAnnotations(count int) {
	pendingAnnotationsMetric.Set(float64(count))
}

func UpdateDispatchedChunks(count int) {
	dispatchedChunksMetric.Set(float64(count))
}

func AddRowsAppended(table string, count int) {
	rowsAppendedTotalMetric.With(prometheus.Labels{tableLabel: table}).Add(float64(count))
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(itemsProcessedTotalMetric)
	prometheus.MustRegister(itemFailuresTotalMetric)
	prometheus.MustRegister(pendingAnnotationsMetric)
	prometheus.MustRegister(dispatchedChunksMetric)
	prometheus.MustRegister(rowsAppendedTotalMetric)
}
