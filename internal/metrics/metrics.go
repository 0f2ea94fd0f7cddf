package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransitionsTotal counts workflow state transitions by entity and the
	// status they landed in.
	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "buildflow_workflow_transitions_total",
		Help: "Workflow state transitions by entity and resulting status.",
	}, []string{"entity", "status"})

	// OCRIngestsTotal counts successfully merged OCR scan events.
	OCRIngestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buildflow_ocr_ingests_total",
		Help: "OCR scan events merged into bills.",
	})

	// OCRRejectsTotal counts dead-lettered OCR scan events.
	OCRRejectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "buildflow_ocr_rejects_total",
		Help: "OCR scan events rejected (malformed path or unknown bill).",
	})
)

// Handler exposes the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
