package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for the storefront.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	CartMutations    *prometheus.CounterVec
	SnapshotFailures prometheus.Counter
	Checkouts        *prometheus.CounterVec
	Blessings        *prometheus.CounterVec
	Receipts         *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "family_store_cart_mutations_total",
			Help: "Cart mutations by operation",
		}, []string{"op"}),
		SnapshotFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "family_store_cart_snapshot_failures_total",
			Help: "Cart snapshot writes that failed",
		}),
		Checkouts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "family_store_checkouts_total",
			Help: "Checkout attempts by mode and result",
		}, []string{"mode", "result"}),
		Blessings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "family_store_blessings_total",
			Help: "Receipt blessings by source",
		}, []string{"source"}),
		Receipts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "family_store_receipts_total",
			Help: "Receipt renders by result",
		}, []string{"result"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// IncCartMutation counts one cart mutation.
func (m *Metrics) IncCartMutation(op string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(op).Inc()
}

// IncSnapshotFailure counts one failed snapshot write.
func (m *Metrics) IncSnapshotFailure() {
	if m == nil {
		return
	}
	m.SnapshotFailures.Inc()
}

// IncCheckout counts one checkout outcome.
func (m *Metrics) IncCheckout(mode, result string) {
	if m == nil {
		return
	}
	m.Checkouts.WithLabelValues(mode, result).Inc()
}

// IncBlessing counts where a blessing came from.
func (m *Metrics) IncBlessing(source string) {
	if m == nil {
		return
	}
	m.Blessings.WithLabelValues(source).Inc()
}

// IncReceipt counts one receipt render outcome.
func (m *Metrics) IncReceipt(result string) {
	if m == nil {
		return
	}
	m.Receipts.WithLabelValues(result).Inc()
}
