package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts business events. A nil *DomainMetrics is a no-op so
// services can be built without a registry.
type DomainMetrics struct {
	ordersCreated      prometheus.Counter
	ordersCancelled    prometheus.Counter
	insufficientStock  prometheus.Counter
	orderStatusChanges *prometheus.CounterVec
	reviewsAdded       prometheus.Counter
	diagnoses          *prometheus.CounterVec
	classifierFallback prometheus.Counter
	plantsWatered      prometheus.Counter
}

// NewDomainMetrics registers the domain counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return nil
	}
	m := &DomainMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Orders successfully placed.",
		}),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Orders cancelled by customers.",
		}),
		insufficientStock: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orders_insufficient_stock_total",
			Help: "Order attempts rejected for insufficient stock.",
		}),
		orderStatusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_status_changes_total",
			Help: "Admin order status updates by target status.",
		}, []string{"status"}),
		reviewsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "product_reviews_added_total",
			Help: "Product reviews accepted.",
		}),
		diagnoses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "diagnoses_total",
			Help: "Diagnoses recorded by condition.",
		}, []string{"condition"}),
		classifierFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "diagnosis_classifier_fallback_total",
			Help: "Classifier failures answered with the healthy fallback.",
		}),
		plantsWatered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plants_watered_total",
			Help: "Watering events recorded.",
		}),
	}
	reg.MustRegister(
		m.ordersCreated,
		m.ordersCancelled,
		m.insufficientStock,
		m.orderStatusChanges,
		m.reviewsAdded,
		m.diagnoses,
		m.classifierFallback,
		m.plantsWatered,
	)
	return m
}

func (m *DomainMetrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *DomainMetrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

func (m *DomainMetrics) InsufficientStock() {
	if m == nil {
		return
	}
	m.insufficientStock.Inc()
}

func (m *DomainMetrics) OrderStatusChanged(status string) {
	if m == nil {
		return
	}
	m.orderStatusChanges.WithLabelValues(normalizeLabel(status)).Inc()
}

func (m *DomainMetrics) ReviewAdded() {
	if m == nil {
		return
	}
	m.reviewsAdded.Inc()
}

func (m *DomainMetrics) DiagnosisRecorded(condition string) {
	if m == nil {
		return
	}
	m.diagnoses.WithLabelValues(normalizeLabel(condition)).Inc()
}

func (m *DomainMetrics) ClassifierFallback() {
	if m == nil {
		return
	}
	m.classifierFallback.Inc()
}

func (m *DomainMetrics) PlantWatered() {
	if m == nil {
		return
	}
	m.plantsWatered.Inc()
}
