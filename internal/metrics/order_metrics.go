package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики workflow размещения заказов и списания стока.
type OrderMetrics struct {
	// Счётчики исходов размещения
	ordersPlaced   prometheus.Counter
	ordersRejected prometheus.Counter

	// Гистограмма времени полного цикла размещения
	placementDuration prometheus.Histogram

	// Счётчик попыток списания стока по результату
	stockDecreases *prometheus.CounterVec

	// Gauge активных размещений
	activePlacements prometheus.Gauge
}

// Результаты списания стока для лейбла `result`.
const (
	StockDecreaseOK           = "ok"
	StockDecreaseInsufficient = "insufficient"
	StockDecreaseError        = "error"
)

// NewOrderMetrics создаёт новый экземпляр метрик размещения заказов.
func NewOrderMetrics() *OrderMetrics {
	return newOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ims_orders_placed_total",
			Help: "Total number of orders accepted with status PLACED",
		}),
		ordersRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ims_orders_rejected_total",
			Help: "Total number of orders recorded with status REJECTED",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "ims_order_placement_duration_seconds",
			Help:    "Duration of the full order placement workflow in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		stockDecreases: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ims_stock_decrease_attempts_total",
			Help: "Total number of stock decrease attempts grouped by result",
		}, []string{"result"}),
		activePlacements: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "ims_active_placements",
			Help: "Number of order placements currently in flight",
		}),
	}
}

// RecordOrderPlaced увеличивает счётчик принятых заказов.
func (m *OrderMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderRejected увеличивает счётчик отклонённых заказов.
func (m *OrderMetrics) RecordOrderRejected() {
	m.ordersRejected.Inc()
}

// RecordPlacementDuration записывает время полного цикла размещения.
func (m *OrderMetrics) RecordPlacementDuration(duration time.Duration) {
	m.placementDuration.Observe(duration.Seconds())
}

// RecordStockDecrease увеличивает счётчик попыток списания с заданным результатом.
func (m *OrderMetrics) RecordStockDecrease(result string) {
	m.stockDecreases.WithLabelValues(result).Inc()
}

// RecordPlacementStarted увеличивает количество активных размещений.
func (m *OrderMetrics) RecordPlacementStarted() {
	m.activePlacements.Inc()
}

// RecordPlacementFinished уменьшает количество активных размещений.
func (m *OrderMetrics) RecordPlacementFinished() {
	m.activePlacements.Dec()
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}
