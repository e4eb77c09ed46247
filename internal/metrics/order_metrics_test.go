package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewOrderMetrics(t *testing.T) {
	m := NewOrderMetrics()

	if m == nil {
		t.Fatal("NewOrderMetrics should not return nil")
	}
	if m.ordersPlaced == nil {
		t.Error("ordersPlaced counter should not be nil")
	}
	if m.ordersRejected == nil {
		t.Error("ordersRejected counter should not be nil")
	}
	if m.placementDuration == nil {
		t.Error("placementDuration histogram should not be nil")
	}
	if m.stockDecreases == nil {
		t.Error("stockDecreases counter vec should not be nil")
	}
	if m.activePlacements == nil {
		t.Error("activePlacements gauge should not be nil")
	}
}

func TestNewOrderMetrics_DoubleRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()

	first := newOrderMetricsWithRegisterer(registry)
	second := newOrderMetricsWithRegisterer(registry)

	// Повторная регистрация возвращает уже существующие коллекторы.
	first.RecordOrderPlaced()
	second.RecordOrderPlaced()

	value := counterValue(t, registry, "ims_orders_placed_total")
	if value != 2 {
		t.Fatalf("expected shared counter value 2, got %v", value)
	}
}

func TestOrderMetrics_RecordOutcomes(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newOrderMetricsWithRegisterer(registry)

	m.RecordOrderPlaced()
	m.RecordOrderRejected()
	m.RecordOrderRejected()
	m.RecordStockDecrease(StockDecreaseOK)
	m.RecordStockDecrease(StockDecreaseInsufficient)
	m.RecordPlacementStarted()
	m.RecordPlacementDuration(125 * time.Millisecond)
	m.RecordPlacementFinished()

	if got := counterValue(t, registry, "ims_orders_placed_total"); got != 1 {
		t.Errorf("expected 1 placed order, got %v", got)
	}
	if got := counterValue(t, registry, "ims_orders_rejected_total"); got != 2 {
		t.Errorf("expected 2 rejected orders, got %v", got)
	}
	if got := gaugeValue(t, registry, "ims_active_placements"); got != 0 {
		t.Errorf("expected 0 active placements, got %v", got)
	}
}

func counterValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	for _, mf := range gather(t, registry) {
		if mf.GetName() != name {
			continue
		}
		var total float64
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
		return total
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func gaugeValue(t *testing.T, registry *prometheus.Registry, name string) float64 {
	t.Helper()
	for _, mf := range gather(t, registry) {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func gather(t *testing.T, registry *prometheus.Registry) []*dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	return families
}
