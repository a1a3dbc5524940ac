package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Records(t *testing.T) {
	c := NewCollector("test", prometheus.NewRegistry())

	c.RecordParsed("station", 3)
	c.RecordParsed("station", 2)
	c.RecordReconciliation("breakdown")
	c.RecordMissingStations(4)
	c.RecordProviderError("smear", "http_status")

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{name: "parsed stations", collector: c.ParsedEntitiesTotal.WithLabelValues("station"), want: 5},
		{name: "breakdown mode", collector: c.ReconciliationsTotal.WithLabelValues("breakdown"), want: 1},
		{name: "missing stations", collector: c.MissingStationsTotal, want: 4},
		{name: "provider errors", collector: c.ProviderErrorsTotal.WithLabelValues("smear", "http_status"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.collector); got != tt.want {
				t.Errorf("value = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollector_SeparateRegistries(t *testing.T) {
	// two collectors with the same namespace must not collide
	NewCollector("dup", prometheus.NewRegistry())
	NewCollector("dup", prometheus.NewRegistry())
}

func TestTimer_ObserveDuration(t *testing.T) {
	c := NewCollector("timer", prometheus.NewRegistry())

	timer := c.NewTimer(c.AggregationDuration.WithLabelValues("aggregate"))
	time.Sleep(time.Millisecond)
	if d := timer.ObserveDuration(); d <= 0 {
		t.Errorf("ObserveDuration() = %v, want > 0", d)
	}

	if n := testutil.CollectAndCount(c.AggregationDuration); n != 1 {
		t.Errorf("CollectAndCount() = %d, want 1", n)
	}
}
