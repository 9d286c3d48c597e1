package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMediaMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMediaMetrics(reg)

	metrics.IncOrphanedObject()
	metrics.IncOrphanedObject()
	metrics.IncLeakedObject()
	metrics.ObserveUpload(250 * time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "media_orphaned_objects_total"); err != nil {
		t.Fatalf("fetch orphaned: %v", err)
	} else if got != 2 {
		t.Fatalf("expected orphaned=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "media_leaked_objects_total"); err != nil {
		t.Fatalf("fetch leaked: %v", err)
	} else if got != 1 {
		t.Fatalf("expected leaked=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "media_upload_duration_seconds"); err != nil {
		t.Fatalf("fetch upload duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestMediaMetricsNilRegistererIsInert(t *testing.T) {
	metrics := NewMediaMetrics(nil)
	metrics.IncOrphanedObject()
	metrics.IncLeakedObject()
	metrics.ObserveUpload(time.Second)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetCounter().GetValue(), nil
	}
	return 0, fmt.Errorf("metric %q has no samples", name)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		return metric.GetHistogram().GetSampleSum(), nil
	}
	return 0, fmt.Errorf("metric %q has no samples", name)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}
