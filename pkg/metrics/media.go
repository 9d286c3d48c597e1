package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MediaMetrics tracks the two-store consistency counters for media
// operations. Orphans are storage objects whose metadata insert failed;
// leaks are storage objects a best-effort delete could not remove.
type MediaMetrics struct {
	orphanedObjects prometheus.Counter
	leakedObjects   prometheus.Counter
	uploadDuration  prometheus.Histogram
}

// NewMediaMetrics registers the media counters on the provided registerer.
func NewMediaMetrics(reg prometheus.Registerer) *MediaMetrics {
	if reg == nil {
		return &MediaMetrics{}
	}
	orphaned := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_orphaned_objects_total",
		Help: "Storage objects left behind after a metadata write failure.",
	})
	leaked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "media_leaked_objects_total",
		Help: "Storage objects a best-effort delete failed to remove.",
	})
	uploadDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "media_upload_duration_seconds",
		Help:    "Duration of object storage uploads in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(orphaned, leaked, uploadDuration)
	return &MediaMetrics{
		orphanedObjects: orphaned,
		leakedObjects:   leaked,
		uploadDuration:  uploadDuration,
	}
}

// IncOrphanedObject records a tolerated orphan left in object storage.
func (m *MediaMetrics) IncOrphanedObject() {
	if m == nil || m.orphanedObjects == nil {
		return
	}
	m.orphanedObjects.Inc()
}

// IncLeakedObject records a storage object that outlived its metadata.
func (m *MediaMetrics) IncLeakedObject() {
	if m == nil || m.leakedObjects == nil {
		return
	}
	m.leakedObjects.Inc()
}

// ObserveUpload records the duration of a storage upload.
func (m *MediaMetrics) ObserveUpload(duration time.Duration) {
	if m == nil || m.uploadDuration == nil {
		return
	}
	m.uploadDuration.Observe(duration.Seconds())
}
