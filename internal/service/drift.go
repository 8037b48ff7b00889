package service

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Yogeshkumarverma761/lumina-analytics/internal/events"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/features"
	"github.com/Yogeshkumarverma761/lumina-analytics/internal/logger"
)

// DriftSnapshot is the state exposed at GET /metrics
type DriftSnapshot struct {
	ModelVersion      string           `json:"model_version"`
	PredictionsServed int64            `json:"predictions_served"`
	PredictionsFailed int64            `json:"predictions_failed"`
	UnseenCategories  map[string]int64 `json:"unseen_categories"`
	MalformedValues   map[string]int64 `json:"malformed_values"`
}

// DriftMonitor counts field-level fallbacks per feature. Rising unseen
// category counts mean live traffic has moved away from the training data.
type DriftMonitor struct {
	version   string
	publisher events.Publisher
	log       *logger.Logger

	served atomic.Int64
	failed atomic.Int64

	mu        sync.Mutex
	unseen    map[string]int64
	malformed map[string]int64
}

// NewDriftMonitor creates a monitor for one model version
func NewDriftMonitor(version string, publisher events.Publisher, log *logger.Logger) *DriftMonitor {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &DriftMonitor{
		version:   version,
		publisher: publisher,
		log:       log.With("service", "DriftMonitor"),
		unseen:    map[string]int64{},
		malformed: map[string]int64{},
	}
}

// Observe implements pipeline.Observer
func (m *DriftMonitor) Observe(a features.Anomaly) {
	m.mu.Lock()
	var count int64
	switch a.Kind {
	case features.UnseenCategory:
		m.unseen[a.Feature]++
		count = m.unseen[a.Feature]
	default:
		m.malformed[a.Feature]++
		count = m.malformed[a.Feature]
	}
	m.mu.Unlock()

	m.log.Warn("Feature fallback applied",
		"feature", a.Feature,
		"value", a.Value,
		"kind", string(a.Kind),
		"count", count,
	)

	evt := events.DriftEvent{
		ModelVersion: m.version,
		Feature:      a.Feature,
		Value:        a.Value,
		Kind:         string(a.Kind),
		Count:        count,
		At:           time.Now().UTC(),
	}
	if err := m.publisher.PublishDrift(evt); err != nil {
		m.log.Warn("Failed to publish drift event", "error", err)
	}
}

// RecordServed counts a successful prediction
func (m *DriftMonitor) RecordServed() {
	m.served.Add(1)
}

// RecordFailure counts a failed prediction
func (m *DriftMonitor) RecordFailure() {
	m.failed.Add(1)
}

// Snapshot returns a copy of the counters
func (m *DriftMonitor) Snapshot() DriftSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := DriftSnapshot{
		ModelVersion:      m.version,
		PredictionsServed: m.served.Load(),
		PredictionsFailed: m.failed.Load(),
		UnseenCategories:  make(map[string]int64, len(m.unseen)),
		MalformedValues:   make(map[string]int64, len(m.malformed)),
	}
	for k, v := range m.unseen {
		snap.UnseenCategories[k] = v
	}
	for k, v := range m.malformed {
		snap.MalformedValues[k] = v
	}
	return snap
}
