// Package detect runs the four detectors over a snapshot and merges
// their outputs into the canonical report. Detectors are pure functions
// of the snapshot: they hold no state, do not know about each other, and
// each returns a freshly allocated Detection.
package detect

import (
	"time"

	"go.uber.org/zap"

	"github.com/envsense/envsense/internal/schema"
	"github.com/envsense/envsense/internal/snapshot"
)

// Detection is a partial result from one detector: context tags to add,
// a patch of dotted trait paths (or legacy flat keys) to values, the
// evidence justifying them, and one confidence score used by the merger
// for conflict resolution.
type Detection struct {
	Contexts   []schema.Context
	Traits     map[string]any
	Facets     map[string]string
	Evidence   []schema.Evidence
	Confidence float64
}

// Detector is one detection module.
type Detector interface {
	Name() string
	Detect(snap *snapshot.Snapshot) Detection
}

// Pipeline returns the detectors in their fixed invocation order:
// terminal, agent, IDE, CI. Evidence ordering in the report depends on
// this order and is part of the public contract.
func Pipeline() []Detector {
	return []Detector{
		TerminalDetector{},
		AgentDetector{},
		IDEDetector{},
		CIDetector{},
	}
}

// Run executes the pipeline over the snapshot and merges the results.
// Detection is infallible: missing signals yield empty Detections, never
// errors.
func Run(snap *snapshot.Snapshot, log *zap.Logger) schema.Report {
	if log == nil {
		log = zap.NewNop()
	}
	start := time.Now()

	detections := make([]Detection, 0, 4)
	for _, d := range Pipeline() {
		t := time.Now()
		det := d.Detect(snap)
		log.Debug("detector finished",
			zap.String("detector", d.Name()),
			zap.Duration("elapsed", time.Since(t)),
			zap.Int("evidence", len(det.Evidence)))
		detections = append(detections, det)
	}

	report := Merge(detections)
	log.Debug("pipeline finished", zap.Duration("elapsed", time.Since(start)))
	return report
}

func envEvidence(key, value string, confidence float64, supports ...string) schema.Evidence {
	return schema.Evidence{
		Signal:     schema.SignalEnv,
		Key:        key,
		Value:      schema.Ptr(value),
		Supports:   supports,
		Confidence: confidence,
	}
}
