// Package metrics turns pipeline events into Prometheus metrics.
//
// A Recorder subscribes to the event bus for the duration of one run. The
// CLI is short-lived, so nothing is served over HTTP: the collected metrics
// are written once, at the end of the run, in the node_exporter textfile
// format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/samap-tools/samprep/internal/event"
)

const namespace = "samprep"

// Stage outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder collects run metrics from pipeline events.
type Recorder struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	species       prometheus.Gauge
	mapFiles      prometheus.Gauge
	artifactBytes *prometheus.CounterVec

	bus             *event.Bus
	subscriptionIDs []string
	seenSpecies     map[string]struct{}
}

// NewRecorder creates a Recorder with its own registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages.",
			Buckets:   []float64{.01, .1, .5, 1, 5, 15, 60, 300, 900, 3600},
		}, []string{"pipeline", "stage", "outcome"}),
		species: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "species_total",
			Help:      "Number of species in the species dictionary.",
		}),
		mapFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "map_files_total",
			Help:      "Number of alignment map files found in the maps directory.",
		}),
		artifactBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifact_written_bytes_total",
			Help:      "Bytes written to artifacts, by artifact kind.",
		}, []string{"kind"}),
		seenSpecies: make(map[string]struct{}),
	}
	r.registry.MustRegister(r.stageDuration, r.species, r.mapFiles, r.artifactBytes)
	return r
}

// Registry returns the registry the Recorder's metrics live in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Start subscribes to the events the Recorder tracks. Call Stop to clean up.
func (r *Recorder) Start(bus *event.Bus) {
	r.bus = bus
	r.subscriptionIDs = append(r.subscriptionIDs,
		bus.Subscribe(event.TypeStageCompleted, r.handleStageCompleted),
		bus.Subscribe(event.TypeStageFailed, r.handleStageFailed),
		bus.Subscribe(event.TypeSpeciesAdded, r.handleSpeciesAdded),
		bus.Subscribe(event.TypeMapFileFound, r.handleMapFileFound),
		bus.Subscribe(event.TypeArtifactWritten, r.handleArtifactWritten),
	)
}

// Stop unsubscribes from all events. It is safe to call Stop even if Start
// was never called.
func (r *Recorder) Stop() {
	if r.bus == nil {
		return
	}
	for _, id := range r.subscriptionIDs {
		r.bus.Unsubscribe(id)
	}
	r.subscriptionIDs = nil
}

// WriteTextfile writes the collected metrics to path in the textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

func (r *Recorder) handleStageCompleted(e event.Event) {
	ev, ok := e.(event.StageCompletedEvent)
	if !ok {
		return
	}
	r.stageDuration.WithLabelValues(ev.Pipeline, ev.Stage, OutcomeSuccess).Observe(ev.Duration.Seconds())
}

func (r *Recorder) handleStageFailed(e event.Event) {
	ev, ok := e.(event.StageFailedEvent)
	if !ok {
		return
	}
	r.stageDuration.WithLabelValues(ev.Pipeline, ev.Stage, OutcomeFailure).Observe(ev.Duration.Seconds())
}

func (r *Recorder) handleSpeciesAdded(e event.Event) {
	ev, ok := e.(event.SpeciesAddedEvent)
	if !ok {
		return
	}
	r.seenSpecies[ev.Code] = struct{}{}
	r.species.Set(float64(len(r.seenSpecies)))
}

func (r *Recorder) handleMapFileFound(event.Event) {
	r.mapFiles.Inc()
}

func (r *Recorder) handleArtifactWritten(e event.Event) {
	ev, ok := e.(event.ArtifactWrittenEvent)
	if !ok {
		return
	}
	r.artifactBytes.WithLabelValues(ev.Kind).Add(float64(ev.Bytes))
}
