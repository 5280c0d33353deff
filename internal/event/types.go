package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "stage.started", "maps.normalized")
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Sink receives events. *Bus and *Recorder implement it.
type Sink interface {
	Publish(Event)
}

// Discard is a Sink that drops every event.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(Event) {}

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Event type identifiers.
const (
	TypeStageStarted     = "stage.started"
	TypeStageCompleted   = "stage.completed"
	TypeStageFailed      = "stage.failed"
	TypeDatasetLoaded    = "dataset.loaded"
	TypeArtifactWritten  = "artifact.written"
	TypeArtifactRead     = "artifact.read"
	TypeArtifactUploaded = "artifact.uploaded"
	TypeSpeciesAdded     = "species.added"
	TypeSpeciesCollision = "species.collision"
	TypeMapsNormalized   = "maps.normalized"
	TypeMapsValidated    = "maps.validated"
	TypeMapFileFound     = "maps.file_found"
	TypeMapsEmpty        = "maps.empty"
	TypeMapsUnreadable   = "maps.unreadable"
	TypeAlignmentBuilt   = "alignment.built"
)

// -----------------------------------------------------------------------------
// Stage Events
// -----------------------------------------------------------------------------

// StageStartedEvent is emitted before a pipeline stage runs.
type StageStartedEvent struct {
	baseEvent
	Pipeline    string
	Stage       string
	Description string // human-readable summary, e.g. "Building species dictionary"
}

// NewStageStartedEvent creates a StageStartedEvent.
func NewStageStartedEvent(pipeline, stage, description string) StageStartedEvent {
	return StageStartedEvent{
		baseEvent:   newBaseEvent(TypeStageStarted),
		Pipeline:    pipeline,
		Stage:       stage,
		Description: description,
	}
}

// StageCompletedEvent is emitted after a stage finishes successfully.
type StageCompletedEvent struct {
	baseEvent
	Pipeline string
	Stage    string
	Duration time.Duration
}

// NewStageCompletedEvent creates a StageCompletedEvent.
func NewStageCompletedEvent(pipeline, stage string, d time.Duration) StageCompletedEvent {
	return StageCompletedEvent{
		baseEvent: newBaseEvent(TypeStageCompleted),
		Pipeline:  pipeline,
		Stage:     stage,
		Duration:  d,
	}
}

// StageFailedEvent is emitted when a stage aborts the run.
type StageFailedEvent struct {
	baseEvent
	Pipeline string
	Stage    string
	Duration time.Duration
	Err      error
}

// NewStageFailedEvent creates a StageFailedEvent.
func NewStageFailedEvent(pipeline, stage string, d time.Duration, err error) StageFailedEvent {
	return StageFailedEvent{
		baseEvent: newBaseEvent(TypeStageFailed),
		Pipeline:  pipeline,
		Stage:     stage,
		Duration:  d,
		Err:       err,
	}
}

// -----------------------------------------------------------------------------
// Sample and Artifact Events
// -----------------------------------------------------------------------------

// DatasetLoadedEvent is emitted when a dataset file was loaded into a sample.
type DatasetLoadedEvent struct {
	baseEvent
	Path    string
	Species string
	Loader  string
	Bytes   int
}

// NewDatasetLoadedEvent creates a DatasetLoadedEvent.
func NewDatasetLoadedEvent(path, species, loader string, size int) DatasetLoadedEvent {
	return DatasetLoadedEvent{
		baseEvent: newBaseEvent(TypeDatasetLoaded),
		Path:      path,
		Species:   species,
		Loader:    loader,
		Bytes:     size,
	}
}

// ArtifactWrittenEvent is emitted after an artifact was serialized to disk.
type ArtifactWrittenEvent struct {
	baseEvent
	Path  string
	Kind  string
	Bytes int64
}

// NewArtifactWrittenEvent creates an ArtifactWrittenEvent.
func NewArtifactWrittenEvent(path, kind string, size int64) ArtifactWrittenEvent {
	return ArtifactWrittenEvent{
		baseEvent: newBaseEvent(TypeArtifactWritten),
		Path:      path,
		Kind:      kind,
		Bytes:     size,
	}
}

// ArtifactReadEvent is emitted after an artifact was deserialized.
type ArtifactReadEvent struct {
	baseEvent
	Path  string
	Kind  string
	Bytes int64
}

// NewArtifactReadEvent creates an ArtifactReadEvent.
func NewArtifactReadEvent(path, kind string, size int64) ArtifactReadEvent {
	return ArtifactReadEvent{
		baseEvent: newBaseEvent(TypeArtifactRead),
		Path:      path,
		Kind:      kind,
		Bytes:     size,
	}
}

// ArtifactUploadedEvent is emitted after an artifact was copied to object storage.
type ArtifactUploadedEvent struct {
	baseEvent
	Path string
	URI  string
}

// NewArtifactUploadedEvent creates an ArtifactUploadedEvent.
func NewArtifactUploadedEvent(path, uri string) ArtifactUploadedEvent {
	return ArtifactUploadedEvent{
		baseEvent: newBaseEvent(TypeArtifactUploaded),
		Path:      path,
		URI:       uri,
	}
}

// -----------------------------------------------------------------------------
// Species Dictionary Events
// -----------------------------------------------------------------------------

// SpeciesAddedEvent is emitted for each sample inserted into the species dictionary.
type SpeciesAddedEvent struct {
	baseEvent
	Code string
	Path string
}

// NewSpeciesAddedEvent creates a SpeciesAddedEvent.
func NewSpeciesAddedEvent(code, path string) SpeciesAddedEvent {
	return SpeciesAddedEvent{
		baseEvent: newBaseEvent(TypeSpeciesAdded),
		Code:      code,
		Path:      path,
	}
}

// SpeciesCollisionEvent is emitted when a later sample replaces an earlier
// one under the same species code.
type SpeciesCollisionEvent struct {
	baseEvent
	Code     string
	Replaced string
	Kept     string
}

// NewSpeciesCollisionEvent creates a SpeciesCollisionEvent.
func NewSpeciesCollisionEvent(code, replaced, kept string) SpeciesCollisionEvent {
	return SpeciesCollisionEvent{
		baseEvent: newBaseEvent(TypeSpeciesCollision),
		Code:      code,
		Replaced:  replaced,
		Kept:      kept,
	}
}

// -----------------------------------------------------------------------------
// Maps Directory Events
// -----------------------------------------------------------------------------

// MapsNormalizedEvent is emitted when a trailing separator was appended to
// the maps directory.
type MapsNormalizedEvent struct {
	baseEvent
	Original   string
	Normalized string
}

// NewMapsNormalizedEvent creates a MapsNormalizedEvent.
func NewMapsNormalizedEvent(original, normalized string) MapsNormalizedEvent {
	return MapsNormalizedEvent{
		baseEvent:  newBaseEvent(TypeMapsNormalized),
		Original:   original,
		Normalized: normalized,
	}
}

// MapsValidatedEvent is emitted once the maps directory was found.
type MapsValidatedEvent struct {
	baseEvent
	Path string
}

// NewMapsValidatedEvent creates a MapsValidatedEvent.
func NewMapsValidatedEvent(path string) MapsValidatedEvent {
	return MapsValidatedEvent{
		baseEvent: newBaseEvent(TypeMapsValidated),
		Path:      path,
	}
}

// MapFileFoundEvent is emitted for every alignment map file found.
type MapFileFoundEvent struct {
	baseEvent
	Path string
}

// NewMapFileFoundEvent creates a MapFileFoundEvent.
func NewMapFileFoundEvent(path string) MapFileFoundEvent {
	return MapFileFoundEvent{
		baseEvent: newBaseEvent(TypeMapFileFound),
		Path:      path,
	}
}

// MapsEmptyEvent is emitted when the maps directory holds no map files.
type MapsEmptyEvent struct {
	baseEvent
	Path      string
	Extension string
}

// NewMapsEmptyEvent creates a MapsEmptyEvent.
func NewMapsEmptyEvent(path, ext string) MapsEmptyEvent {
	return MapsEmptyEvent{
		baseEvent: newBaseEvent(TypeMapsEmpty),
		Path:      path,
		Extension: ext,
	}
}

// MapsUnreadableEvent is emitted for each entry below the maps directory that
// could not be read while enumerating map files.
type MapsUnreadableEvent struct {
	baseEvent
	Path string
	Err  error
}

// NewMapsUnreadableEvent creates a MapsUnreadableEvent.
func NewMapsUnreadableEvent(path string, err error) MapsUnreadableEvent {
	return MapsUnreadableEvent{
		baseEvent: newBaseEvent(TypeMapsUnreadable),
		Path:      path,
		Err:       err,
	}
}

// -----------------------------------------------------------------------------
// Alignment Events
// -----------------------------------------------------------------------------

// AlignmentBuiltEvent is emitted when the engine returned an alignment object.
type AlignmentBuiltEvent struct {
	baseEvent
	Engine  string
	Species []string
}

// NewAlignmentBuiltEvent creates an AlignmentBuiltEvent.
func NewAlignmentBuiltEvent(engine string, species []string) AlignmentBuiltEvent {
	return AlignmentBuiltEvent{
		baseEvent: newBaseEvent(TypeAlignmentBuilt),
		Engine:    engine,
		Species:   species,
	}
}
