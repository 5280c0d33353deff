// Package alignment builds the combined cross-species alignment object from
// a species dictionary and a maps directory.
package alignment

import (
	"context"
	"time"

	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
	"github.com/samap-tools/samprep/internal/maps"
	"github.com/samap-tools/samprep/internal/sample"
	"github.com/samap-tools/samprep/internal/species"
)

// Object is the combined alignment object returned by an Engine. Payload is
// opaque to samprep.
type Object struct {
	Species []string
	MapsDir string
	Engine  string
	Format  string
	Attrs   map[string]string
	Payload []byte
	BuiltAt time.Time
}

// Request is what an Engine receives.
type Request struct {
	// Species lists the codes in dictionary order.
	Species []string
	Samples map[string]*sample.Object
	// MapsDir always ends with a separator.
	MapsDir string
	// SaveProcessed asks the engine to persist its intermediate artifacts.
	SaveProcessed bool
}

// Engine constructs alignment objects.
type Engine interface {
	Name() string
	Build(ctx context.Context, req Request) (*Object, error)
}

// Builder runs an Engine over a species dictionary.
type Builder struct {
	engine Engine
	events event.Sink
}

// NewBuilder creates a Builder. A nil sink discards events.
func NewBuilder(engine Engine, sink event.Sink) *Builder {
	return &Builder{engine: engine, events: event.OrDiscard(sink)}
}

// NewRequest assembles the engine request. Intermediate persistence is
// always disabled.
func NewRequest(dict *species.Dictionary, dir maps.Directory) Request {
	return Request{
		Species:       dict.Codes(),
		Samples:       dict.Samples(),
		MapsDir:       dir.Path,
		SaveProcessed: false,
	}
}

// Build invokes the engine once. Failures are not retried.
func (b *Builder) Build(ctx context.Context, dict *species.Dictionary, dir maps.Directory) (*Object, error) {
	codes := dict.Codes()
	if len(codes) == 0 {
		return nil, errors.NewAlignmentConstructionError("species dictionary is empty", nil).
			WithEngine(b.engine.Name())
	}

	obj, err := b.engine.Build(ctx, NewRequest(dict, dir))
	if err != nil {
		return nil, errors.NewAlignmentConstructionError("alignment engine failed", err).
			WithEngine(b.engine.Name()).WithSpecies(codes)
	}
	if obj == nil {
		return nil, errors.NewAlignmentConstructionError("alignment engine returned no object", nil).
			WithEngine(b.engine.Name()).WithSpecies(codes)
	}

	if len(obj.Species) == 0 {
		obj.Species = codes
	}
	if obj.MapsDir == "" {
		obj.MapsDir = dir.Path
	}
	if obj.Engine == "" {
		obj.Engine = b.engine.Name()
	}
	if obj.BuiltAt.IsZero() {
		obj.BuiltAt = time.Now().UTC()
	}

	b.events.Publish(event.NewAlignmentBuiltEvent(obj.Engine, obj.Species))
	return obj, nil
}
