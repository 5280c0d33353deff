package pipeline

import (
	"context"
	"time"

	"github.com/samap-tools/samprep/internal/event"
	"github.com/samap-tools/samprep/internal/maps"
	"github.com/samap-tools/samprep/internal/sample"
)

// Uploader copies a local artifact to a remote destination and returns the
// object URI. *artifact.Uploader implements it.
type Uploader interface {
	Upload(ctx context.Context, localPath, dest string) (string, error)
}

// PipelineOption configures a pipeline.
type PipelineOption func(*pipelineConfig)

// WithSink sets where stage and component events are published.
func WithSink(sink event.Sink) PipelineOption {
	return func(c *pipelineConfig) {
		c.sink = sink
	}
}

// WithUploader sets the uploader used when a run names an upload destination.
func WithUploader(u Uploader) PipelineOption {
	return func(c *pipelineConfig) {
		c.uploader = u
	}
}

// WithRunID fixes the run identifier instead of generating one per run.
func WithRunID(id string) PipelineOption {
	return func(c *pipelineConfig) {
		c.runID = id
	}
}

// WithClock overrides the clock used to time stages.
func WithClock(now func() time.Time) PipelineOption {
	return func(c *pipelineConfig) {
		c.now = now
	}
}

// WithNaming sets how sample artifacts are named.
func WithNaming(n sample.Naming) PipelineOption {
	return func(c *pipelineConfig) {
		c.naming = n
	}
}

// WithDuplicatePolicy sets what happens when two sample paths share a
// species code (species.OnDuplicateOverwrite or species.OnDuplicateError).
func WithDuplicatePolicy(policy string) PipelineOption {
	return func(c *pipelineConfig) {
		c.onDuplicate = policy
	}
}

// WithMapsExtension sets the extension of alignment map files.
func WithMapsExtension(ext string) PipelineOption {
	return func(c *pipelineConfig) {
		c.mapsExtension = ext
	}
}

func newPipelineConfig(opts []PipelineOption) pipelineConfig {
	pc := pipelineConfig{
		now:           time.Now,
		naming:        sample.DefaultNaming(),
		mapsExtension: maps.DefaultExtension,
	}
	for _, opt := range opts {
		opt(&pc)
	}
	pc.sink = event.OrDiscard(pc.sink)
	return pc
}
