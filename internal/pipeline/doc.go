// Package pipeline runs the two samprep pipelines.
//
// # Ingest
//
// [Ingest] turns one single-cell dataset into a sample artifact:
// load dataset → persist sample → (optional) upload. A dataset that cannot be
// loaded aborts the run before anything is written.
//
// # Aggregate
//
// [Aggregate] combines sample artifacts and a maps directory into one
// alignment artifact:
// parse sams → species dictionary → maps directory → alignment →
// persist alignment → (optional) upload.
//
// Stages run strictly in sequence, each one finishing all of its I/O before
// the next begins. Every stage publishes stage.started followed by either
// stage.completed or stage.failed on the configured [event.Sink], and the
// first failure aborts the run. Nothing is retried.
//
// # Usage
//
//	p, _ := pipeline.NewAggregate(engine, persister,
//	    pipeline.WithSink(bus),
//	    pipeline.WithUploader(uploader),
//	)
//	result, err := p.Run(ctx, pipeline.AggregateConfig{
//	    Sams:    "[out/hs_sam.pkl, out/mm_sam.pkl]",
//	    MapsDir: "maps",
//	    Name:    "samap.pkl",
//	    OutDir:  "out",
//	})
package pipeline
