package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/samap-tools/samprep/internal/alignment"
	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
	"github.com/samap-tools/samprep/internal/maps"
	"github.com/samap-tools/samprep/internal/sample"
	"github.com/samap-tools/samprep/internal/species"
)

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// runner times stages and publishes their lifecycle events.
type runner struct {
	pipeline string
	events   event.Sink
	now      func() time.Time
}

// stage runs fn as stage s. Its error, if any, is returned unchanged after
// stage.failed has been published.
func (r runner) stage(s Stage, fn func() error) error {
	start := r.now()
	r.events.Publish(event.NewStageStartedEvent(r.pipeline, s.String(), s.Description()))

	if err := fn(); err != nil {
		r.events.Publish(event.NewStageFailedEvent(r.pipeline, s.String(), r.now().Sub(start), err))
		return err
	}

	r.events.Publish(event.NewStageCompletedEvent(r.pipeline, s.String(), r.now().Sub(start)))
	return nil
}

func runID(pc pipelineConfig) string {
	if pc.runID != "" {
		return pc.runID
	}
	return NewRunID()
}

// checkUpload rejects a malformed destination, or one that cannot be served,
// before any stage runs.
func checkUpload(pc pipelineConfig, dest string) error {
	if dest == "" {
		return nil
	}
	if _, _, err := artifact.ParseS3URI(dest); err != nil {
		return err
	}
	if pc.uploader == nil {
		return errors.NewValidationError("no uploader configured").WithField("upload").WithValue(dest)
	}
	return nil
}

// Ingest is the load-sam pipeline.
type Ingest struct {
	ingestor *sample.Ingestor
	pcfg     pipelineConfig
}

// NewIngest creates an ingest pipeline that loads datasets with loader and
// writes samples through persister.
func NewIngest(loader sample.DatasetLoader, persister *artifact.Persister, opts ...PipelineOption) (*Ingest, error) {
	if loader == nil {
		return nil, errors.New("pipeline: loader is required")
	}
	if persister == nil {
		return nil, errors.New("pipeline: persister is required")
	}

	pc := newPipelineConfig(opts)
	return &Ingest{
		ingestor: sample.NewIngestor(loader, persister, pc.sink, pc.naming),
		pcfg:     pc,
	}, nil
}

// Run ingests cfg.Dataset as species cfg.ID. On failure nothing is written
// unless the failing stage is the upload.
func (p *Ingest) Run(ctx context.Context, cfg IngestConfig) (*IngestResult, error) {
	if err := sample.ValidateID(cfg.ID); err != nil {
		return nil, err
	}
	if err := checkUpload(p.pcfg, cfg.Upload); err != nil {
		return nil, err
	}

	r := runner{pipeline: NameIngest, events: p.pcfg.sink, now: p.pcfg.now}
	res := &IngestResult{RunID: runID(p.pcfg)}
	start := r.now()

	err := r.stage(StageLoadDataset, func() error {
		obj, err := p.ingestor.Load(ctx, cfg.Dataset, cfg.ID)
		res.Sample = obj
		return err
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StagePersistSample, func() error {
		path, n, err := p.ingestor.Persist(res.Sample, cfg.OutputDir)
		res.Artifact, res.Bytes = path, n
		return err
	})
	if err != nil {
		return nil, err
	}

	if cfg.Upload != "" {
		err = r.stage(StageUpload, func() error {
			uri, err := p.pcfg.uploader.Upload(ctx, res.Artifact, cfg.Upload)
			res.Upload = uri
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	res.Duration = r.now().Sub(start)
	return res, nil
}

// Aggregate is the build-samap pipeline.
type Aggregate struct {
	persister *artifact.Persister
	species   *species.Builder
	maps      *maps.Validator
	alignment *alignment.Builder
	engine    string
	pcfg      pipelineConfig
}

// NewAggregate creates an aggregate pipeline that builds alignments with
// engine and reads and writes artifacts through persister.
func NewAggregate(engine alignment.Engine, persister *artifact.Persister, opts ...PipelineOption) (*Aggregate, error) {
	if engine == nil {
		return nil, errors.New("pipeline: engine is required")
	}
	if persister == nil {
		return nil, errors.New("pipeline: persister is required")
	}

	pc := newPipelineConfig(opts)
	return &Aggregate{
		persister: persister,
		species:   species.NewBuilder(persister, pc.sink, pc.onDuplicate),
		maps:      maps.NewValidator(persister.Fs(), pc.sink, pc.mapsExtension),
		alignment: alignment.NewBuilder(engine, pc.sink),
		engine:    engine.Name(),
		pcfg:      pc,
	}, nil
}

// OutputPath returns where the alignment artifact of cfg is written.
func OutputPath(cfg AggregateConfig) string {
	name := cfg.Name
	if name == "" {
		name = DefaultAlignmentName
	}
	return filepath.Join(cfg.OutDir, name)
}

// Run builds the alignment artifact described by cfg. No artifact is
// written unless every stage before StagePersistAlignment succeeded.
func (p *Aggregate) Run(ctx context.Context, cfg AggregateConfig) (*AggregateResult, error) {
	if err := checkUpload(p.pcfg, cfg.Upload); err != nil {
		return nil, err
	}

	r := runner{pipeline: NameAggregate, events: p.pcfg.sink, now: p.pcfg.now}
	res := &AggregateResult{RunID: runID(p.pcfg), EngineName: p.engine}
	start := r.now()

	var paths []string
	err := r.stage(StageParseSams, func() error {
		paths = species.ParsePathList(cfg.Sams)
		return nil
	})
	if err != nil {
		return nil, err
	}

	var dict *species.Dictionary
	err = r.stage(StageSpeciesDictionary, func() error {
		d, err := p.species.Build(paths)
		dict = d
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Species = dict.Entries()

	err = r.stage(StageMapsDirectory, func() error {
		dir, err := p.maps.Validate(cfg.MapsDir)
		if err != nil {
			return err
		}
		res.Maps = dir
		res.MapFiles = p.maps.Enumerate(dir)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StageAlignment, func() error {
		obj, err := p.alignment.Build(ctx, dict, res.Maps)
		res.Alignment = obj
		return err
	})
	if err != nil {
		return nil, err
	}

	err = r.stage(StagePersistAlignment, func() error {
		path := OutputPath(cfg)
		n, err := p.persister.Save(path, artifact.KindAlignment, res.Alignment)
		res.Artifact, res.Bytes = path, n
		return err
	})
	if err != nil {
		return nil, err
	}

	if cfg.Upload != "" {
		err = r.stage(StageUpload, func() error {
			uri, err := p.pcfg.uploader.Upload(ctx, res.Artifact, cfg.Upload)
			res.Upload = uri
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	res.Duration = r.now().Sub(start)
	return res, nil
}
