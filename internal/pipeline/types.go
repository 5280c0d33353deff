package pipeline

import (
	"time"

	"github.com/samap-tools/samprep/internal/alignment"
	"github.com/samap-tools/samprep/internal/event"
	"github.com/samap-tools/samprep/internal/maps"
	"github.com/samap-tools/samprep/internal/sample"
	"github.com/samap-tools/samprep/internal/species"
)

// Pipeline names, used as the "pipeline" attribute of stage events.
const (
	NameIngest    = "ingest"
	NameAggregate = "aggregate"
)

// DefaultAlignmentName is the file name of the alignment artifact when none is given.
const DefaultAlignmentName = "samap.pkl"

// Stage identifies one step of a pipeline.
type Stage string

const (
	// StageLoadDataset loads the dataset file through the DatasetLoader.
	StageLoadDataset Stage = "load_dataset"

	// StagePersistSample writes the sample artifact.
	StagePersistSample Stage = "persist_sample"

	// StageParseSams splits the --sams list into artifact paths.
	StageParseSams Stage = "parse_sams"

	// StageSpeciesDictionary loads every sample artifact into the species dictionary.
	StageSpeciesDictionary Stage = "species_dictionary"

	// StageMapsDirectory normalizes and validates the maps directory.
	StageMapsDirectory Stage = "maps_directory"

	// StageAlignment runs the alignment engine.
	StageAlignment Stage = "alignment"

	// StagePersistAlignment writes the alignment artifact.
	StagePersistAlignment Stage = "persist_alignment"

	// StageUpload copies the written artifact to object storage.
	StageUpload Stage = "upload"
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	return string(s)
}

// Description returns the human-readable line logged when the stage starts.
func (s Stage) Description() string {
	switch s {
	case StageLoadDataset:
		return "Loading dataset"
	case StagePersistSample:
		return "Writing sample artifact"
	case StageParseSams:
		return "Loading arguments"
	case StageSpeciesDictionary:
		return "Building species dictionary from samples"
	case StageMapsDirectory:
		return "Ensuring validity of maps directory"
	case StageAlignment:
		return "Building alignment object"
	case StagePersistAlignment:
		return "Writing alignment artifact"
	case StageUpload:
		return "Uploading artifact"
	default:
		return string(s)
	}
}

// IngestConfig holds the inputs of one ingest run.
type IngestConfig struct {
	Dataset   string // Path to the dataset file
	ID        string // Two-character species id
	OutputDir string // Directory the sample artifact is written to ("" = current directory)
	Upload    string // Optional s3://bucket/prefix destination
}

// IngestResult describes a successful ingest run.
type IngestResult struct {
	RunID    string
	Sample   *sample.Object
	Artifact string
	Bytes    int64
	Upload   string // Object URI, empty when nothing was uploaded
	Duration time.Duration
}

// AggregateConfig holds the inputs of one aggregate run.
type AggregateConfig struct {
	Sams    string // Bracketed, ", "-separated list of sample artifact paths
	MapsDir string // Directory of pairwise alignment map files
	Name    string // File name of the alignment artifact ("" = DefaultAlignmentName)
	OutDir  string // Directory the alignment artifact is written to ("" = current directory)
	Upload  string // Optional s3://bucket/prefix destination
}

// AggregateResult describes a successful aggregate run.
type AggregateResult struct {
	RunID      string
	Species    []species.Entry
	Maps       maps.Directory
	MapFiles   []string
	Alignment  *alignment.Object
	Artifact   string
	Bytes      int64
	Upload     string // Object URI, empty when nothing was uploaded
	Duration   time.Duration
	EngineName string
}

// pipelineConfig holds optional settings shared by both pipelines.
type pipelineConfig struct {
	sink          event.Sink
	uploader      Uploader
	runID         string
	now           func() time.Time
	naming        sample.Naming
	onDuplicate   string
	mapsExtension string
}
