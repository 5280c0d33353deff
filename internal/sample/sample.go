// Package sample loads one species' single-cell dataset into a sample object
// and persists it as a sample artifact.
package sample

import (
	"context"
	"path/filepath"
	"time"
	"unicode/utf8"

	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
)

// IDLength is the number of characters in a species identifier.
const IDLength = 2

// Object is the in-memory representation of one species' dataset. Payload is
// produced by the dataset loader and is opaque to samprep.
type Object struct {
	Species  string
	Source   string
	Loader   string
	Format   string
	Attrs    map[string]string
	Payload  []byte
	LoadedAt time.Time
}

// DatasetLoader turns a structured dataset file into a sample object.
type DatasetLoader interface {
	Name() string
	Load(ctx context.Context, path string) (*Object, error)
}

// Naming controls the sample artifact file name.
type Naming struct {
	Suffix    string
	Extension string
}

// DefaultNaming yields names like hs_sam.pkl.
func DefaultNaming() Naming {
	return Naming{Suffix: "_sam", Extension: ".pkl"}
}

// FileName returns the artifact file name for a species id.
func (n Naming) FileName(id string) string {
	return id + n.Suffix + n.Extension
}

// ValidateID checks that id is a two-character species identifier.
func ValidateID(id string) error {
	if utf8.RuneCountInString(id) != IDLength {
		return errors.NewValidationError("species id must be exactly 2 characters").
			WithField("id2").WithValue(id)
	}
	return nil
}

// Ingestor loads datasets and writes sample artifacts.
type Ingestor struct {
	loader    DatasetLoader
	persister *artifact.Persister
	events    event.Sink
	naming    Naming
}

// NewIngestor creates an Ingestor. A nil sink discards events.
func NewIngestor(loader DatasetLoader, persister *artifact.Persister, sink event.Sink, naming Naming) *Ingestor {
	return &Ingestor{
		loader:    loader,
		persister: persister,
		events:    event.OrDiscard(sink),
		naming:    naming,
	}
}

// Load reads the dataset at path into a sample object tagged with id.
func (in *Ingestor) Load(ctx context.Context, path, id string) (*Object, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	obj, err := in.loader.Load(ctx, path)
	if err != nil {
		return nil, errors.NewFileFormatError("failed to load dataset", err).WithPath(path)
	}
	if obj == nil {
		return nil, errors.NewFileFormatError("loader returned no sample", nil).WithPath(path)
	}

	obj.Species = id
	if obj.Source == "" {
		obj.Source = path
	}
	if obj.Loader == "" {
		obj.Loader = in.loader.Name()
	}
	if obj.LoadedAt.IsZero() {
		obj.LoadedAt = time.Now().UTC()
	}

	in.events.Publish(event.NewDatasetLoadedEvent(path, id, obj.Loader, len(obj.Payload)))
	return obj, nil
}

// ArtifactPath returns where the sample for obj is written below outputDir.
func (in *Ingestor) ArtifactPath(outputDir, id string) string {
	return filepath.Join(outputDir, in.naming.FileName(id))
}

// Persist writes obj to {outputDir}/{id}{suffix}{extension}, creating
// outputDir if needed. It returns the artifact path and its size.
func (in *Ingestor) Persist(obj *Object, outputDir string) (string, int64, error) {
	path := in.ArtifactPath(outputDir, obj.Species)
	n, err := in.persister.Save(path, artifact.KindSample, obj)
	if err != nil {
		return "", 0, err
	}
	return path, n, nil
}

// Ingest loads the dataset at path and persists it below outputDir.
func (in *Ingestor) Ingest(ctx context.Context, path, id, outputDir string) (string, error) {
	obj, err := in.Load(ctx, path, id)
	if err != nil {
		return "", err
	}
	out, _, err := in.Persist(obj, outputDir)
	return out, err
}
