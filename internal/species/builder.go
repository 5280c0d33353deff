package species

import (
	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
	"github.com/samap-tools/samprep/internal/sample"
)

// Duplicate code policies.
const (
	OnDuplicateOverwrite = "overwrite"
	OnDuplicateError     = "error"
)

// Builder deserializes sample artifacts into a Dictionary.
type Builder struct {
	persister   *artifact.Persister
	events      event.Sink
	onDuplicate string
}

// NewBuilder creates a Builder. An empty policy means OnDuplicateOverwrite.
func NewBuilder(persister *artifact.Persister, sink event.Sink, onDuplicate string) *Builder {
	if onDuplicate == "" {
		onDuplicate = OnDuplicateOverwrite
	}
	return &Builder{
		persister:   persister,
		events:      event.OrDiscard(sink),
		onDuplicate: onDuplicate,
	}
}

// Build loads every path in order. Any unreadable or invalid artifact aborts
// the build with a DeserializationError; no partial dictionary is returned.
// With the overwrite policy a later path replaces an earlier one that yields
// the same code.
func (b *Builder) Build(paths []string) (*Dictionary, error) {
	if len(paths) == 0 {
		return nil, errors.NewValidationError("no sample artifacts given").WithField("sams")
	}

	dict := NewDictionary()
	for _, path := range paths {
		// Malformed list entries ("", " ") surface here as missing files.
		code, codeErr := CodeFromPath(path)

		var obj sample.Object
		if err := b.persister.Load(path, artifact.KindSample, &obj); err != nil {
			return nil, errors.NewDeserializationError("failed to load sample artifact", err).
				WithPath(path).WithCode(code)
		}
		if codeErr != nil {
			return nil, codeErr
		}

		if prev, ok := dict.Get(code); ok && b.onDuplicate == OnDuplicateError {
			return nil, errors.NewDuplicateSpeciesError(code, prev.Path, path)
		}

		prev, replaced := dict.Set(Entry{Code: code, Path: path, Sample: &obj})
		if replaced {
			b.events.Publish(event.NewSpeciesCollisionEvent(code, prev.Path, path))
		}
		b.events.Publish(event.NewSpeciesAddedEvent(code, path))
	}
	return dict, nil
}
