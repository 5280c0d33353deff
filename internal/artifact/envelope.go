// Package artifact persists samprep's in-memory objects (samples and
// alignment objects) and reads them back.
//
// Every artifact is a gob-encoded [Envelope] whose Body is the gob encoding
// of the object itself. The envelope records what kind of object the file
// holds so that a sample artifact is never mistaken for an alignment object,
// and so that `samprep inspect` can describe a file without decoding it.
//
// Writes are not atomic: a crash mid-write leaves a truncated file behind,
// and concurrent runs writing the same path race.
package artifact

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"time"

	"github.com/samap-tools/samprep/internal/errors"
)

const (
	// Magic identifies samprep artifacts.
	Magic = "samprep"
	// Version is the current envelope version.
	Version = 1
)

// Artifact kinds.
const (
	KindSample    = "sample"
	KindAlignment = "alignment"
)

// Envelope is the on-disk wrapper around a serialized object.
type Envelope struct {
	Magic     string
	Version   int
	Kind      string
	CreatedAt time.Time
	Body      []byte
}

// Info describes an artifact without its body.
type Info struct {
	Path      string
	Kind      string
	Version   int
	CreatedAt time.Time
	Size      int64
	BodySize  int
}

// Encode writes v, wrapped in an envelope of the given kind, to w.
func Encode(w io.Writer, kind string, v any, createdAt time.Time) error {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}

	env := Envelope{
		Magic:     Magic,
		Version:   Version,
		Kind:      kind,
		CreatedAt: createdAt.UTC(),
		Body:      body.Bytes(),
	}
	if err := gob.NewEncoder(w).Encode(&env); err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	return nil
}

// ReadEnvelope decodes and checks an envelope from r.
func ReadEnvelope(r io.Reader) (*Envelope, error) {
	var env Envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrNotAnArtifact, err)
	}
	if env.Magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", errors.ErrNotAnArtifact, env.Magic)
	}
	if env.Version > Version {
		return nil, fmt.Errorf("%w: envelope version %d is newer than supported version %d",
			errors.ErrNotAnArtifact, env.Version, Version)
	}
	return &env, nil
}

// Decode reads an envelope of the given kind from r into v.
func Decode(r io.Reader, kind string, v any) error {
	env, err := ReadEnvelope(r)
	if err != nil {
		return err
	}
	if env.Kind != kind {
		return fmt.Errorf("%w: holds a %s, want a %s", errors.ErrNotAnArtifact, env.Kind, kind)
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Body)).Decode(v); err != nil {
		return fmt.Errorf("%w: corrupt %s body: %v", errors.ErrNotAnArtifact, kind, err)
	}
	return nil
}
