package artifact

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
)

// Persister serializes objects to files and reads them back.
type Persister struct {
	fs     afero.Fs
	events event.Sink
	now    func() time.Time
}

// NewPersister creates a Persister on fs. A nil sink discards events.
func NewPersister(fs afero.Fs, sink event.Sink) *Persister {
	return &Persister{
		fs:     fs,
		events: event.OrDiscard(sink),
		now:    time.Now,
	}
}

// Fs returns the filesystem the Persister writes to.
func (p *Persister) Fs() afero.Fs {
	return p.fs
}

// Save serializes v as an artifact of the given kind at path, creating parent
// directories as needed. It returns the number of bytes written.
func (p *Persister) Save(path, kind string, v any) (int64, error) {
	dir := filepath.Dir(path)
	if err := p.fs.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.NewIOError("failed to create output directory", err).WithPath(dir).WithOp("mkdir")
	}

	f, err := p.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, errors.NewIOError("failed to open artifact for writing", err).WithPath(path).WithOp("open")
	}

	cw := &countingWriter{w: f}
	encErr := Encode(cw, kind, v, p.now())
	closeErr := f.Close()
	if encErr != nil {
		return cw.n, errors.NewIOError("failed to write artifact", encErr).WithPath(path).WithOp("write")
	}
	if closeErr != nil {
		return cw.n, errors.NewIOError("failed to close artifact", closeErr).WithPath(path).WithOp("close")
	}

	p.events.Publish(event.NewArtifactWrittenEvent(path, kind, cw.n))
	return cw.n, nil
}

// Load reads the artifact at path into v. The returned error wraps the
// filesystem error, or errors.ErrNotAnArtifact when the file does not hold an
// artifact of the requested kind.
func (p *Persister) Load(path, kind string, v any) error {
	f, err := p.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cr := &countingReader{r: f}
	if err := Decode(cr, kind, v); err != nil {
		return err
	}

	p.events.Publish(event.NewArtifactReadEvent(path, kind, cr.n))
	return nil
}

// Inspect reads the envelope at path without decoding its body.
func (p *Persister) Inspect(path string) (*Info, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	env, err := ReadEnvelope(f)
	if err != nil {
		return nil, err
	}

	return &Info{
		Path:      path,
		Kind:      env.Kind,
		Version:   env.Version,
		CreatedAt: env.CreatedAt,
		Size:      stat.Size(),
		BodySize:  len(env.Body),
	}, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
