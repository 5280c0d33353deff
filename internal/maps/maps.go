// Package maps validates the directory of pairwise alignment map files handed
// to the alignment engine.
//
// The engine joins file names onto the directory string directly, so the
// path must end with a separator. Validate appends one when it is missing.
package maps

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
)

// DefaultExtension is the extension of alignment map files.
const DefaultExtension = ".txt"

// Directory is a maps directory that ended with a separator and existed when
// it was validated.
type Directory struct {
	Path       string
	Original   string
	Normalized bool
}

// String returns the normalized path.
func (d Directory) String() string {
	return d.Path
}

// Normalize appends "/" to dir unless it already ends with a separator. The
// second return value reports whether dir was changed.
func Normalize(dir string) (string, bool) {
	if strings.HasSuffix(dir, "/") || strings.HasSuffix(dir, string(os.PathSeparator)) {
		return dir, false
	}
	return dir + "/", true
}

// Validator checks maps directories on a filesystem.
type Validator struct {
	fs        afero.Fs
	events    event.Sink
	extension string
}

// NewValidator creates a Validator. An empty extension means DefaultExtension.
func NewValidator(fs afero.Fs, sink event.Sink, extension string) *Validator {
	if extension == "" {
		extension = DefaultExtension
	}
	return &Validator{fs: fs, events: event.OrDiscard(sink), extension: extension}
}

// Extension returns the map file extension the Validator enumerates.
func (v *Validator) Extension() string {
	return v.extension
}

// Validate normalizes dir and checks that it exists and is a directory.
func (v *Validator) Validate(dir string) (Directory, error) {
	if dir == "" {
		return Directory{}, errors.NewValidationError("maps directory is required").WithField("maps")
	}

	path, changed := Normalize(dir)
	if changed {
		v.events.Publish(event.NewMapsNormalizedEvent(dir, path))
	}

	info, err := v.fs.Stat(path)
	if err != nil {
		return Directory{}, errors.NewDirectoryNotFoundError("maps directory does not exist").
			WithPath(path).WithCause(err)
	}
	if !info.IsDir() {
		return Directory{}, errors.NewDirectoryNotFoundError("maps path is not a directory").WithPath(path)
	}

	v.events.Publish(event.NewMapsValidatedEvent(path))
	return Directory{Path: path, Original: dir, Normalized: changed}, nil
}

// Enumerate lists the map files below d recursively, in lexical order. It is
// diagnostic only: every entry that cannot be read is reported through a
// maps.unreadable event and skipped, never returned as an error.
func (v *Validator) Enumerate(d Directory) []string {
	var files []string

	root := strings.TrimSuffix(d.Path, "/")
	if root == "" {
		root = "/"
	}

	_ = afero.Walk(v.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			v.events.Publish(event.NewMapsUnreadableEvent(path, err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), v.extension) {
			return nil
		}
		files = append(files, path)
		v.events.Publish(event.NewMapFileFoundEvent(path))
		return nil
	})

	if len(files) == 0 {
		v.events.Publish(event.NewMapsEmptyEvent(d.Path, v.extension))
	}
	return files
}
