// Package testutil provides testing utilities for samprep tests: stand-in
// dataset loaders and alignment engines, and filesystem fixtures.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/samap-tools/samprep/internal/alignment"
	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/sample"
)

// StubLoader is a sample.DatasetLoader that fabricates a sample from the
// dataset path. Set Err to make every load fail.
type StubLoader struct {
	Err   error
	Calls []string
}

// Name returns "stub".
func (s *StubLoader) Name() string { return "stub" }

// Load records path and returns a sample whose payload names it.
func (s *StubLoader) Load(_ context.Context, path string) (*sample.Object, error) {
	s.Calls = append(s.Calls, path)
	if s.Err != nil {
		return nil, s.Err
	}
	return &sample.Object{
		Format:  "stub",
		Attrs:   map[string]string{"file": filepath.Base(path)},
		Payload: []byte("sample:" + path),
	}, nil
}

// StubEngine is an alignment.Engine that concatenates sample payloads. Set
// Err to make every build fail.
type StubEngine struct {
	Err      error
	Requests []alignment.Request
}

// Name returns "stub".
func (s *StubEngine) Name() string { return "stub" }

// Build records req and returns an object built from its samples.
func (s *StubEngine) Build(_ context.Context, req alignment.Request) (*alignment.Object, error) {
	s.Requests = append(s.Requests, req)
	if s.Err != nil {
		return nil, s.Err
	}
	parts := make([]string, 0, len(req.Species))
	for _, code := range req.Species {
		parts = append(parts, code+"="+string(req.Samples[code].Payload))
	}
	return &alignment.Object{
		Format:  "stub",
		Attrs:   map[string]string{"n_species": strconv.Itoa(len(req.Species))},
		Payload: []byte(strings.Join(parts, ";")),
	}, nil
}

// WriteSample writes a sample artifact for species at path.
func WriteSample(t *testing.T, fs afero.Fs, path, species string) *sample.Object {
	t.Helper()

	obj := &sample.Object{
		Species: species,
		Source:  species + ".h5ad",
		Loader:  "stub",
		Format:  "stub",
		Payload: []byte("sample:" + species),
	}
	if _, err := artifact.NewPersister(fs, nil).Save(path, artifact.KindSample, obj); err != nil {
		t.Fatalf("failed to write sample %s: %v", path, err)
	}
	return obj
}

// WriteMaps creates dir holding one small map file per name.
func WriteMaps(t *testing.T, fs afero.Fs, dir string, names ...string) {
	t.Helper()

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("failed to create maps directory: %v", err)
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
		}
		if err := afero.WriteFile(fs, path, []byte("gene_a\tgene_b\t99.5\n"), 0o644); err != nil {
			t.Fatalf("failed to write map file %s: %v", path, err)
		}
	}
}

// ListFiles returns every regular file below root, sorted.
func ListFiles(t *testing.T, fs afero.Fs, root string) []string {
	t.Helper()

	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("failed to walk %s: %v", root, err)
	}
	sort.Strings(files)
	return files
}
