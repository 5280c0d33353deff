package species

import (
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
	"github.com/samap-tools/samprep/internal/sample"
)

func TestParsePathList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"bracketed", "[out/hs_sam.pkl, out/mm_sam.pkl]", []string{"out/hs_sam.pkl", "out/mm_sam.pkl"}},
		{"no brackets", "a.pkl, b.pkl, c.pkl", []string{"a.pkl", "b.pkl", "c.pkl"}},
		{"single", "[hs_sam.pkl]", []string{"hs_sam.pkl"}},
		{"only one bracket pair removed", "[[a.pkl]]", []string{"[a.pkl]"}},
		{"comma without space is not a separator", "[a.pkl,b.pkl]", []string{"a.pkl,b.pkl"}},
		{"no trimming", "[ a.pkl ,  b.pkl]", []string{" a.pkl ", " b.pkl"}},
		{"empty list", "[]", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePathList(tt.input)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("ParsePathList(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePathList_PreservesOrderAndLength(t *testing.T) {
	paths := []string{"z/zz.pkl", "a/aa.pkl", "m/mm.pkl", "b/bb.pkl", "c/cc.pkl"}
	got := ParsePathList("[" + strings.Join(paths, ", ") + "]")
	if len(got) != len(paths) {
		t.Fatalf("got %d paths, want %d", len(got), len(paths))
	}
	for i := range paths {
		if got[i] != paths[i] {
			t.Errorf("path %d = %q, want %q", i, got[i], paths[i])
		}
	}
}

func TestCodeFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"out/hs_sam.pkl", "hs", false},
		{"/abs/dir/mm_a.pkl", "mm", false},
		{"xy", "xy", false},
		{"a.pkl", "a.", false},
		{"dir/ñu_sam.pkl", "ñu", false},
		{"dir/a", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := CodeFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CodeFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("CodeFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDictionary_OverwriteKeepsPosition(t *testing.T) {
	d := NewDictionary()
	d.Set(Entry{Code: "mm", Path: "mm_a.pkl"})
	d.Set(Entry{Code: "hs", Path: "hs.pkl"})

	prev, replaced := d.Set(Entry{Code: "mm", Path: "mm_b.pkl"})
	if !replaced || prev.Path != "mm_a.pkl" {
		t.Errorf("Set() = (%v, %v), want the replaced mm_a entry", prev, replaced)
	}

	if got := strings.Join(d.Codes(), ","); got != "mm,hs" {
		t.Errorf("Codes() = %s, want mm,hs", got)
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
	if e, _ := d.Get("mm"); e.Path != "mm_b.pkl" {
		t.Errorf("Get(mm).Path = %q, want mm_b.pkl", e.Path)
	}
}

func writeSample(t *testing.T, p *artifact.Persister, path, source string) {
	t.Helper()
	if _, err := p.Save(path, artifact.KindSample, &sample.Object{Source: source, Payload: []byte(source)}); err != nil {
		t.Fatalf("failed to write sample %s: %v", path, err)
	}
}

func TestBuilder_LaterDuplicateWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := artifact.NewPersister(fs, nil)
	writeSample(t, p, "mm_a.pkl", "first")
	writeSample(t, p, "mm_b.pkl", "second")

	var rec event.Recorder
	dict, err := NewBuilder(p, &rec, OnDuplicateOverwrite).Build([]string{"mm_a.pkl", "mm_b.pkl"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if dict.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", dict.Len())
	}
	e, ok := dict.Get("mm")
	if !ok {
		t.Fatal("code mm missing")
	}
	if e.Sample.Source != "second" || e.Path != "mm_b.pkl" {
		t.Errorf("mm entry = %+v, want the later sample", e)
	}

	collisions := rec.OfType(event.TypeSpeciesCollision)
	if len(collisions) != 1 {
		t.Fatalf("expected 1 species.collision event, got %d", len(collisions))
	}
	c := collisions[0].(event.SpeciesCollisionEvent)
	if c.Replaced != "mm_a.pkl" || c.Kept != "mm_b.pkl" {
		t.Errorf("collision = %+v", c)
	}
	if len(rec.OfType(event.TypeSpeciesAdded)) != 2 {
		t.Error("expected 2 species.added events")
	}
}

func TestBuilder_DuplicateErrorPolicy(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := artifact.NewPersister(fs, nil)
	writeSample(t, p, "mm_a.pkl", "first")
	writeSample(t, p, "mm_b.pkl", "second")

	_, err := NewBuilder(p, nil, OnDuplicateError).Build([]string{"mm_a.pkl", "mm_b.pkl"})
	if !errors.Is(err, errors.ErrDuplicateSpecies) {
		t.Fatalf("expected a duplicate species error, got %v", err)
	}
	var dup *errors.DuplicateSpeciesError
	if !errors.As(err, &dup) || dup.First != "mm_a.pkl" || dup.Second != "mm_b.pkl" {
		t.Errorf("DuplicateSpeciesError = %+v", dup)
	}
}

func TestBuilder_PreservesInputOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := artifact.NewPersister(fs, nil)
	for _, path := range []string{"/s/mm_sam.pkl", "/s/hs_sam.pkl", "/s/dr_sam.pkl"} {
		writeSample(t, p, path, path)
	}

	dict, err := NewBuilder(p, nil, "").Build(ParsePathList("[/s/mm_sam.pkl, /s/hs_sam.pkl, /s/dr_sam.pkl]"))
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if got := strings.Join(dict.Codes(), ","); got != "mm,hs,dr" {
		t.Errorf("Codes() = %s, want mm,hs,dr", got)
	}
	if len(dict.Samples()) != 3 {
		t.Errorf("Samples() has %d entries, want 3", len(dict.Samples()))
	}
}

func TestBuilder_Failures(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := artifact.NewPersister(fs, nil)
	writeSample(t, p, "/s/hs_sam.pkl", "hs")
	writeSample(t, p, "/s/h", "h")
	if err := afero.WriteFile(fs, "/s/mm_sam.pkl", []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Save("/s/aa_samap.pkl", artifact.KindAlignment, &sample.Object{}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paths []string
		want  error
	}{
		{"missing file", []string{"/s/hs_sam.pkl", "/s/xx_sam.pkl"}, errors.ErrDeserialization},
		{"corrupt file", []string{"/s/hs_sam.pkl", "/s/mm_sam.pkl"}, errors.ErrDeserialization},
		{"alignment artifact", []string{"/s/aa_samap.pkl"}, errors.ErrDeserialization},
		{"empty list parsed from []", ParsePathList("[]"), errors.ErrDeserialization},
		{"trailing separator", ParsePathList("[/s/hs_sam.pkl, ]"), errors.ErrDeserialization},
		{"blank entry", ParsePathList("[/s/hs_sam.pkl,  , /s/hs_sam.pkl]"), errors.ErrDeserialization},
		{"name too short for a code", []string{"/s/h"}, errors.ErrInvalidInput},
		{"no paths", nil, errors.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dict, err := NewBuilder(p, nil, OnDuplicateOverwrite).Build(tt.paths)
			if dict != nil {
				t.Error("no partial dictionary should be returned")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}
