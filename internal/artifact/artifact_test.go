package artifact

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/afero"

	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
)

type testObject struct {
	Name  string
	Attrs map[string]string
	Data  []byte
}

func TestPersister_RoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	var rec event.Recorder
	p := NewPersister(fs, &rec)

	in := testObject{Name: "hs", Attrs: map[string]string{"n_obs": "42"}, Data: []byte{1, 2, 3}}
	n, err := p.Save("/out/nested/hs_sam.pkl", KindSample, in)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if n <= 0 {
		t.Errorf("Save() wrote %d bytes", n)
	}

	if ok, _ := afero.DirExists(fs, "/out/nested"); !ok {
		t.Error("Save() should create the parent directory")
	}

	var out testObject
	if err := p.Load("/out/nested/hs_sam.pkl", KindSample, &out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out.Name != in.Name || out.Attrs["n_obs"] != "42" || !bytes.Equal(out.Data, in.Data) {
		t.Errorf("Load() = %+v, want %+v", out, in)
	}

	written := rec.OfType(event.TypeArtifactWritten)
	if len(written) != 1 {
		t.Fatalf("expected 1 artifact.written event, got %d", len(written))
	}
	if got := written[0].(event.ArtifactWrittenEvent).Bytes; got != n {
		t.Errorf("artifact.written bytes = %d, want %d", got, n)
	}
	if len(rec.OfType(event.TypeArtifactRead)) != 1 {
		t.Error("expected 1 artifact.read event")
	}
}

func TestPersister_SaveOverwrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := NewPersister(fs, nil)

	if _, err := p.Save("/out/a.pkl", KindSample, testObject{Name: "first", Data: bytes.Repeat([]byte{9}, 512)}); err != nil {
		t.Fatal(err)
	}
	if _, err := p.Save("/out/a.pkl", KindSample, testObject{Name: "second"}); err != nil {
		t.Fatal(err)
	}

	var out testObject
	if err := p.Load("/out/a.pkl", KindSample, &out); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if out.Name != "second" || len(out.Data) != 0 {
		t.Errorf("Load() = %+v, want the second object", out)
	}
}

func TestPersister_LoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := NewPersister(fs, nil)

	if _, err := p.Save("/a/sample.pkl", KindSample, testObject{Name: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/a/garbage.pkl", []byte("not an artifact"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fs, "/a/empty.pkl", nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		path        string
		kind        string
		notArtifact bool
	}{
		{"missing file", "/a/missing.pkl", KindSample, false},
		{"garbage", "/a/garbage.pkl", KindSample, true},
		{"empty", "/a/empty.pkl", KindSample, true},
		{"wrong kind", "/a/sample.pkl", KindAlignment, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out testObject
			err := p.Load(tt.path, tt.kind, &out)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if got := errors.Is(err, errors.ErrNotAnArtifact); got != tt.notArtifact {
				t.Errorf("errors.Is(err, ErrNotAnArtifact) = %v, want %v (err: %v)", got, tt.notArtifact, err)
			}
		})
	}
}

func TestPersister_Inspect(t *testing.T) {
	fs := afero.NewMemMapFs()
	p := NewPersister(fs, nil)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return created }

	n, err := p.Save("/out/samap.pkl", KindAlignment, testObject{Name: "aln"})
	if err != nil {
		t.Fatal(err)
	}

	info, err := p.Inspect("/out/samap.pkl")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}
	if info.Kind != KindAlignment {
		t.Errorf("Kind = %q, want %q", info.Kind, KindAlignment)
	}
	if info.Version != Version {
		t.Errorf("Version = %d, want %d", info.Version, Version)
	}
	if !info.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", info.CreatedAt, created)
	}
	if info.Size != n {
		t.Errorf("Size = %d, want %d", info.Size, n)
	}
	if info.BodySize == 0 {
		t.Error("BodySize should be non-zero")
	}
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri     string
		bucket  string
		prefix  string
		wantErr bool
	}{
		{"s3://bucket", "bucket", "", false},
		{"s3://bucket/", "bucket", "", false},
		{"s3://bucket/runs/2024", "bucket", "runs/2024", false},
		{"s3://bucket/runs/2024/", "bucket", "runs/2024/", false},
		{"https://bucket/x", "", "", true},
		{"s3:///x", "", "", true},
		{"bucket/x", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, prefix, err := ParseS3URI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseS3URI() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if errors.ExitCode(err) != errors.ExitInvalidInput {
					t.Errorf("error should be a validation error, got %T", err)
				}
				return
			}
			if bucket != tt.bucket || prefix != tt.prefix {
				t.Errorf("ParseS3URI() = (%q, %q), want (%q, %q)", bucket, prefix, tt.bucket, tt.prefix)
			}
		})
	}
}

type fakePutter struct {
	bucket, key string
	body        []byte
	err         error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	return &s3.PutObjectOutput{}, nil
}

func TestUploader_Upload(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/out/samap.pkl", []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	client := &fakePutter{}
	var rec event.Recorder
	u := NewUploader(client, fs, &rec)

	uri, err := u.Upload(context.Background(), "/out/samap.pkl", "s3://results/runs/1")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if uri != "s3://results/runs/1/samap.pkl" {
		t.Errorf("Upload() uri = %q", uri)
	}
	if client.bucket != "results" || client.key != "runs/1/samap.pkl" {
		t.Errorf("PutObject got bucket=%q key=%q", client.bucket, client.key)
	}
	if string(client.body) != "payload" {
		t.Errorf("PutObject body = %q", client.body)
	}
	if len(rec.OfType(event.TypeArtifactUploaded)) != 1 {
		t.Error("expected 1 artifact.uploaded event")
	}
}

func TestUploader_Failures(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/out/samap.pkl", []byte("payload"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("client error", func(t *testing.T) {
		u := NewUploader(&fakePutter{err: errors.New("access denied")}, fs, nil)
		_, err := u.Upload(context.Background(), "/out/samap.pkl", "s3://results")
		if !errors.Is(err, errors.ErrIO) {
			t.Errorf("expected an IO error, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		u := NewUploader(&fakePutter{}, fs, nil)
		_, err := u.Upload(context.Background(), "/out/missing.pkl", "s3://results")
		if !errors.Is(err, errors.ErrIO) {
			t.Errorf("expected an IO error, got %v", err)
		}
	})
}
