package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/samap-tools/samprep/internal/alignment"
	"github.com/samap-tools/samprep/internal/config"
	"github.com/samap-tools/samprep/internal/sample"
)

// Wrapper for exec to allow testing
var execCommandContext = exec.CommandContext

const (
	requestFileName   = "request.json"
	alignmentFileName = "alignment.payload"
	sampleFileName    = "sample.payload"
	stderrTailLines   = 20
)

// ExecBackend implements Backend by running an external helper command.
type ExecBackend struct {
	command     string
	args        []string
	timeout     time.Duration
	keepWorkdir bool
	workRoot    string
	stderr      io.Writer
}

// NewExecBackend creates an exec backend from config.
func NewExecBackend(cfg config.EngineConfig, opts ...Option) *ExecBackend {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	command := cfg.Command
	if command == "" {
		command = "samap-bridge"
	}
	return &ExecBackend{
		command:     command,
		args:        append([]string(nil), cfg.Args...),
		timeout:     cfg.Timeout,
		keepWorkdir: cfg.KeepWorkdir,
		workRoot:    o.workRoot,
		stderr:      o.stderr,
	}
}

// Name returns the backend name.
func (b *ExecBackend) Name() string { return string(BackendExec) }

// payloadReport is the optional JSON object a helper prints on stdout.
type payloadReport struct {
	Format string            `json:"format"`
	Attrs  map[string]string `json:"attrs"`
}

// buildRequest is written to request.json for the build subcommand.
type buildRequest struct {
	Species       []string          `json:"species"`
	Sams          map[string]string `json:"sams"`
	Maps          string            `json:"maps"`
	SaveProcessed bool              `json:"save_processed"`
	Output        string            `json:"output"`
}

// CommandError describes a helper invocation that failed.
type CommandError struct {
	Command  string
	Args     []string
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *CommandError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Command)
	if len(e.Args) > 0 {
		sb.WriteString(" " + e.Args[0])
	}
	if e.TimedOut {
		sb.WriteString(": timed out")
	}
	sb.WriteString(fmt.Sprintf(": %v", e.Err))
	if e.Stderr != "" {
		sb.WriteString(": " + e.Stderr)
	}
	return sb.String()
}

func (e *CommandError) Unwrap() error { return e.Err }

// Load runs the helper's load subcommand on the dataset at path.
func (b *ExecBackend) Load(ctx context.Context, path string) (*sample.Object, error) {
	workdir, cleanup, err := b.workdir("load")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	out := filepath.Join(workdir, sampleFileName)
	stdout, err := b.run(ctx, "load", "--input", path, "--output", out)
	if err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("helper produced no sample payload: %w", err)
	}
	report, err := parseReport(stdout)
	if err != nil {
		return nil, err
	}

	return &sample.Object{
		Source:  path,
		Loader:  b.Name(),
		Format:  report.Format,
		Attrs:   report.Attrs,
		Payload: payload,
	}, nil
}

// Build stages the sample payloads, writes a request file and runs the
// helper's build subcommand.
func (b *ExecBackend) Build(ctx context.Context, req alignment.Request) (*alignment.Object, error) {
	workdir, cleanup, err := b.workdir("build")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	sams := make(map[string]string, len(req.Species))
	for _, code := range req.Species {
		obj, ok := req.Samples[code]
		if !ok || obj == nil {
			return nil, fmt.Errorf("no sample for species %q", code)
		}
		path := filepath.Join(workdir, code+".payload")
		if err := os.WriteFile(path, obj.Payload, 0o600); err != nil {
			return nil, fmt.Errorf("failed to stage sample %q: %w", code, err)
		}
		sams[code] = path
	}

	out := filepath.Join(workdir, alignmentFileName)
	request := buildRequest{
		Species:       req.Species,
		Sams:          sams,
		Maps:          req.MapsDir,
		SaveProcessed: req.SaveProcessed,
		Output:        out,
	}
	data, err := json.MarshalIndent(request, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	requestPath := filepath.Join(workdir, requestFileName)
	if err := os.WriteFile(requestPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write request: %w", err)
	}

	stdout, err := b.run(ctx, "build", "--request", requestPath)
	if err != nil {
		return nil, err
	}

	payload, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("helper produced no alignment payload: %w", err)
	}
	report, err := parseReport(stdout)
	if err != nil {
		return nil, err
	}

	return &alignment.Object{
		Species: append([]string(nil), req.Species...),
		MapsDir: req.MapsDir,
		Engine:  b.Name(),
		Format:  report.Format,
		Attrs:   report.Attrs,
		Payload: payload,
	}, nil
}

func (b *ExecBackend) workdir(op string) (string, func(), error) {
	dir, err := os.MkdirTemp(b.workRoot, "samprep-"+op+"-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	if b.keepWorkdir {
		return dir, func() {}, nil
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func (b *ExecBackend) run(ctx context.Context, args ...string) ([]byte, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	full := append(append([]string(nil), b.args...), args...)
	cmd := execCommandContext(ctx, b.command, full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if b.stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, b.stderr)
	}

	if err := cmd.Run(); err != nil {
		return nil, &CommandError{
			Command:  b.command,
			Args:     args,
			Stderr:   tail(stderr.String(), stderrTailLines),
			TimedOut: ctx.Err() == context.DeadlineExceeded,
			Err:      err,
		}
	}
	return stdout.Bytes(), nil
}

// parseReport reads the last stdout line that looks like a JSON object.
// Helpers are free to print progress before it.
func parseReport(stdout []byte) (payloadReport, error) {
	var report payloadReport
	lines := strings.Split(strings.TrimSpace(string(stdout)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "{") {
			continue
		}
		if err := json.Unmarshal([]byte(line), &report); err != nil {
			return report, fmt.Errorf("invalid helper report %q: %w", line, err)
		}
		return report, nil
	}
	return report, nil
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
