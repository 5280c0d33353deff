package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/bridge"
	"github.com/samap-tools/samprep/internal/config"
	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/event"
	"github.com/samap-tools/samprep/internal/logging"
	"github.com/samap-tools/samprep/internal/metrics"
	"github.com/samap-tools/samprep/internal/pipeline"
)

// Hooks replaced in tests.
var (
	appFs = afero.NewOsFs()

	newBackend = func(cfg *config.Config, stderr io.Writer) (bridge.Backend, error) {
		var opts []bridge.Option
		if stderr != nil {
			opts = append(opts, bridge.WithStderr(stderr))
		}
		return bridge.NewFromConfig(cfg, opts...)
	}

	newUploader = func(ctx context.Context, cfg config.S3Config, fs afero.Fs, sink event.Sink) (pipeline.Uploader, error) {
		return artifact.NewS3Uploader(ctx, artifact.S3Config{
			Region:    cfg.Region,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		}, fs, sink)
	}
)

// run holds the per-invocation plumbing shared by every command: the
// logger, the event bus every component publishes to, and the metrics
// recorder fed from it.
type run struct {
	id      string
	cfg     *config.Config
	cmd     *cobra.Command
	base    *logging.Logger
	logger  *logging.Logger
	bus     *event.Bus
	metrics *metrics.Recorder
}

// startRun opens the logger and wires the bus for one invocation of the
// named pipeline.
func startRun(cmd *cobra.Command, cfg *config.Config, name string) (*run, error) {
	base, err := logging.Open(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		File:   cfg.Logging.File,
		Rotation: logging.RotationConfig{
			MaxSizeMB:  cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			Compress:   cfg.Logging.Compress,
		},
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, errors.NewIOError("failed to open log file", err).WithPath(cfg.Logging.File).WithOp("open")
	}

	r := &run{
		id:   pipeline.NewRunID(),
		cfg:  cfg,
		cmd:  cmd,
		bus:  event.NewBus(),
		base: base,
	}
	r.logger = base.WithRun(r.id).WithPipeline(name)
	event.ForwardToLogger(r.bus, r.logger)

	if cfg.Metrics.Textfile != "" {
		r.metrics = metrics.NewRecorder()
		r.metrics.Start(r.bus)
	}
	return r, nil
}

// engineStderr returns where helper stderr is streamed: the command's
// stderr at debug level, nowhere otherwise.
func (r *run) engineStderr() io.Writer {
	if strings.EqualFold(r.cfg.Logging.Level, logging.LevelDebug) && r.cfg.Logging.File == "" {
		return r.cmd.ErrOrStderr()
	}
	return nil
}

// uploader returns the uploader for dest, or nil when dest is empty.
func (r *run) uploader(dest string) (pipeline.Uploader, error) {
	if dest == "" {
		return nil, nil
	}
	return newUploader(r.cmd.Context(), r.cfg.Upload.S3, appFs, r.bus)
}

// finish writes the metrics textfile, logs err, and closes the logger. It
// returns err, or the textfile error when the run itself succeeded. That
// error has warning severity: the artifacts were already written.
func (r *run) finish(err error) error {
	if r.metrics != nil {
		r.metrics.Stop()
		if werr := r.metrics.WriteTextfile(r.cfg.Metrics.Textfile); werr != nil {
			r.logger.Warn("Failed to write metrics textfile", "path", r.cfg.Metrics.Textfile, "error", werr.Error())
			if err == nil {
				err = errors.NewIOError("failed to write metrics textfile", werr).
					WithPath(r.cfg.Metrics.Textfile).WithOp("write").WithSeverity(errors.SeverityWarning)
			}
		}
	}

	if err != nil {
		severity := errors.GetSeverity(err)
		level := logging.LevelError
		if severity == errors.SeverityWarning {
			level = logging.LevelWarn
		}
		r.logger.Log(level, "Run failed", "error", err.Error(), "class", errors.Class(err), "severity", severity.String())
	}

	_ = r.base.Close()
	return err
}

// printSummary writes s to stdout when summaries are enabled.
func (r *run) printSummary(s string) {
	if r.cfg.Output.Summary {
		fmt.Fprintln(r.cmd.OutOrStdout(), s)
	}
}
