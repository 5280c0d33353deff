package bridge

import (
	"fmt"
	"strings"

	"github.com/samap-tools/samprep/internal/alignment"
	"github.com/samap-tools/samprep/internal/config"
	"github.com/samap-tools/samprep/internal/sample"
)

// BackendName identifies a supported engine backend.
type BackendName string

const (
	BackendExec BackendName = "exec"
)

// Backend loads datasets and builds alignment objects.
type Backend interface {
	sample.DatasetLoader
	alignment.Engine
}

// ErrUnknownBackend is returned when the configured backend is unsupported.
var ErrUnknownBackend = fmt.Errorf("unknown engine backend")

// NewFromConfig builds a Backend from configuration. A configured
// engine.work_dir applies unless opts set a work root themselves.
func NewFromConfig(cfg *config.Config, opts ...Option) (Backend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("missing config")
	}
	if cfg.Engine.WorkDir != "" {
		opts = append([]Option{WithWorkRoot(cfg.Engine.WorkDir)}, opts...)
	}

	switch strings.ToLower(cfg.Engine.Backend) {
	case string(BackendExec), "":
		return NewExecBackend(cfg.Engine, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Engine.Backend)
	}
}
