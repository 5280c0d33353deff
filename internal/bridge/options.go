package bridge

import "io"

// Option configures an ExecBackend.
type Option func(*options)

type options struct {
	workRoot string
	stderr   io.Writer
}

// WithWorkRoot sets the directory scratch directories are created in.
// An empty value means os.TempDir.
func WithWorkRoot(dir string) Option {
	return func(o *options) {
		o.workRoot = dir
	}
}

// WithStderr streams the helper's stderr to w as it runs, in addition to
// keeping its tail for error messages.
func WithStderr(w io.Writer) Option {
	return func(o *options) {
		o.stderr = w
	}
}
