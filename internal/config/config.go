package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultFileName is the config file looked up in the working directory
// when --config is not given.
const DefaultFileName = "samprep.yaml"

// Config represents the complete samprep configuration
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine" yaml:"engine"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts" yaml:"artifacts"`
	Maps      MapsConfig      `mapstructure:"maps" yaml:"maps"`
	Species   SpeciesConfig   `mapstructure:"species" yaml:"species"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Upload    UploadConfig    `mapstructure:"upload" yaml:"upload"`
	Output    OutputConfig    `mapstructure:"output" yaml:"output"`
}

// EngineConfig selects the dataset loader and alignment engine backend
type EngineConfig struct {
	// Backend is the implementation to use (only "exec" today)
	Backend string `mapstructure:"backend" yaml:"backend"`
	// Command is the external helper invoked by the exec backend
	Command string `mapstructure:"command" yaml:"command"`
	// Args are prepended to every helper invocation
	Args []string `mapstructure:"args" yaml:"args"`
	// Timeout bounds each helper invocation (0 = no limit)
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// KeepWorkdir leaves the helper's scratch directory behind for debugging
	KeepWorkdir bool `mapstructure:"keep_workdir" yaml:"keep_workdir"`
	// WorkDir is where scratch directories are created ("" = system temp dir)
	WorkDir string `mapstructure:"work_dir" yaml:"work_dir"`
}

// ArtifactsConfig controls artifact file names
type ArtifactsConfig struct {
	// SampleSuffix follows the species id in sample artifact names (hs_sam.pkl)
	SampleSuffix string `mapstructure:"sample_suffix" yaml:"sample_suffix"`
	// Extension of every artifact written by load-sam
	Extension string `mapstructure:"extension" yaml:"extension"`
	// DefaultName is the alignment artifact name when --name is not given
	DefaultName string `mapstructure:"default_name" yaml:"default_name"`
}

// MapsConfig controls maps directory enumeration
type MapsConfig struct {
	// Extension of alignment map files
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// SpeciesConfig controls species dictionary assembly
type SpeciesConfig struct {
	// OnDuplicate is what happens when two samples share a species code
	// Options: "overwrite" (later sample wins), "error"
	OnDuplicate string `mapstructure:"on_duplicate" yaml:"on_duplicate"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `mapstructure:"level" yaml:"level"`
	// Format is "text" or "json"
	Format string `mapstructure:"format" yaml:"format"`
	// File, when set, receives logs instead of stderr
	File string `mapstructure:"file" yaml:"file"`
	// MaxSizeMB is the size at which the log file is rotated
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	// Textfile is written after each run when set
	Textfile string `mapstructure:"textfile" yaml:"textfile"`
}

// UploadConfig controls artifact uploads
type UploadConfig struct {
	S3 S3Config `mapstructure:"s3" yaml:"s3"`
}

// S3Config configures the S3 client used by --upload
type S3Config struct {
	Region    string `mapstructure:"region" yaml:"region"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style"`
}

// OutputConfig controls terminal output
type OutputConfig struct {
	// Summary prints a run summary to stdout on success
	Summary bool `mapstructure:"summary" yaml:"summary"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Backend:     "exec",
			Command:     "samap-bridge",
			Args:        []string{},
			Timeout:     0, // No limit
			KeepWorkdir: false,
			WorkDir:     "",
		},
		Artifacts: ArtifactsConfig{
			SampleSuffix: "_sam",
			Extension:    ".pkl",
			DefaultName:  "samap.pkl",
		},
		Maps: MapsConfig{
			Extension: ".txt",
		},
		Species: SpeciesConfig{
			OnDuplicate: "overwrite",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Metrics: MetricsConfig{
			Textfile: "",
		},
		Upload: UploadConfig{
			S3: S3Config{
				Region:    "us-east-1",
				Endpoint:  "",
				PathStyle: false,
			},
		},
		Output: OutputConfig{
			Summary: true,
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	SetDefaultsOn(viper.GetViper())
}

// SetDefaultsOn registers default values on v
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	// Engine defaults
	v.SetDefault("engine.backend", defaults.Engine.Backend)
	v.SetDefault("engine.command", defaults.Engine.Command)
	v.SetDefault("engine.args", defaults.Engine.Args)
	v.SetDefault("engine.timeout", defaults.Engine.Timeout)
	v.SetDefault("engine.keep_workdir", defaults.Engine.KeepWorkdir)
	v.SetDefault("engine.work_dir", defaults.Engine.WorkDir)

	// Artifact defaults
	v.SetDefault("artifacts.sample_suffix", defaults.Artifacts.SampleSuffix)
	v.SetDefault("artifacts.extension", defaults.Artifacts.Extension)
	v.SetDefault("artifacts.default_name", defaults.Artifacts.DefaultName)

	// Maps defaults
	v.SetDefault("maps.extension", defaults.Maps.Extension)

	// Species defaults
	v.SetDefault("species.on_duplicate", defaults.Species.OnDuplicate)

	// Logging defaults
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.file", defaults.Logging.File)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)

	// Metrics defaults
	v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)

	// Upload defaults
	v.SetDefault("upload.s3.region", defaults.Upload.S3.Region)
	v.SetDefault("upload.s3.endpoint", defaults.Upload.S3.Endpoint)
	v.SetDefault("upload.s3.path_style", defaults.Upload.S3.PathStyle)

	// Output defaults
	v.SetDefault("output.summary", defaults.Output.Summary)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// ConfigFile returns the default config file path
func ConfigFile() string {
	return DefaultFileName
}
