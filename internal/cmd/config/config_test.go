package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/samap-tools/samprep/internal/config"
	"github.com/samap-tools/samprep/internal/errors"
)

// testRoot mirrors the global --config flag of the real root command.
var testRoot = func() *cobra.Command {
	root := &cobra.Command{Use: "samprep", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().StringP("config", "c", "", "config file")
	Register(root)
	return root
}()

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs args against a fresh viper holding only defaults plus any
// values set by prepare.
func execute(t *testing.T, prepare func(), args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	appconfig.SetDefaults()
	if prepare != nil {
		prepare()
	}
	resetFlags(testRoot)
	t.Cleanup(viper.Reset)

	var out bytes.Buffer
	testRoot.SetOut(&out)
	testRoot.SetErr(&out)
	testRoot.SetArgs(args)
	err := testRoot.Execute()
	return out.String(), err
}

func TestConfigShow_Defaults(t *testing.T) {
	out, err := execute(t, nil, "config", "show")
	if err != nil {
		t.Fatalf("config show failed: %v", err)
	}
	if !strings.Contains(out, "(none - using defaults)") {
		t.Errorf("output should say no config file is used:\n%s", out)
	}

	var cfg appconfig.Config
	if err := yaml.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if cfg.Engine.Command != "samap-bridge" || cfg.Artifacts.DefaultName != "samap.pkl" {
		t.Errorf("decoded config = %+v", cfg)
	}
}

func TestConfigShow_Invalid(t *testing.T) {
	_, err := execute(t, func() { viper.Set("species.on_duplicate", "keep-first") }, "config", "show")
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want a validation error", err)
	}
}

func TestConfigPath(t *testing.T) {
	out, err := execute(t, nil, "config", "path")
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if !strings.Contains(out, appconfig.DefaultFileName) {
		t.Errorf("output = %q, want it to name %s", out, appconfig.DefaultFileName)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samprep.yaml")

	out, err := execute(t, nil, "config", "init", "--config", path)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output = %q, want the created path", out)
	}

	v := viper.New()
	appconfig.SetDefaultsOn(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("written file is not readable config: %v", err)
	}
	cfg, err := appconfig.LoadFrom(v)
	if err != nil {
		t.Fatalf("written file does not validate: %v", err)
	}
	if cfg.Species.OnDuplicate != "overwrite" || cfg.Maps.Extension != ".txt" {
		t.Errorf("round-tripped config = %+v", cfg)
	}

	// A second init refuses to clobber the file.
	_, err = execute(t, nil, "config", "init", "--config", path)
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("second init error = %v, want a validation error", err)
	}

	if _, err := execute(t, nil, "config", "init", "--config", path, "--force"); err != nil {
		t.Errorf("init --force failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("config file missing after --force: %v", err)
	}
}
