package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	configcmd "github.com/samap-tools/samprep/internal/cmd/config"
	"github.com/samap-tools/samprep/internal/config"
	"github.com/samap-tools/samprep/internal/errors"
)

var rootCmd = &cobra.Command{
	Use:   "samprep",
	Short: "Prepare single-cell samples for cross-species alignment",
	Long: `samprep prepares inputs for a cross-species single-cell alignment workflow.

It ingests one single-cell dataset per species into a sample artifact
(load-sam), then combines several sample artifacts and a directory of
pairwise alignment map files into one alignment artifact (build-samap).`,
	SilenceUsage:      true,
	PersistentPreRunE: readConfig,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./"+config.DefaultFileName+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides logging.level)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json (overrides logging.format)")
	rootCmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr (overrides logging.file)")

	configcmd.Register(rootCmd)
}

// readConfig loads defaults and the optional config file into viper.
// Environment variables are never consulted.
func readConfig(cmd *cobra.Command, args []string) error {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile == "" {
		if _, err := os.Stat(config.DefaultFileName); err != nil {
			return nil
		}
		cfgFile = config.DefaultFileName
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		return errors.NewValidationError("failed to read config file: " + err.Error()).
			WithField("config").WithValue(cfgFile)
	}
	return nil
}

// flagKeys maps command-line flags onto the config keys they override.
var flagKeys = []struct{ flag, key string }{
	{"log-level", "logging.level"},
	{"log-format", "logging.format"},
	{"log-file", "logging.file"},
	{"metrics-textfile", "metrics.textfile"},
}

// loadConfig returns the validated configuration with command-line
// overrides applied. Flags win over the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()
	for _, fk := range flagKeys {
		if flags.Lookup(fk.flag) == nil || !flags.Changed(fk.flag) {
			continue
		}
		value, _ := flags.GetString(fk.flag)
		viper.Set(fk.key, value)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, errors.NewValidationError(err.Error()).WithField("config")
	}
	return cfg, nil
}
