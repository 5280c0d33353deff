package cmd

import (
	"github.com/spf13/cobra"

	"github.com/samap-tools/samprep/internal/maps"
	"github.com/samap-tools/samprep/internal/report"
)

var mapsCmd = &cobra.Command{
	Use:   "maps <dir>",
	Short: "Validate a maps directory and list its map files",
	Long: `Run the maps directory check that build-samap performs, without loading
any samples: append a trailing '/' when missing, make sure the directory
exists, and list every map file below it.`,
	Args: cobra.ExactArgs(1),
	RunE: runMaps,
}

func init() {
	rootCmd.AddCommand(mapsCmd)
}

func runMaps(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r, err := startRun(cmd, cfg, "maps")
	if err != nil {
		return err
	}

	v := maps.NewValidator(appFs, r.bus, cfg.Maps.Extension)
	dir, err := v.Validate(args[0])
	if err != nil {
		return r.finish(err)
	}
	files := v.Enumerate(dir)

	if err := r.finish(nil); err != nil {
		return err
	}
	r.printSummary(report.RenderMaps(dir.Path, files))
	return nil
}
