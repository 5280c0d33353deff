package cmd

import (
	"github.com/spf13/cobra"

	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/pipeline"
	"github.com/samap-tools/samprep/internal/report"
)

var buildSamapCmd = &cobra.Command{
	Use:   "build-samap",
	Short: "Build an alignment artifact from sample artifacts and a maps directory",
	Long: `Combine sample artifacts written by load-sam and a directory of pairwise
alignment map files into one alignment artifact at {outdir}/{name}.

The species code of each sample is the first two characters of its file
name. With species.on_duplicate=overwrite (the default) a later sample
replaces an earlier one with the same code; with "error" the run fails.

Examples:
  samprep build-samap --sams "[out/hs_sam.pkl, out/mm_sam.pkl]" -m maps -o out

  # Custom name, metrics for the node_exporter textfile collector
  samprep build-samap --sams "[out/hs_sam.pkl, out/mm_sam.pkl]" -m maps \
    -n hs_mm.pkl --metrics-textfile /var/lib/node_exporter/samprep.prom`,
	Args: cobra.NoArgs,
	RunE: runBuildSamap,
}

var (
	buildSamapSams   string
	buildSamapMaps   string
	buildSamapName   string
	buildSamapOutdir string
	buildSamapUpload string
)

func init() {
	buildSamapCmd.Flags().StringVar(&buildSamapSams, "sams", "", `Sample artifacts to load, as "[a_sam.pkl, b_sam.pkl]"`)
	buildSamapCmd.Flags().StringVarP(&buildSamapMaps, "maps", "m", "", "Path to the maps directory")
	buildSamapCmd.Flags().StringVarP(&buildSamapName, "name", "n", "", "Name of the output artifact (default from artifacts.default_name, samap.pkl)")
	buildSamapCmd.Flags().StringVarP(&buildSamapOutdir, "outdir", "o", ".", "Path to the output directory")
	buildSamapCmd.Flags().StringVar(&buildSamapUpload, "upload", "", "Upload the artifact to s3://bucket/prefix after writing it")
	buildSamapCmd.Flags().String("metrics-textfile", "", "Write Prometheus metrics to this file (overrides metrics.textfile)")
	_ = buildSamapCmd.MarkFlagRequired("sams")
	_ = buildSamapCmd.MarkFlagRequired("maps")

	rootCmd.AddCommand(buildSamapCmd)
}

func runBuildSamap(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r, err := startRun(cmd, cfg, pipeline.NameAggregate)
	if err != nil {
		return err
	}

	res, err := aggregate(r)
	if err != nil {
		return r.finish(err)
	}

	r.logger.Info("Successfully wrote alignment artifact", "name", res.Artifact, "outdir", buildSamapOutdir)
	if err := r.finish(nil); err != nil {
		return err
	}

	rows := make([]report.SpeciesRow, 0, len(res.Species))
	for _, e := range res.Species {
		rows = append(rows, report.SpeciesRow{Code: e.Code, Path: e.Path})
	}
	r.printSummary(report.RenderAggregate(report.AggregateSummary{
		RunID:    res.RunID,
		Species:  rows,
		MapsDir:  res.Maps.Path,
		MapFiles: len(res.MapFiles),
		Engine:   res.EngineName,
		Output:   res.Artifact,
		Bytes:    res.Bytes,
		Upload:   res.Upload,
		Duration: res.Duration,
	}))
	return nil
}

func aggregate(r *run) (*pipeline.AggregateResult, error) {
	backend, err := newBackend(r.cfg, r.engineStderr())
	if err != nil {
		return nil, err
	}
	up, err := r.uploader(buildSamapUpload)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.PipelineOption{
		pipeline.WithSink(r.bus),
		pipeline.WithRunID(r.id),
		pipeline.WithDuplicatePolicy(r.cfg.Species.OnDuplicate),
		pipeline.WithMapsExtension(r.cfg.Maps.Extension),
	}
	if up != nil {
		opts = append(opts, pipeline.WithUploader(up))
	}

	p, err := pipeline.NewAggregate(backend, artifact.NewPersister(appFs, r.bus), opts...)
	if err != nil {
		return nil, err
	}

	name := buildSamapName
	if name == "" {
		name = r.cfg.Artifacts.DefaultName
	}

	return p.Run(r.cmd.Context(), pipeline.AggregateConfig{
		Sams:    buildSamapSams,
		MapsDir: buildSamapMaps,
		Name:    name,
		OutDir:  buildSamapOutdir,
		Upload:  buildSamapUpload,
	})
}
