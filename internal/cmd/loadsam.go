package cmd

import (
	"github.com/spf13/cobra"

	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/pipeline"
	"github.com/samap-tools/samprep/internal/report"
	"github.com/samap-tools/samprep/internal/sample"
)

var loadSamCmd = &cobra.Command{
	Use:   "load-sam",
	Short: "Load a single-cell dataset and write it as a sample artifact",
	Long: `Load one species' single-cell dataset through the configured engine and
write it to {output}/{id2}_sam.pkl.

Examples:
  # Ingest the human dataset into ./out/hs_sam.pkl
  samprep load-sam --h5ad human.h5ad --id2 hs -o out

  # Also upload the artifact
  samprep load-sam --h5ad mouse.h5ad --id2 mm -o out --upload s3://bucket/samples`,
	Args: cobra.NoArgs,
	RunE: runLoadSam,
}

var (
	loadSamDataset string
	loadSamID      string
	loadSamOutput  string
	loadSamUpload  string
)

func init() {
	loadSamCmd.Flags().StringVar(&loadSamDataset, "h5ad", "", "Path to the dataset file to load")
	loadSamCmd.Flags().StringVar(&loadSamID, "id2", "", "2-character species ID to associate with the dataset")
	loadSamCmd.Flags().StringVarP(&loadSamOutput, "output", "o", ".", "Directory to write the sample artifact to")
	loadSamCmd.Flags().StringVar(&loadSamUpload, "upload", "", "Upload the artifact to s3://bucket/prefix after writing it")
	_ = loadSamCmd.MarkFlagRequired("h5ad")
	_ = loadSamCmd.MarkFlagRequired("id2")

	rootCmd.AddCommand(loadSamCmd)
}

func runLoadSam(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r, err := startRun(cmd, cfg, pipeline.NameIngest)
	if err != nil {
		return err
	}

	r.logger.Info("Loaded dataset path", "path", loadSamDataset)
	r.logger.Info("Using ID2 for the sample", "species", loadSamID)

	res, err := ingest(r)
	if err != nil {
		return r.finish(err)
	}

	r.logger.Info("Sample artifact complete", "species", loadSamID, "path", res.Artifact)
	if err := r.finish(nil); err != nil {
		return err
	}

	r.printSummary(report.RenderIngest(report.IngestSummary{
		RunID:    res.RunID,
		Species:  res.Sample.Species,
		Source:   res.Sample.Source,
		Format:   res.Sample.Format,
		Artifact: res.Artifact,
		Bytes:    res.Bytes,
		Upload:   res.Upload,
		Duration: res.Duration,
	}))
	return nil
}

func ingest(r *run) (*pipeline.IngestResult, error) {
	backend, err := newBackend(r.cfg, r.engineStderr())
	if err != nil {
		return nil, err
	}
	up, err := r.uploader(loadSamUpload)
	if err != nil {
		return nil, err
	}

	opts := []pipeline.PipelineOption{
		pipeline.WithSink(r.bus),
		pipeline.WithRunID(r.id),
		pipeline.WithNaming(sample.Naming{
			Suffix:    r.cfg.Artifacts.SampleSuffix,
			Extension: r.cfg.Artifacts.Extension,
		}),
	}
	if up != nil {
		opts = append(opts, pipeline.WithUploader(up))
	}

	p, err := pipeline.NewIngest(backend, artifact.NewPersister(appFs, r.bus), opts...)
	if err != nil {
		return nil, err
	}

	return p.Run(r.cmd.Context(), pipeline.IngestConfig{
		Dataset:   loadSamDataset,
		ID:        loadSamID,
		OutputDir: loadSamOutput,
		Upload:    loadSamUpload,
	})
}
