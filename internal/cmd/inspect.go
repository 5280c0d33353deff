package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/samap-tools/samprep/internal/alignment"
	"github.com/samap-tools/samprep/internal/artifact"
	"github.com/samap-tools/samprep/internal/errors"
	"github.com/samap-tools/samprep/internal/report"
	"github.com/samap-tools/samprep/internal/sample"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <artifact>",
	Short: "Show what a sample or alignment artifact holds",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	r, err := startRun(cmd, cfg, "inspect")
	if err != nil {
		return err
	}

	summary, err := inspectArtifact(artifact.NewPersister(appFs, r.bus), args[0])
	if err != nil {
		return r.finish(errors.NewDeserializationError("failed to inspect artifact", err).WithPath(args[0]))
	}
	if err := r.finish(nil); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report.RenderInspect(*summary))
	return nil
}

func inspectArtifact(p *artifact.Persister, path string) (*report.InspectSummary, error) {
	info, err := p.Inspect(path)
	if err != nil {
		return nil, err
	}

	s := &report.InspectSummary{
		Path:      path,
		Kind:      info.Kind,
		Version:   info.Version,
		CreatedAt: info.CreatedAt,
		Size:      info.Size,
	}

	switch info.Kind {
	case artifact.KindSample:
		var obj sample.Object
		if err := p.Load(path, artifact.KindSample, &obj); err != nil {
			return nil, err
		}
		s.Fields = []report.Field{
			{Label: "Species", Value: obj.Species},
			{Label: "Source", Value: obj.Source},
			{Label: "Loader", Value: obj.Loader},
			{Label: "Format", Value: obj.Format},
			{Label: "Loaded", Value: formatTime(obj.LoadedAt)},
			{Label: "Payload", Value: report.FormatBytes(int64(len(obj.Payload)))},
		}
		s.Attrs = obj.Attrs
	case artifact.KindAlignment:
		var obj alignment.Object
		if err := p.Load(path, artifact.KindAlignment, &obj); err != nil {
			return nil, err
		}
		s.Fields = []report.Field{
			{Label: "Species", Value: strings.Join(obj.Species, ", ")},
			{Label: "Maps", Value: obj.MapsDir},
			{Label: "Engine", Value: obj.Engine},
			{Label: "Format", Value: obj.Format},
			{Label: "Built", Value: formatTime(obj.BuiltAt)},
			{Label: "Payload", Value: report.FormatBytes(int64(len(obj.Payload)))},
		}
		s.Attrs = obj.Attrs
	}
	return s, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
