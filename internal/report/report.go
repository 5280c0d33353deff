// Package report renders human-readable run summaries for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
)

// MaxAttrWidth caps the width of attribute values in the inspect table.
const MaxAttrWidth = 60

var (
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	BorderColor    = lipgloss.Color("#6B7280") // Gray

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor)

	Label = lipgloss.NewStyle().
		Foreground(MutedColor).
		Width(12)

	Value = lipgloss.NewStyle()

	Success = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning = lipgloss.NewStyle().Foreground(WarningColor)

	Box = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)

	headerCell = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).Padding(0, 1)
	cell       = lipgloss.NewStyle().Padding(0, 1)
)

// Field is one labelled line in a summary.
type Field struct {
	Label string
	Value string
}

// IngestSummary describes a finished load-sam run.
type IngestSummary struct {
	RunID    string
	Species  string
	Source   string
	Format   string
	Artifact string
	Bytes    int64
	Upload   string
	Duration time.Duration
}

// SpeciesRow is one line of the species table.
type SpeciesRow struct {
	Code string
	Path string
}

// AggregateSummary describes a finished build-samap run.
type AggregateSummary struct {
	RunID    string
	Species  []SpeciesRow
	MapsDir  string
	MapFiles int
	Engine   string
	Output   string
	Bytes    int64
	Upload   string
	Duration time.Duration
}

// InspectSummary describes an artifact on disk.
type InspectSummary struct {
	Path      string
	Kind      string
	Version   int
	CreatedAt time.Time
	Size      int64
	Fields    []Field
	Attrs     map[string]string
}

// RenderIngest renders the summary of a load-sam run.
func RenderIngest(s IngestSummary) string {
	fields := []Field{
		{"Species", s.Species},
		{"Source", s.Source},
		{"Format", s.Format},
		{"Artifact", fmt.Sprintf("%s (%s)", s.Artifact, FormatBytes(s.Bytes))},
	}
	if s.Upload != "" {
		fields = append(fields, Field{"Uploaded", s.Upload})
	}
	fields = append(fields, Field{"Run", s.RunID}, Field{"Duration", FormatDuration(s.Duration)})

	return Box.Render(lipgloss.JoinVertical(lipgloss.Left,
		Title.Render("Sample ingested"),
		"",
		renderFields(fields),
	))
}

// RenderAggregate renders the summary of a build-samap run.
func RenderAggregate(s AggregateSummary) string {
	rows := make([][]string, 0, len(s.Species))
	for _, sp := range s.Species {
		rows = append(rows, []string{sp.Code, sp.Path})
	}

	maps := fmt.Sprintf("%s (%d map files)", s.MapsDir, s.MapFiles)
	if s.MapFiles == 0 {
		maps = s.MapsDir + " " + Warning.Render("(no map files found)")
	}

	fields := []Field{
		{"Maps", maps},
		{"Engine", s.Engine},
		{"Output", fmt.Sprintf("%s (%s)", s.Output, FormatBytes(s.Bytes))},
	}
	if s.Upload != "" {
		fields = append(fields, Field{"Uploaded", s.Upload})
	}
	fields = append(fields, Field{"Run", s.RunID}, Field{"Duration", FormatDuration(s.Duration)})

	return Box.Render(lipgloss.JoinVertical(lipgloss.Left,
		Title.Render(fmt.Sprintf("Alignment object built (%d species)", len(s.Species))),
		"",
		renderTable([]string{"Code", "Sample"}, rows),
		renderFields(fields),
	))
}

// RenderMaps renders the result of validating a maps directory.
func RenderMaps(dir string, files []string) string {
	var sb strings.Builder
	sb.WriteString(Title.Render("Maps directory") + " " + Success.Render(dir) + "\n")
	if len(files) == 0 {
		sb.WriteString(Warning.Render("No map files found") + "\n")
		return sb.String()
	}
	for _, f := range files {
		sb.WriteString("  " + f + "\n")
	}
	sb.WriteString(fmt.Sprintf("%d map files\n", len(files)))
	return sb.String()
}

// RenderInspect renders artifact metadata.
func RenderInspect(s InspectSummary) string {
	fields := []Field{
		{"Kind", s.Kind},
		{"Version", fmt.Sprintf("%d", s.Version)},
		{"Created", s.CreatedAt.Format(time.RFC3339)},
		{"Size", FormatBytes(s.Size)},
	}
	fields = append(fields, s.Fields...)

	parts := []string{Title.Render(s.Path), "", renderFields(fields)}
	if len(s.Attrs) > 0 {
		keys := make([]string, 0, len(s.Attrs))
		for k := range s.Attrs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		rows := make([][]string, 0, len(keys))
		for _, k := range keys {
			rows = append(rows, []string{k, Truncate(s.Attrs[k], MaxAttrWidth)})
		}
		parts = append(parts, renderTable([]string{"Attribute", "Value"}, rows))
	}
	return Box.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func renderFields(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(f.Label), Value.Render(f.Value)))
	}
	return strings.Join(lines, "\n")
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCell
			}
			return cell
		}).
		Render()
}

// Truncate shortens s to maxWidth terminal columns, ending it with "..."
// when anything was cut. Escape sequences and wide characters are measured
// by their visible width.
func Truncate(s string, maxWidth int) string {
	if maxWidth <= 3 {
		return "..."
	}
	if lipgloss.Width(s) <= maxWidth {
		return s
	}
	return ansi.Truncate(s, maxWidth, "...")
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// FormatDuration rounds d for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(100 * time.Millisecond).String()
	}
}
