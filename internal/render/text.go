package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/shahar-caura/plantid/internal/plant"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// ShouldColorize reports whether w is a terminal.
func ShouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Text writes a terminal rendering of o.
func Text(w io.Writer, o plant.Outcome, colorize bool) error {
	var lines []string
	switch o := o.(type) {
	case plant.Success:
		d := successView(o)
		header := fmt.Sprintf("%s  %s", d.Name, d.Probability)
		lines = append(lines, paint(header, ansiGreen, colorize))
		if len(d.CommonNames) > 0 {
			lines = append(lines, "  "+strings.Join(d.CommonNames, ", "))
		}
		lines = append(lines, "", signalTable(d.Signal), "", d.Description)
		if d.Toxicity != "" {
			lines = append(lines, "", paint("Toxicity: ", ansiYellow, colorize)+d.Toxicity)
		}
		if d.EdibleParts != "" {
			lines = append(lines, "", "Edible parts: "+d.EdibleParts)
		}
		if len(d.Alternates) > 0 {
			rows := make([]table.Row, 0, len(d.Alternates))
			for _, alt := range d.Alternates {
				rows = append(rows, table.Row{alt.Name, alt.Probability})
			}
			lines = append(lines, "", paint("Other possibilities", ansiBlue, colorize),
				renderTable(table.Row{"Name", "Probability"}, rows))
		}
	case plant.PartialFailure:
		d := partialView(o)
		lines = append(lines, paint("Error: "+d.Message, ansiRed, colorize))
		if d.Signal != nil {
			lines = append(lines, "", signalTable(*d.Signal))
		}
		if d.Suggestion != "" {
			lines = append(lines, "", "Suggestion: "+d.Suggestion)
		}
	case plant.TransportFailure:
		lines = append(lines,
			paint("Connection error", ansiRed, colorize),
			"Could not reach the server. Check your connection.",
			"Technical error: "+o.Message)
	default:
		lines = append(lines,
			paint("No plant identified", ansiYellow, colorize),
			"The service could not identify a plant in this image.")
	}
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// LocalText writes a terminal rendering of a local model test.
func LocalText(w io.Writer, r plant.LocalTestResult, colorize bool) error {
	var lines []string
	if r.IsPlant {
		lines = append(lines, paint("It's a plant!", ansiGreen, colorize))
	} else {
		lines = append(lines, paint("May not be a clear plant", ansiYellow, colorize))
	}
	rows := []table.Row{
		{"Detected as", humanizeLabel(r.DetectedAs)},
		{"Confidence", r.ConfidencePercent},
	}
	for i, item := range r.VisualAnalysis {
		key := ""
		if i == 0 {
			key = "Visual analysis"
		}
		rows = append(rows, table.Row{key, item})
	}
	if r.Message != "" {
		rows = append(rows, table.Row{"Message", r.Message})
	}
	lines = append(lines, renderTable(nil, rows), LocalNote)
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// ModelInfoText writes every field the model-info endpoint reported.
func ModelInfoText(w io.Writer, info plant.ModelInfo) error {
	rows := []table.Row{{"Model", info.Model}}
	if info.InputSize != "" {
		rows = append(rows, table.Row{"Input size", info.InputSize})
	}
	if info.PretrainedOn != "" {
		rows = append(rows, table.Row{"Pretrained on", info.PretrainedOn})
	}
	if info.PlantCategories > 0 {
		rows = append(rows, table.Row{"Plant categories", info.PlantCategories})
	}
	if info.Note != "" {
		rows = append(rows, table.Row{"Note", info.Note})
	}
	_, err := fmt.Fprintln(w, renderTable(nil, rows))
	return err
}

func signalTable(s signalData) string {
	rows := []table.Row{
		{"Classified as", humanizeLabel(s.Label)},
		{"Model confidence", s.Confidence},
	}
	if s.VisualAnalysis != "" {
		rows = append(rows, table.Row{"Visual analysis", s.VisualAnalysis})
	}
	return renderTable(table.Row{"Local model", ""}, rows)
}

func renderTable(header table.Row, rows []table.Row) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if header != nil {
		tw.AppendHeader(header)
	}
	tw.AppendRows(rows)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft},
	})
	return tw.Render()
}

// humanizeLabel turns ImageNet-style labels like "sea_anemone" into "Sea Anemone".
func humanizeLabel(label string) string {
	if label == NotDetected {
		return label
	}
	return cases.Title(language.Und).String(strings.ReplaceAll(label, "_", " "))
}

func paint(s, color string, colorize bool) string {
	if !colorize {
		return s
	}
	return color + s + ansiReset
}
