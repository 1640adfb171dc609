package cli

import (
	"fmt"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/rfit/pkg/core/assembly"
	"github.com/matzehuels/rfit/pkg/core/catalog"
	"github.com/matzehuels/rfit/pkg/core/resolve"
	"github.com/matzehuels/rfit/pkg/pipeline"
	"github.com/matzehuels/rfit/pkg/store"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints batch statistics on a single line.
func printStats(stats pipeline.Stats) {
	parts := []string{fmt.Sprintf("%d surfaces", stats.Surfaces)}
	if stats.Fallbacks > 0 {
		parts = append(parts, StyleWarning.Render(fmt.Sprintf("%d fallback", stats.Fallbacks)))
	}
	if stats.CacheHits > 0 {
		parts = append(parts, styleCached.Render(fmt.Sprintf("%d %s", stats.CacheHits, iconCached)))
	}
	if fresh := stats.Surfaces - stats.CacheHits; fresh > 0 {
		parts = append(parts, styleComputed.Render(fmt.Sprintf("%d %s", fresh, iconFresh)))
	}
	parts = append(parts, fmt.Sprintf("%dms", stats.ElapsedMS))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line)
}

// printResult prints the summary of one resolved surface.
func printResult(res *pipeline.SurfaceResult) {
	printSuccess("%s %s %s", StyleTitle.Render(res.ID), StyleDim.Render(iconArrow), StyleHighlight.Render(res.Template))
	printKeyValue("Family", fmt.Sprintf("%s / %s", res.Family, res.Kind))
	printKeyValue("Template", fmt.Sprintf("#%d (%s)", res.Index+1, res.Construction.Topology))
	printKeyValue("Target", fmt.Sprintf("R-%.2f", res.AssemblyR))
	printKeyValue("Films", fmt.Sprintf("R-%.2f", res.FilmR))
	if res.ExtraSeriesR > 0 {
		printKeyValue("Extra", fmt.Sprintf("R-%.2f", res.ExtraSeriesR))
	}
	printKeyValue("Solved", fmt.Sprintf("%s R-%.2f", res.UnknownName, res.Unknown))
	printKeyValue("Realized", fmt.Sprintf("R-%.4f (delta %+.4f)", res.Validation.Realized, res.Validation.Delta))
	if res.Fallback {
		printWarning("no stock template reaches R-%.2f; using the fallback", res.AssemblyR)
	}
	if res.Cached {
		printDetail(iconCached)
	}
}

// =============================================================================
// Tables
// =============================================================================

// headerRow is the row index lipgloss tables pass to StyleFunc for headers.
const headerRow = -1

var styleHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...)
}

// constructionTable lists the shared layers and every parallel path of c.
func constructionTable(c *assembly.Construction) string {
	rows := [][]string{}
	for _, l := range c.Fixed {
		rows = append(rows, []string{"all paths", "100.0%", l.Name, formatThickness(l.Thickness), fmt.Sprintf("%.2f", l.R)})
	}
	for _, p := range c.Paths {
		for _, l := range p.Layers {
			rows = append(rows, []string{p.Name, fmt.Sprintf("%.1f%%", p.Fraction*100), l.Name, formatThickness(l.Thickness), fmt.Sprintf("%.2f", l.R)})
		}
	}
	rows = append(rows, []string{"all paths", "100.0%", "Air Films", "", fmt.Sprintf("%.2f", c.Film)})

	return newTable("Path", "Area", "Layer", "Thickness", "R").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == headerRow {
				return styleHeader
			}
			if col == 4 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// catalogTable lists the templates of cat in resolution order.
func catalogTable(cat catalog.Catalog) string {
	film := cat.Kind.DefaultFilm()
	rows := make([][]string, len(cat.Templates))
	for i, t := range cat.Templates {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			t.Name,
			t.Topology.String(),
			fmt.Sprintf("%.1f%%", t.FramingFraction*100),
			fmt.Sprintf("%.2f", film+t.LayersR()),
			t.Topology.Unknown(),
		}
	}
	last := len(rows) - 1

	return newTable("#", "Template", "Topology", "Framing", "Fixed R", "Solves for").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case row == last:
				return lipgloss.NewStyle().Foreground(colorDim)
			case col == 1:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}

// candidatesTable shows every template's solve; chosen marks the winner.
func candidatesTable(cands []resolve.Candidate, chosen int) string {
	rows := make([][]string, len(cands))
	for i, c := range cands {
		mark := ""
		if i == chosen {
			mark = iconSuccess
		}
		unknown := "—"
		if !math.IsNaN(c.Unknown) && !math.IsInf(c.Unknown, 0) {
			unknown = fmt.Sprintf("%.2f", c.Unknown)
		}
		rows[i] = []string{mark, c.Template.Name, fmt.Sprintf("%.2f", c.FixedR), unknown}
	}

	return newTable("", "Template", "Fixed R", "Unknown").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case row == chosen:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case !cands[row].Accepted:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// reportTable lists one row per surface of a batch run.
func reportTable(report *pipeline.Report) string {
	rows := make([][]string, len(report.Surfaces))
	for i, s := range report.Surfaces {
		status := iconFresh
		if s.Cached {
			status = iconCached
		}
		rows[i] = []string{
			s.ID,
			string(s.Family),
			s.Template,
			fmt.Sprintf("%.2f", s.AssemblyR),
			fmt.Sprintf("%.2f", s.Unknown),
			fmt.Sprintf("%+.4f", s.Validation.Delta),
			status,
		}
	}

	return newTable("Surface", "Family", "Template", "Target", "Unknown", "Delta", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case report.Surfaces[row].Fallback && col == 2:
				return lipgloss.NewStyle().Foreground(colorYellow)
			case col == 6 && report.Surfaces[row].Cached:
				return styleCached
			case col == 6:
				return styleComputed
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// historyTable lists saved runs.
func historyTable(runs []store.Run) string {
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			shortRunID(r.RunID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			fmt.Sprintf("%d", r.Stats.Surfaces),
			fmt.Sprintf("%d", r.Stats.Fallbacks),
			fmt.Sprintf("%d", r.Stats.CacheHits),
			r.Version,
		}
	}

	return newTable("Run", "Started", "Source", "Surfaces", "Fallbacks", "Cached", "Version").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case col == 0:
				return StyleHighlight
			case col == 4 && runs[row].Stats.Fallbacks > 0:
				return lipgloss.NewStyle().Foreground(colorYellow)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func formatThickness(in float64) string {
	if in <= 0 {
		return ""
	}
	return fmt.Sprintf("%.3g in", in)
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Utilities
// =============================================================================

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
