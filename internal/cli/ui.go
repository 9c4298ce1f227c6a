package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stratum/pkg/core/micmac"
	"github.com/matzehuels/stratum/pkg/core/triage"
	"github.com/matzehuels/stratum/pkg/pipeline"
	"github.com/matzehuels/stratum/pkg/schema"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - linkage
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
)

// classStyles colors MICMAC classes consistently across the CLI and viewer.
var classStyles = map[micmac.Class]lipgloss.Style{
	micmac.Driver:     lipgloss.NewStyle().Foreground(colorRed),
	micmac.Linkage:    lipgloss.NewStyle().Foreground(colorBlue),
	micmac.Dependent:  lipgloss.NewStyle().Foreground(colorGreen),
	micmac.Autonomous: lipgloss.NewStyle().Foreground(colorGray),
}

// routeStyles colors triage routes.
var routeStyles = map[triage.Route]lipgloss.Style{
	triage.Commit:  lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	triage.Explore: lipgloss.NewStyle().Foreground(colorYellow),
	triage.Park:    lipgloss.NewStyle().Foreground(colorBlue),
	triage.Defer:   lipgloss.NewStyle().Foreground(colorGray),
}

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
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// printError prints an error message.
func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented detail line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Report Output
// =============================================================================

// printStats prints network statistics on a single line.
func printStats(nodeCount, edgeCount, levels int, cached bool) {
	parts := []string{
		fmt.Sprintf("%d nodes", nodeCount),
		fmt.Sprintf("%d edges", edgeCount),
		fmt.Sprintf("%d levels", levels),
	}
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}

	var b strings.Builder
	b.WriteString("  ")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(StyleDim.Render(" · "))
		}
		b.WriteString(StyleDim.Render(part))
	}
	b.WriteString(StyleDim.Render(" · ") + statusStyle.Render(status))
	fmt.Println(b.String())
}

// printSummary prints class and route tallies plus any warnings a report
// carries.
func printSummary(rep *pipeline.Report) {
	printStats(rep.Stats.NodeCount, rep.Stats.EdgeCount, rep.LevelCount, rep.CacheInfo.Hit)

	var classes []string
	for _, cl := range micmac.Classes() {
		classes = append(classes, classStyles[cl].Render(fmt.Sprintf("%s %d", cl, rep.Classes[cl])))
	}
	fmt.Println("  " + strings.Join(classes, StyleDim.Render(" · ")))

	var routes []string
	for _, rt := range triage.Routes() {
		routes = append(routes, routeStyles[rt].Render(fmt.Sprintf("%s %d", rt, rep.RouteCounts[rt])))
	}
	fmt.Println("  " + strings.Join(routes, StyleDim.Render(" · ")))

	if rep.Fallback {
		printWarning("level %d holds %d nodes that could not be separated", rep.LevelCount, rep.FallbackSize())
	}
	if n := len(rep.Dangling); n > 0 {
		printWarning("%d edges name unknown problems and were ignored", n)
	}
}

// printIssues prints a validation failure, one issue per line.
func printIssues(verr *schema.ValidationError) {
	printError("%s: %d issues", verr.Table, len(verr.Issues))
	for _, is := range verr.Issues {
		printDetail("%s", is.String())
	}
}
