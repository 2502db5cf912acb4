package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/matlayer/pkg/material"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
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

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

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

	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
	styleSelected = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
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
	iconHidden  = "◌"
	iconVisible = "●"
	iconCursor  = "▸"
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

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints graph statistics on a single line.
func printStats(nodeCount, linkCount int, cached bool) {
	status, statusStyle := iconFresh, styleComputed
	if cached {
		status, statusStyle = iconCached, styleCached
	}
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf("%d nodes · %d links · ", nodeCount, linkCount)) + statusStyle.Render(status))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Stack tables
// =============================================================================

// stackRow is one row of a rendered stack table.
type stackRow struct {
	entryID  string
	kind     string
	node     string
	hidden   bool
	selected bool
	extra    string
}

// layerRows converts a snapshot's layers to table rows.
func layerRows(snap material.Snapshot) []stackRow {
	rows := make([]stackRow, len(snap.Layers))
	for i, l := range snap.Layers {
		rows[i] = stackRow{
			entryID:  l.ID,
			kind:     l.Kind,
			node:     l.Node,
			hidden:   l.Hidden,
			selected: i == snap.Selected,
			extra:    strconv.Itoa(len(l.Masks)),
		}
	}
	return rows
}

// maskRows converts the masks of layer i to table rows.
func maskRows(snap material.Snapshot, i int) []stackRow {
	if i < 0 || i >= len(snap.Layers) {
		return nil
	}
	l := snap.Layers[i]
	rows := make([]stackRow, len(l.Masks))
	for j, m := range l.Masks {
		rows[j] = stackRow{
			entryID:  m.ID,
			kind:     m.Kind,
			node:     m.Node,
			hidden:   m.Hidden,
			selected: j == l.SelectedMask,
		}
	}
	return rows
}

// renderStack renders rows as a bordered table. cursor marks the row under
// the browser cursor, or -1. The extra column is shown when extraHeader is
// not empty.
func renderStack(rows []stackRow, cursor int, extraHeader string) string {
	headers := []string{"", "#", "Node", "Kind", "ID", ""}
	if extraHeader != "" {
		headers = append(headers, extraHeader)
	}
	data := make([][]string, len(rows))
	for i, r := range rows {
		mark := "  "
		if i == cursor {
			mark = iconCursor + " "
		}
		vis := iconVisible
		if r.hidden {
			vis = iconHidden
		}
		row := []string{mark, strconv.Itoa(i), r.node, r.kind, r.entryID, vis}
		if extraHeader != "" {
			row = append(row, r.extra)
		}
		data[i] = row
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 { // header
				return styleHeader
			}
			if row < 0 || row >= len(rows) {
				return lipgloss.NewStyle()
			}
			switch {
			case rows[row].selected:
				return styleSelected
			case rows[row].hidden:
				return StyleDim
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
