package cli

import (
	"fmt"
	"image/color"

	lipgloss "github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"

	"github.com/RidgetopAi/ridge-context/internal/threads"
)

var (
	colorPrimary = lipgloss.Color("#7C71F9")
	colorSuccess = lipgloss.Color("#34D399")
	colorError   = lipgloss.Color("#F87171")
	colorWarning = lipgloss.Color("#FBBF24")
	colorDim     = lipgloss.Color("#6B7280")
	colorAccent  = lipgloss.Color("#60A5FA")
)

var (
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)

	styleLabel = styleDim
	styleValue = lipgloss.NewStyle()

	styleCommand = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	styleActive = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
)

var segmentKindColors = map[threads.SegmentKind]color.Color{
	threads.KindSystem:       colorPrimary,
	threads.KindInstructions: colorAccent,
	threads.KindRepoContext:  colorAccent,
	threads.KindChatHistory:  colorSuccess,
	threads.KindToolExchange: colorWarning,
	threads.KindSummary:      colorDim,
}

func segmentKindStyle(kind threads.SegmentKind) lipgloss.Style {
	if c, ok := segmentKindColors[kind]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return styleDim
}

var segmentKindLabels = map[threads.SegmentKind]string{
	threads.KindSystem:       "system",
	threads.KindInstructions: "instr",
	threads.KindRepoContext:  "repo",
	threads.KindChatHistory:  "chat",
	threads.KindToolExchange: "tool",
	threads.KindSummary:      "summary",
}

func segmentKindLabel(kind threads.SegmentKind) string {
	if label, ok := segmentKindLabels[kind]; ok {
		return label
	}
	return string(kind)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Headers(headers...).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderHeader(true).
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			return lipgloss.NewStyle().PaddingRight(2)
		})
}

func kvLine(key, value string) string {
	return fmt.Sprintf("  %s %s", styleLabel.Render(key+":"), styleValue.Render(value))
}

func styledError(msg string, hints ...string) string {
	out := styleError.Render(msg)
	for _, h := range hints {
		out += "\n  " + styleDim.Render(h)
	}
	return out
}
