package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"obras/internal/core"
)

// Palette follows the dashboard's status colors.
var (
	ColorOrange = lipgloss.Color("#f39c12")
	ColorBlue   = lipgloss.Color("#3498db")
	ColorGreen  = lipgloss.Color("#2ecc71")
	ColorRed    = lipgloss.Color("#e74c3c")
	ColorDim    = lipgloss.Color("#7f8c8d")
	ColorFg     = lipgloss.Color("#ecf0f1")
	ColorHeader = lipgloss.Color("#e67e22")
)

var (
	StyleOrange = lipgloss.NewStyle().Foreground(ColorOrange)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusStyle colors a project status the way the dashboard pie does.
func StatusStyle(s core.ProjectStatus) lipgloss.Style {
	switch s {
	case core.StatusActive:
		return StyleOrange
	case core.StatusPending:
		return StyleBlue
	case core.StatusCompleted:
		return StyleGreen
	default:
		return StyleDim
	}
}

// StatusIndicator renders "● Activa" in the status color.
func StatusIndicator(s core.ProjectStatus) string {
	return StatusStyle(s).Render("● " + s.Label())
}

func ReceivableStyle(s core.ReceivableStatus) lipgloss.Style {
	switch s {
	case core.ReceivableReadyToInvoice:
		return StyleGreen
	case core.ReceivableUpcomingDue:
		return StyleOrange
	case core.ReceivablePendingApproval:
		return StyleRed
	default:
		return StyleDim
	}
}

// Header renders an upper-cased title with an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
