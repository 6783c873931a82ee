// Package style provides the colours and icons shared by the CLI output.
package style

import "github.com/charmbracelet/lipgloss"

// Colour is a terminal colour in hex notation.
type Colour = lipgloss.Color

// Palette.
var (
	Iris   Colour = "#8B5CF6"
	Slate  Colour = "#667085"
	Green  Colour = "#22A06B"
	Red    Colour = "#D93025"
	Yellow Colour = "#F59E0B"
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
)

// Status renders a backend or file status marker in the given colour.
func Status(ok bool) string {
	if ok {
		return lipgloss.NewStyle().Foreground(Green).Render(Check)
	}
	return lipgloss.NewStyle().Foreground(Red).Render(Cross)
}
